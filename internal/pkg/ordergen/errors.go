package ordergen

import "errors"

// Domain errors surfaced by order generation. The messages double as stable
// API error codes.
var (
	ErrSubscriptionNotFound               = errors.New("SUBSCRIPTION_NOT_FOUND")
	ErrSubscriptionNotActive              = errors.New("SUBSCRIPTION_NOT_ACTIVE")
	ErrSubscriptionNotDue                 = errors.New("SUBSCRIPTION_NOT_DUE")
	ErrSubscriptionDefaultAddressRequired = errors.New("SUBSCRIPTION_DEFAULT_ADDRESS_REQUIRED")
	ErrSubscriptionItemVariantMissing     = errors.New("SUBSCRIPTION_ITEM_VARIANT_MISSING")
	ErrSubscriptionItemPriceInvalid       = errors.New("SUBSCRIPTION_ITEM_PRICE_INVALID")
)
