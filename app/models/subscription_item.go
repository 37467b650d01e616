package models

import "time"

// SubscriptionItem is one contracted line of a subscription: which variant,
// how many, and at what unit price in minor units. The price here is the one
// snapshotted into generated orders, not the variant's current list price.
type SubscriptionItem struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	SubscriptionID uint            `gorm:"not null;uniqueIndex:uq_subscription_items_subscription_variant,priority:1;index:idx_subscription_items_subscription_id_is_active,priority:1" json:"subscription_id"`
	VariantID      uint            `gorm:"not null;uniqueIndex:uq_subscription_items_subscription_variant,priority:2;index" json:"variant_id"`
	Variant        *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	UnitAmount     int64           `gorm:"not null;default:0" json:"unit_amount"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'THB'" json:"currency"`
	IsActive       bool            `gorm:"not null;default:true;index:idx_subscription_items_subscription_id_is_active,priority:2" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
