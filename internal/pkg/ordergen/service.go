package ordergen

import (
	"context"
	"time"

	"github.com/subboxhq/batchflow/app/models"
	"gorm.io/gorm"
)

// Service turns one due subscription into one pending order with frozen
// price snapshots. Safe to call any number of times for the same input.
type Service struct {
	repo Repository
}

// NewService creates an order generation service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates an order generation service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// GenerateFromSubscription creates the order for (subscriptionID,
// deliveryDate) or returns the existing one. The second return value reports
// whether this call created it. The whole operation is one transaction: the
// subscription row lock is taken first so concurrent runs for the same
// subscription serialize, and any error rolls back order and items together.
func (s *Service) GenerateFromSubscription(ctx context.Context, subscriptionID uint, deliveryDate time.Time) (*models.Order, bool, error) {
	var (
		order      *models.Order
		wasCreated bool
	)

	err := s.repo.InTransaction(ctx, func(repo Repository) error {
		sub, err := repo.LockSubscriptionByID(subscriptionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return ErrSubscriptionNotFound
		}

		if !sub.IsActive() {
			return ErrSubscriptionNotActive
		}
		if !sub.IsDueOn(deliveryDate) {
			return ErrSubscriptionNotDue
		}

		key := GeneratedKey(sub.ID, deliveryDate)
		existing, err := repo.FindOrderByGeneratedKey(key)
		if err != nil {
			return err
		}
		if existing != nil {
			// Already generated; nothing is written on this path.
			order = existing
			return nil
		}

		if sub.DefaultAddressID == nil {
			return ErrSubscriptionDefaultAddressRequired
		}

		// The order inherits the zone of its shipping address so batch
		// assembly can group it; routing may refine this later.
		var zoneID *uint
		if sub.DefaultAddress != nil {
			zoneID = sub.DefaultAddress.ZoneID
		}

		created := &models.Order{
			OrderNo:           OrderNo(key),
			GeneratedKey:      key,
			UserID:            sub.UserID,
			SubscriptionID:    &sub.ID,
			Status:            models.OrderStatusPending,
			DeliveryDate:      deliveryDate,
			ZoneID:            zoneID,
			ShippingAddressID: *sub.DefaultAddressID,
			Currency:          "THB",
		}
		if err := repo.CreateOrder(created); err != nil {
			return err
		}

		var subtotal int64
		for _, si := range sub.Items {
			if !si.IsActive || si.Quantity <= 0 {
				continue
			}
			if si.Variant == nil {
				return ErrSubscriptionItemVariantMissing
			}
			if si.UnitAmount < 0 {
				return ErrSubscriptionItemPriceInvalid
			}

			exists, err := repo.OrderItemExists(created.ID, si.VariantID)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			lineTotal := si.UnitAmount * int64(si.Quantity)
			item := &models.OrderItem{
				OrderID:         created.ID,
				VariantID:       si.VariantID,
				SKU:             si.Variant.SKU,
				Name:            si.Variant.Name,
				Quantity:        si.Quantity,
				UnitAmount:      si.UnitAmount,
				LineTotalAmount: lineTotal,
			}
			if err := repo.CreateOrderItem(item); err != nil {
				return err
			}
			created.Items = append(created.Items, *item)
			subtotal += lineTotal
		}

		created.SubtotalAmount = subtotal
		created.TotalAmount = subtotal + created.ShippingAmount
		if err := repo.SaveOrderTotals(created); err != nil {
			return err
		}

		order = created
		wasCreated = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return order, wasCreated, nil
}
