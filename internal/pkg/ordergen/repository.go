package ordergen

import (
	"context"
	"errors"

	"github.com/subboxhq/batchflow/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations used by order generation. All
// methods are expected to run inside the scope opened by InTransaction.
type Repository interface {
	// InTransaction runs fn against a repository bound to a single
	// transaction; fn returning an error rolls the whole unit back.
	InTransaction(ctx context.Context, fn func(Repository) error) error
	// LockSubscriptionByID loads a subscription with its items, variants and
	// default address under an exclusive row lock. Returns nil when absent.
	LockSubscriptionByID(id uint) (*models.Subscription, error)
	// FindOrderByGeneratedKey returns nil when no order carries the key.
	FindOrderByGeneratedKey(key string) (*models.Order, error)
	CreateOrder(order *models.Order) error
	OrderItemExists(orderID, variantID uint) (bool, error)
	CreateOrderItem(item *models.OrderItem) error
	SaveOrderTotals(order *models.Order) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates an order generation repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) InTransaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) LockSubscriptionByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Preload("Items.Variant").
		Preload("DefaultAddress").
		First(&sub, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) FindOrderByGeneratedKey(key string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Where("generated_key = ?", key).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) CreateOrder(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *gormRepository) OrderItemExists(orderID, variantID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.OrderItem{}).
		Where("order_id = ? AND variant_id = ?", orderID, variantID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) CreateOrderItem(item *models.OrderItem) error {
	return r.db.Create(item).Error
}

func (r *gormRepository) SaveOrderTotals(order *models.Order) error {
	return r.db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"subtotal_amount": order.SubtotalAmount,
			"total_amount":    order.TotalAmount,
		}).Error
}
