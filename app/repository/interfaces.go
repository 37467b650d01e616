package repository

import (
	"time"

	"github.com/subboxhq/batchflow/app/models"
	"gorm.io/gorm"
)

// SubscriptionRepository defines the interface for subscription-related database operations
type SubscriptionRepository interface {
	Create(sub *models.Subscription) error
	GetByID(id uint) (*models.Subscription, error)
	GetByPublicID(publicID string) (*models.Subscription, error)
	List(offset, limit int) ([]models.Subscription, error)
	Count() (int64, error)
	// ListDueActive pages due subscriptions in ascending id order: no
	// lifecycle timestamp set and next_run_date on or before cutoffDate.
	ListDueActive(cutoffDate time.Time, limit, offset int) ([]models.Subscription, error)
}

// OrderRepository defines the interface for order-related database operations
type OrderRepository interface {
	GetByID(id uint) (*models.Order, error)
	GetByPublicID(publicID string) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	ListByDeliveryDate(deliveryDate time.Time, offset, limit int) ([]models.Order, error)
	CountByDeliveryDate(deliveryDate time.Time) (int64, error)
}

// DeliveryBatchRepository defines the interface for batch-related database operations
type DeliveryBatchRepository interface {
	GetByID(id uint) (*models.DeliveryBatch, error)
	GetByPublicID(publicID string) (*models.DeliveryBatch, error)
	List(offset, limit int) ([]models.DeliveryBatch, error)
	Count() (int64, error)
	CountOrders(batchID uint) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Subscription  SubscriptionRepository
	Order         OrderRepository
	DeliveryBatch DeliveryBatchRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Subscription:  NewSubscriptionRepository(db),
		Order:         NewOrderRepository(db),
		DeliveryBatch: NewDeliveryBatchRepository(db),
	}
}
