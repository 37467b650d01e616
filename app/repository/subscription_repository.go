package repository

import (
	"time"

	"github.com/subboxhq/batchflow/app/models"
	"gorm.io/gorm"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create creates a new subscription in the database
func (r *subscriptionRepository) Create(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

// GetByID retrieves a subscription by its ID
func (r *subscriptionRepository) GetByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Preload("Plan").Preload("Items").Preload("Items.Variant").
		Preload("DefaultAddress").First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByPublicID retrieves a subscription by its public ID
func (r *subscriptionRepository) GetByPublicID(publicID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Preload("Plan").Preload("Items").Preload("Items.Variant").
		Where("public_id = ?", publicID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// List retrieves a paginated list of subscriptions
func (r *subscriptionRepository) List(offset, limit int) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Preload("Plan").
		Order("id ASC").Offset(offset).Limit(limit).Find(&subs).Error
	return subs, err
}

// Count returns the total number of subscriptions
func (r *subscriptionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).Count(&count).Error
	return count, err
}

// ListDueActive pages due subscriptions. The lifecycle timestamps are the
// filter, not the cosmetic status string.
func (r *subscriptionRepository) ListDueActive(cutoffDate time.Time, limit, offset int) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.
		Where("paused_at IS NULL AND canceled_at IS NULL AND deleted_at IS NULL AND next_run_date <= ?",
			cutoffDate.Format("2006-01-02")).
		Order("id ASC").Limit(limit).Offset(offset).
		Find(&subs).Error
	return subs, err
}
