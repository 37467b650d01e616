package repository

import (
	"github.com/subboxhq/batchflow/app/models"
	"gorm.io/gorm"
)

// deliveryBatchRepository implements the DeliveryBatchRepository interface
type deliveryBatchRepository struct {
	db *gorm.DB
}

// NewDeliveryBatchRepository creates a new delivery batch repository instance
func NewDeliveryBatchRepository(db *gorm.DB) DeliveryBatchRepository {
	return &deliveryBatchRepository{db: db}
}

// GetByID retrieves a batch by its ID
func (r *deliveryBatchRepository) GetByID(id uint) (*models.DeliveryBatch, error) {
	var batch models.DeliveryBatch
	err := r.db.Preload("Zone").First(&batch, id).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// GetByPublicID retrieves a batch by its public ID
func (r *deliveryBatchRepository) GetByPublicID(publicID string) (*models.DeliveryBatch, error) {
	var batch models.DeliveryBatch
	err := r.db.Preload("Zone").Where("public_id = ?", publicID).First(&batch).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// List retrieves batches ordered by delivery date, newest first
func (r *deliveryBatchRepository) List(offset, limit int) ([]models.DeliveryBatch, error) {
	var batches []models.DeliveryBatch
	err := r.db.Preload("Zone").
		Order("delivery_date DESC, id DESC").Offset(offset).Limit(limit).Find(&batches).Error
	return batches, err
}

// Count returns the total number of batches
func (r *deliveryBatchRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.DeliveryBatch{}).Count(&count).Error
	return count, err
}

// CountOrders returns the number of orders attached to a batch
func (r *deliveryBatchRepository) CountOrders(batchID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.DeliveryBatchOrder{}).
		Where("batch_id = ?", batchID).Count(&count).Error
	return count, err
}
