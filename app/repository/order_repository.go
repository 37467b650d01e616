package repository

import (
	"time"

	"github.com/subboxhq/batchflow/app/models"
	"gorm.io/gorm"
)

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// GetByID retrieves an order by its ID
func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("Zone").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByPublicID retrieves an order by its public ID
func (r *orderRepository) GetByPublicID(publicID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("Zone").
		Where("public_id = ?", publicID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo retrieves an order by its order number
func (r *orderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Where("order_no = ?", orderNo).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByDeliveryDate retrieves orders for a delivery date with pagination
func (r *orderRepository) ListByDeliveryDate(deliveryDate time.Time, offset, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("delivery_date = ?", deliveryDate.Format("2006-01-02")).
		Order("id ASC").Offset(offset).Limit(limit).Find(&orders).Error
	return orders, err
}

// CountByDeliveryDate returns the number of orders for a delivery date
func (r *orderRepository) CountByDeliveryDate(deliveryDate time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("delivery_date = ?", deliveryDate.Format("2006-01-02")).
		Count(&count).Error
	return count, err
}
