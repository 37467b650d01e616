package batching

import (
	"context"
	"errors"
	"time"

	"github.com/subboxhq/batchflow/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations used by batch assembly and locking.
type Repository interface {
	// InTransaction runs fn against a repository bound to a single
	// transaction; fn returning an error rolls the whole unit back.
	InTransaction(ctx context.Context, fn func(Repository) error) error
	// GetOrderByID returns nil when the order does not exist.
	GetOrderByID(id uint) (*models.Order, error)
	// LockOpenBatch finds the OPEN, unlocked batch for (deliveryDate, zoneID)
	// under an exclusive row lock. Locked batches are never returned, so a
	// locked predecessor forces creation of a fresh batch. Returns nil when
	// no open batch exists.
	LockOpenBatch(deliveryDate time.Time, zoneID *uint) (*models.DeliveryBatch, error)
	// CountBatches counts all batches ever created for (deliveryDate,
	// zoneID), locked ones included; used to derive successor batch codes.
	CountBatches(deliveryDate time.Time, zoneID *uint) (int64, error)
	CreateBatch(batch *models.DeliveryBatch) error
	BatchHasOrder(batchID, orderID uint) (bool, error)
	AttachOrder(batchID, orderID uint) error
	// ListEligibleOrders returns all orders for deliveryDate at the given
	// status, ordered by id for reproducible grouping.
	ListEligibleOrders(deliveryDate time.Time, status string) ([]models.Order, error)
	// ListDueOpenBatchIDs scans, without locks, the OPEN unlocked batches for
	// deliveryDate whose cutoff has passed.
	ListDueOpenBatchIDs(deliveryDate time.Time, now time.Time) ([]uint, error)
	// LockBatchByID loads one batch under an exclusive row lock; nil when
	// absent.
	LockBatchByID(id uint) (*models.DeliveryBatch, error)
	MarkBatchLocked(batchID uint, now time.Time) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a batching repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) InTransaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) GetOrderByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func zoneCondition(q *gorm.DB, zoneID *uint) *gorm.DB {
	if zoneID == nil {
		return q.Where("zone_id IS NULL")
	}
	return q.Where("zone_id = ?", *zoneID)
}

func (r *gormRepository) LockOpenBatch(deliveryDate time.Time, zoneID *uint) (*models.DeliveryBatch, error) {
	var batch models.DeliveryBatch
	q := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("delivery_date = ? AND status = ? AND locked_at IS NULL", deliveryDate.Format("2006-01-02"), models.BatchStatusOpen)
	err := zoneCondition(q, zoneID).First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

func (r *gormRepository) CountBatches(deliveryDate time.Time, zoneID *uint) (int64, error) {
	var count int64
	q := r.db.Model(&models.DeliveryBatch{}).
		Where("delivery_date = ?", deliveryDate.Format("2006-01-02"))
	err := zoneCondition(q, zoneID).Count(&count).Error
	return count, err
}

func (r *gormRepository) CreateBatch(batch *models.DeliveryBatch) error {
	return r.db.Create(batch).Error
}

func (r *gormRepository) BatchHasOrder(batchID, orderID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.DeliveryBatchOrder{}).
		Where("batch_id = ? AND order_id = ?", batchID, orderID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) AttachOrder(batchID, orderID uint) error {
	return r.db.Create(&models.DeliveryBatchOrder{BatchID: batchID, OrderID: orderID}).Error
}

func (r *gormRepository) ListEligibleOrders(deliveryDate time.Time, status string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.
		Where("delivery_date = ? AND status = ?", deliveryDate.Format("2006-01-02"), status).
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}

func (r *gormRepository) ListDueOpenBatchIDs(deliveryDate time.Time, now time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.DeliveryBatch{}).
		Where("delivery_date = ? AND status = ? AND locked_at IS NULL AND cutoff_at <= ?",
			deliveryDate.Format("2006-01-02"), models.BatchStatusOpen, now).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *gormRepository) LockBatchByID(id uint) (*models.DeliveryBatch, error) {
	var batch models.DeliveryBatch
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&batch, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

func (r *gormRepository) MarkBatchLocked(batchID uint, now time.Time) error {
	return r.db.Model(&models.DeliveryBatch{}).
		Where("id = ?", batchID).
		Updates(map[string]any{
			"locked_at": now,
			"status":    models.BatchStatusLocked,
		}).Error
}
