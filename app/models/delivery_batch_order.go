package models

import "time"

// DeliveryBatchOrder links an order into a batch. The composite primary key
// makes attachment naturally idempotent: the same pair can only exist once.
type DeliveryBatchOrder struct {
	BatchID   uint           `gorm:"primaryKey;autoIncrement:false" json:"batch_id"`
	OrderID   uint           `gorm:"primaryKey;autoIncrement:false;index" json:"order_id"`
	Batch     *DeliveryBatch `gorm:"foreignKey:BatchID" json:"batch,omitempty"`
	Order     *Order         `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}
