package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BatchStatusOpen   = "OPEN"
	BatchStatusLocked = "LOCKED"
)

// DeliveryBatch groups orders sharing a delivery date and zone. A batch
// starts OPEN and becomes LOCKED once its cutoff passes; a locked batch never
// reopens and never accepts further orders.
type DeliveryBatch struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	PublicID     string     `gorm:"type:char(36);uniqueIndex;not null" json:"public_id"`
	BatchCode    string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"batch_code"`
	DeliveryDate time.Time  `gorm:"type:date;not null;index:idx_delivery_batches_delivery_date_zone_id,priority:1" json:"delivery_date"`
	ZoneID       *uint      `gorm:"index:idx_delivery_batches_delivery_date_zone_id,priority:2" json:"zone_id,omitempty"`
	Zone         *Zone      `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
	CutoffAt     time.Time  `gorm:"type:datetime(3);not null;index:idx_delivery_batches_status_cutoff_at,priority:2" json:"cutoff_at"`
	Status       string     `gorm:"type:varchar(20);not null;default:'OPEN';index:idx_delivery_batches_status_cutoff_at,priority:1" json:"status"`
	LockedAt     *time.Time `gorm:"type:datetime(3)" json:"locked_at,omitempty"`
	DispatchedAt *time.Time `gorm:"type:datetime(3)" json:"dispatched_at,omitempty"`
	CompletedAt  *time.Time `gorm:"type:datetime(3)" json:"completed_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	OrderLinks []DeliveryBatchOrder `gorm:"foreignKey:BatchID" json:"order_links,omitempty"`
}

func (b *DeliveryBatch) BeforeCreate(_ *gorm.DB) error {
	if b.PublicID == "" {
		b.PublicID = uuid.New().String()
	}
	return nil
}

// IsLocked reports whether the batch is frozen. LockedAt is authoritative.
func (b *DeliveryBatch) IsLocked() bool {
	return b.LockedAt != nil
}
