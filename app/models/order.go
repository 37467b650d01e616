package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusCanceled  = "CANCELED"
)

// Order is the immutable result of generating from one subscription for one
// delivery date. GeneratedKey is the idempotency anchor: at most one order
// may exist per (subscription, delivery date), enforced by the unique index.
type Order struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	PublicID          string        `gorm:"type:char(36);uniqueIndex;not null" json:"public_id"`
	OrderNo           string        `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_no"`
	GeneratedKey      string        `gorm:"type:varchar(64);uniqueIndex" json:"generated_key"`
	UserID            uint          `gorm:"not null;index:idx_orders_user_id_created_at,priority:1" json:"user_id"`
	User              User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	SubscriptionID    *uint         `gorm:"index:idx_orders_subscription_id_delivery_date,priority:1" json:"subscription_id,omitempty"`
	Subscription      *Subscription `gorm:"foreignKey:SubscriptionID" json:"subscription,omitempty"`
	Status            string        `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_orders_status_delivery_date,priority:1" json:"status"`
	DeliveryDate      time.Time     `gorm:"type:date;not null;index:idx_orders_subscription_id_delivery_date,priority:2;index:idx_orders_status_delivery_date,priority:2;index:idx_orders_delivery_date_zone_id,priority:1" json:"delivery_date"`
	ZoneID            *uint         `gorm:"index:idx_orders_delivery_date_zone_id,priority:2" json:"zone_id,omitempty"`
	Zone              *Zone         `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
	ShippingAddressID uint          `gorm:"not null;index" json:"shipping_address_id"`
	ShippingAddress   *Address      `gorm:"foreignKey:ShippingAddressID" json:"shipping_address,omitempty"`
	Notes             string        `gorm:"type:varchar(500)" json:"notes"`
	Currency          string        `gorm:"type:varchar(3);not null;default:'THB'" json:"currency"`
	SubtotalAmount    int64         `gorm:"not null;default:0" json:"subtotal_amount"`
	ShippingAmount    int64         `gorm:"not null;default:0" json:"shipping_amount"`
	TotalAmount       int64         `gorm:"not null;default:0" json:"total_amount"`
	CreatedAt         time.Time     `gorm:"autoCreateTime;index:idx_orders_user_id_created_at,priority:2" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.PublicID == "" {
		o.PublicID = uuid.New().String()
	}
	return nil
}
