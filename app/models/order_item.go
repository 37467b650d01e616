package models

import "time"

// OrderItem is a frozen snapshot of a subscription item at generation time.
// SKU, name and unit price are copied, never recomputed from the variant.
type OrderItem struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderID         uint            `gorm:"not null;uniqueIndex:uq_order_items_order_variant,priority:1" json:"order_id"`
	VariantID       uint            `gorm:"not null;uniqueIndex:uq_order_items_order_variant,priority:2;index" json:"variant_id"`
	Variant         *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
	SKU             string          `gorm:"type:varchar(64);not null" json:"sku"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitAmount      int64           `gorm:"not null;default:0" json:"unit_amount"`
	LineTotalAmount int64           `gorm:"not null;default:0" json:"line_total_amount"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
