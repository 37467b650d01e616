package models

import (
	"time"
)

// Address is a shipping destination. Routing is out of scope; the zone link is
// only carried through to orders and batches.
type Address struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Label      string    `gorm:"type:varchar(100)" json:"label"`
	Line1      string    `gorm:"type:varchar(255);not null" json:"line1"`
	Line2      string    `gorm:"type:varchar(255)" json:"line2"`
	District   string    `gorm:"type:varchar(100)" json:"district"`
	City       string    `gorm:"type:varchar(100);not null" json:"city"`
	PostalCode string    `gorm:"type:varchar(10)" json:"postal_code"`
	ZoneID     *uint     `gorm:"index" json:"zone_id,omitempty"`
	Zone       *Zone     `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
