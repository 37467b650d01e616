package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cosmetic lifecycle labels. The nullable timestamps below are the
// authoritative lifecycle signals; these strings are kept in sync for
// display and reporting but must never drive engine decisions.
const (
	SubscriptionStatusActive   = "ACTIVE"
	SubscriptionStatusPaused   = "PAUSED"
	SubscriptionStatusCanceled = "CANCELED"
)

// Subscription is a recurring commitment to a plan. Order generation treats a
// subscription as due and active iff PausedAt, CanceledAt and DeletedAt are
// all null and NextRunDate is on or before the target delivery date.
type Subscription struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	PublicID         string     `gorm:"type:char(36);uniqueIndex;not null" json:"public_id"`
	UserID           uint       `gorm:"not null;index:idx_subscriptions_user_id_status,priority:1" json:"user_id"`
	User             User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PlanID           uint       `gorm:"not null;index" json:"plan_id"`
	Plan             Plan       `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Status           string     `gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_subscriptions_user_id_status,priority:2;index:idx_subscriptions_status_next_run_date,priority:1" json:"status"`
	StartDate        time.Time  `gorm:"type:date;not null" json:"start_date"`
	NextRunDate      time.Time  `gorm:"type:date;not null;index:idx_subscriptions_status_next_run_date,priority:2" json:"next_run_date"`
	EndDate          *time.Time `gorm:"type:date" json:"end_date,omitempty"`
	Timezone         string     `gorm:"type:varchar(64);not null;default:'Asia/Bangkok'" json:"timezone"`
	DefaultAddressID *uint      `gorm:"index" json:"default_address_id,omitempty"`
	DefaultAddress   *Address   `gorm:"foreignKey:DefaultAddressID" json:"default_address,omitempty"`
	PausedAt         *time.Time `gorm:"type:datetime(3)" json:"paused_at,omitempty"`
	CanceledAt       *time.Time `gorm:"type:datetime(3)" json:"canceled_at,omitempty"`
	DeletedAt        *time.Time `gorm:"type:datetime(3);index" json:"deleted_at,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Items  []SubscriptionItem `gorm:"foreignKey:SubscriptionID" json:"items,omitempty"`
	Orders []Order            `gorm:"foreignKey:SubscriptionID" json:"orders,omitempty"`
}

func (s *Subscription) BeforeCreate(_ *gorm.DB) error {
	if s.PublicID == "" {
		s.PublicID = uuid.New().String()
	}
	return nil
}

// IsActive reports whether the subscription carries none of the lifecycle
// timestamps. The Status string is intentionally not consulted.
func (s *Subscription) IsActive() bool {
	return s.DeletedAt == nil && s.CanceledAt == nil && s.PausedAt == nil
}

// IsDueOn reports whether the next run date has arrived for the given
// delivery date.
func (s *Subscription) IsDueOn(deliveryDate time.Time) bool {
	return !s.NextRunDate.After(deliveryDate)
}
