package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/subboxhq/batchflow/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Domain errors surfaced by lifecycle transitions. The messages double as
// stable API error codes.
var (
	ErrSubscriptionNotFound     = errors.New("SUBSCRIPTION_NOT_FOUND")
	ErrSubscriptionNotPausable  = errors.New("SUBSCRIPTION_NOT_PAUSABLE")
	ErrSubscriptionNotResumable = errors.New("SUBSCRIPTION_NOT_RESUMABLE")
)

// Repository provides the DB operations used by lifecycle transitions.
type Repository interface {
	InTransaction(ctx context.Context, fn func(Repository) error) error
	// LockSubscriptionByID loads a subscription under an exclusive row lock;
	// nil when absent.
	LockSubscriptionByID(id uint) (*models.Subscription, error)
	UpdateLifecycle(id uint, fields map[string]any) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a lifecycle repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) InTransaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) LockSubscriptionByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sub, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) UpdateLifecycle(id uint, fields map[string]any) error {
	return r.db.Model(&models.Subscription{}).Where("id = ?", id).Updates(fields).Error
}

// Service applies pause/resume/cancel transitions. The nullable timestamps
// are the source of truth; the Status string is written in the same
// transaction purely for display.
type Service struct {
	repo Repository
}

// NewService creates a lifecycle service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a lifecycle service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// Pause suspends an active subscription.
func (s *Service) Pause(ctx context.Context, subscriptionID uint, now time.Time) error {
	return s.repo.InTransaction(ctx, func(repo Repository) error {
		sub, err := repo.LockSubscriptionByID(subscriptionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return ErrSubscriptionNotFound
		}
		if !sub.IsActive() {
			return ErrSubscriptionNotPausable
		}
		return repo.UpdateLifecycle(sub.ID, map[string]any{
			"paused_at": now,
			"status":    models.SubscriptionStatusPaused,
		})
	})
}

// Resume reactivates a paused subscription.
func (s *Service) Resume(ctx context.Context, subscriptionID uint) error {
	return s.repo.InTransaction(ctx, func(repo Repository) error {
		sub, err := repo.LockSubscriptionByID(subscriptionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return ErrSubscriptionNotFound
		}
		if sub.DeletedAt != nil || sub.CanceledAt != nil || sub.PausedAt == nil {
			return ErrSubscriptionNotResumable
		}
		return repo.UpdateLifecycle(sub.ID, map[string]any{
			"paused_at": nil,
			"status":    models.SubscriptionStatusActive,
		})
	})
}

// Cancel terminates a subscription. Canceling twice is a no-op.
func (s *Service) Cancel(ctx context.Context, subscriptionID uint, now time.Time) error {
	return s.repo.InTransaction(ctx, func(repo Repository) error {
		sub, err := repo.LockSubscriptionByID(subscriptionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return ErrSubscriptionNotFound
		}
		if sub.CanceledAt != nil {
			return nil
		}
		return repo.UpdateLifecycle(sub.ID, map[string]any{
			"canceled_at": now,
			"status":      models.SubscriptionStatusCanceled,
		})
	})
}
