package batching

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/subboxhq/batchflow/app/models"
	"gorm.io/gorm"
)

// AssemblySummary reports what a bulk assembly run actually changed.
type AssemblySummary struct {
	BatchesCreated int `json:"batches_created"`
	OrdersAttached int `json:"orders_attached"`
}

// Service groups orders into delivery batches and freezes batches past their
// cutoff. All operations are idempotent re-runs.
type Service struct {
	repo Repository
}

// NewService creates a batching service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a batching service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// AttachOrder places one order into the OPEN batch for its (delivery date,
// zone), creating the batch when none is open. Attaching the same order
// twice is a no-op; attaching to a locked batch fails with ErrBatchLocked.
func (s *Service) AttachOrder(ctx context.Context, orderID uint, cutoffAt time.Time) (uint, error) {
	var batchID uint
	err := s.repo.InTransaction(ctx, func(repo Repository) error {
		order, err := repo.GetOrderByID(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}

		batch, err := openOrCreateBatch(repo, order.DeliveryDate, order.ZoneID, cutoffAt)
		if err != nil {
			return err
		}
		if batch.IsLocked() {
			return ErrBatchLocked
		}

		if _, err := attachIfMissing(repo, batch.ID, order.ID); err != nil {
			return err
		}
		batchID = batch.ID
		return nil
	})
	return batchID, err
}

// CreateBatchesForDate groups every order at eligibleStatus for deliveryDate
// by (delivery date, zone), reuses or creates one OPEN batch per group, and
// attaches each order idempotently. Each group runs in its own transaction
// so one zone's failure leaves the others committed; errors are joined and
// returned alongside the partial summary.
func (s *Service) CreateBatchesForDate(ctx context.Context, deliveryDate time.Time, cutoffAt time.Time, eligibleStatus string) (AssemblySummary, error) {
	var summary AssemblySummary

	orders, err := s.repo.ListEligibleOrders(deliveryDate, eligibleStatus)
	if err != nil {
		return summary, err
	}
	if len(orders) == 0 {
		return summary, nil
	}

	groups := make(map[uint][]models.Order)
	for _, order := range orders {
		key := zoneKey(order.ZoneID)
		groups[key] = append(groups[key], order)
	}

	keys := make([]uint, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var errs []error
	for _, key := range keys {
		group := groups[key]
		zoneID := group[0].ZoneID

		err := s.repo.InTransaction(ctx, func(repo Repository) error {
			batch, err := repo.LockOpenBatch(deliveryDate, zoneID)
			if err != nil {
				return err
			}
			if batch == nil {
				batch, err = createOpenBatch(repo, deliveryDate, zoneID, cutoffAt)
				if err != nil {
					return err
				}
				summary.BatchesCreated++
			}

			for _, order := range group {
				attached, err := attachIfMissing(repo, batch.ID, order.ID)
				if err != nil {
					return err
				}
				if attached {
					summary.OrdersAttached++
				}
			}
			return nil
		})
		if err != nil {
			errs = append(errs, err)
		}
	}

	return summary, errors.Join(errs...)
}

// LockDueBatches freezes every OPEN batch for deliveryDate whose cutoff has
// passed. Candidates are scanned without locks, then re-verified one by one
// under a row lock, so concurrent lockers never double-count and one failure
// never blocks the rest. Returns the number of batches this call locked.
func (s *Service) LockDueBatches(ctx context.Context, deliveryDate time.Time, now time.Time) (int, error) {
	ids, err := s.repo.ListDueOpenBatchIDs(deliveryDate, now)
	if err != nil {
		return 0, err
	}

	locked := 0
	var errs []error
	for _, id := range ids {
		err := s.repo.InTransaction(ctx, func(repo Repository) error {
			batch, err := repo.LockBatchByID(id)
			if err != nil {
				return err
			}
			// A concurrent runner may have locked it, or the cutoff may have
			// moved since the unlocked scan.
			if batch == nil || batch.IsLocked() || batch.CutoffAt.After(now) {
				return nil
			}
			if err := repo.MarkBatchLocked(batch.ID, now); err != nil {
				return err
			}
			locked++
			return nil
		})
		if err != nil {
			errs = append(errs, err)
		}
	}

	return locked, errors.Join(errs...)
}

func openOrCreateBatch(repo Repository, deliveryDate time.Time, zoneID *uint, cutoffAt time.Time) (*models.DeliveryBatch, error) {
	batch, err := repo.LockOpenBatch(deliveryDate, zoneID)
	if err != nil {
		return nil, err
	}
	if batch != nil {
		return batch, nil
	}
	return createOpenBatch(repo, deliveryDate, zoneID, cutoffAt)
}

func createOpenBatch(repo Repository, deliveryDate time.Time, zoneID *uint, cutoffAt time.Time) (*models.DeliveryBatch, error) {
	count, err := repo.CountBatches(deliveryDate, zoneID)
	if err != nil {
		return nil, err
	}

	batch := &models.DeliveryBatch{
		BatchCode:    BatchCode(deliveryDate, zoneID, int(count)+1),
		DeliveryDate: deliveryDate,
		ZoneID:       zoneID,
		CutoffAt:     cutoffAt,
		Status:       models.BatchStatusOpen,
	}
	if err := repo.CreateBatch(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func attachIfMissing(repo Repository, batchID, orderID uint) (bool, error) {
	exists, err := repo.BatchHasOrder(batchID, orderID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := repo.AttachOrder(batchID, orderID); err != nil {
		return false, err
	}
	return true, nil
}
