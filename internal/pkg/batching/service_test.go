package batching

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subboxhq/batchflow/app/models"
)

// fakeRepo is an in-memory Repository. InTransaction snapshots the stores and
// restores them when fn fails, mirroring a real rollback.
type fakeRepo struct {
	orders  []models.Order
	batches []models.DeliveryBatch
	links   []models.DeliveryBatchOrder
	nextID  uint
}

func (f *fakeRepo) InTransaction(_ context.Context, fn func(Repository) error) error {
	batchesBefore := append([]models.DeliveryBatch(nil), f.batches...)
	linksBefore := append([]models.DeliveryBatchOrder(nil), f.links...)
	if err := fn(f); err != nil {
		f.batches = batchesBefore
		f.links = linksBefore
		return err
	}
	return nil
}

func (f *fakeRepo) GetOrderByID(id uint) (*models.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == id {
			order := f.orders[i]
			return &order, nil
		}
	}
	return nil, nil
}

func sameZone(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (f *fakeRepo) LockOpenBatch(deliveryDate time.Time, zoneID *uint) (*models.DeliveryBatch, error) {
	for i := range f.batches {
		b := &f.batches[i]
		if b.DeliveryDate.Equal(deliveryDate) && sameZone(b.ZoneID, zoneID) &&
			b.Status == models.BatchStatusOpen && b.LockedAt == nil {
			batch := *b
			return &batch, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CountBatches(deliveryDate time.Time, zoneID *uint) (int64, error) {
	var count int64
	for i := range f.batches {
		if f.batches[i].DeliveryDate.Equal(deliveryDate) && sameZone(f.batches[i].ZoneID, zoneID) {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) CreateBatch(batch *models.DeliveryBatch) error {
	f.nextID++
	batch.ID = f.nextID
	f.batches = append(f.batches, *batch)
	return nil
}

func (f *fakeRepo) BatchHasOrder(batchID, orderID uint) (bool, error) {
	for _, link := range f.links {
		if link.BatchID == batchID && link.OrderID == orderID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) AttachOrder(batchID, orderID uint) error {
	f.links = append(f.links, models.DeliveryBatchOrder{BatchID: batchID, OrderID: orderID})
	return nil
}

func (f *fakeRepo) ListEligibleOrders(deliveryDate time.Time, status string) ([]models.Order, error) {
	var out []models.Order
	for _, order := range f.orders {
		if order.DeliveryDate.Equal(deliveryDate) && order.Status == status {
			out = append(out, order)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListDueOpenBatchIDs(deliveryDate time.Time, now time.Time) ([]uint, error) {
	var ids []uint
	for _, b := range f.batches {
		if b.DeliveryDate.Equal(deliveryDate) && b.Status == models.BatchStatusOpen &&
			b.LockedAt == nil && !b.CutoffAt.After(now) {
			ids = append(ids, b.ID)
		}
	}
	return ids, nil
}

func (f *fakeRepo) LockBatchByID(id uint) (*models.DeliveryBatch, error) {
	for i := range f.batches {
		if f.batches[i].ID == id {
			batch := f.batches[i]
			return &batch, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) MarkBatchLocked(batchID uint, now time.Time) error {
	for i := range f.batches {
		if f.batches[i].ID == batchID {
			lockedAt := now
			f.batches[i].LockedAt = &lockedAt
			f.batches[i].Status = models.BatchStatusLocked
			return nil
		}
	}
	return nil
}

func day() time.Time {
	return time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)
}

func cutoff() time.Time {
	return time.Date(2025, 7, 13, 18, 0, 0, 0, time.UTC)
}

func pendingOrder(id uint, zoneID *uint) models.Order {
	return models.Order{
		ID:           id,
		Status:       models.OrderStatusPending,
		DeliveryDate: day(),
		ZoneID:       zoneID,
	}
}

func TestAttachOrder_CreatesBatchWhenNoneOpen(t *testing.T) {
	zone := uint(3)
	repo := &fakeRepo{orders: []models.Order{pendingOrder(1, &zone)}}
	svc := NewService(repo)

	batchID, err := svc.AttachOrder(context.Background(), 1, cutoff())
	require.NoError(t, err)
	require.NotZero(t, batchID)

	require.Len(t, repo.batches, 1)
	assert.Equal(t, "B20250714-Z3", repo.batches[0].BatchCode)
	assert.Equal(t, models.BatchStatusOpen, repo.batches[0].Status)
	require.Len(t, repo.links, 1)
}

func TestAttachOrder_ReusesOpenBatchAndIsIdempotent(t *testing.T) {
	zone := uint(3)
	repo := &fakeRepo{orders: []models.Order{pendingOrder(1, &zone), pendingOrder(2, &zone)}}
	svc := NewService(repo)

	first, err := svc.AttachOrder(context.Background(), 1, cutoff())
	require.NoError(t, err)
	second, err := svc.AttachOrder(context.Background(), 2, cutoff())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Re-attaching changes nothing.
	again, err := svc.AttachOrder(context.Background(), 1, cutoff())
	require.NoError(t, err)
	assert.Equal(t, first, again)

	assert.Len(t, repo.batches, 1)
	assert.Len(t, repo.links, 2)
}

func TestAttachOrder_OrderNotFound(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	_, err := svc.AttachOrder(context.Background(), 99, cutoff())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestAttachOrder_LockedBatchGetsSuccessor(t *testing.T) {
	zone := uint(3)
	lockedAt := cutoff()
	repo := &fakeRepo{
		orders: []models.Order{pendingOrder(1, &zone)},
		batches: []models.DeliveryBatch{{
			ID:           1,
			BatchCode:    "B20250714-Z3",
			DeliveryDate: day(),
			ZoneID:       &zone,
			CutoffAt:     cutoff(),
			Status:       models.BatchStatusLocked,
			LockedAt:     &lockedAt,
		}},
		nextID: 1,
	}
	svc := NewService(repo)

	batchID, err := svc.AttachOrder(context.Background(), 1, cutoff().Add(24*time.Hour))
	require.NoError(t, err)

	// The locked batch is never reused; a fresh one with a sequence-suffixed
	// code takes its place.
	assert.NotEqual(t, uint(1), batchID)
	require.Len(t, repo.batches, 2)
	assert.Equal(t, "B20250714-Z3-2", repo.batches[1].BatchCode)
	assert.Equal(t, models.BatchStatusOpen, repo.batches[1].Status)
}

func TestCreateBatchesForDate_GroupsByZone(t *testing.T) {
	zoneA := uint(1)
	zoneB := uint(2)
	repo := &fakeRepo{orders: []models.Order{
		pendingOrder(1, &zoneA),
		pendingOrder(2, &zoneA),
		pendingOrder(3, &zoneB),
		pendingOrder(4, nil),
	}}
	svc := NewService(repo)

	summary, err := svc.CreateBatchesForDate(context.Background(), day(), cutoff(), models.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.BatchesCreated)
	assert.Equal(t, 4, summary.OrdersAttached)
	assert.Len(t, repo.batches, 3)
	assert.Len(t, repo.links, 4)
}

func TestCreateBatchesForDate_Idempotent(t *testing.T) {
	zone := uint(1)
	repo := &fakeRepo{orders: []models.Order{pendingOrder(1, &zone), pendingOrder(2, &zone)}}
	svc := NewService(repo)

	first, err := svc.CreateBatchesForDate(context.Background(), day(), cutoff(), models.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 1, first.BatchesCreated)
	assert.Equal(t, 2, first.OrdersAttached)

	second, err := svc.CreateBatchesForDate(context.Background(), day(), cutoff(), models.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 0, second.BatchesCreated)
	assert.Equal(t, 0, second.OrdersAttached)
	assert.Len(t, repo.batches, 1)
	assert.Len(t, repo.links, 2)
}

func TestCreateBatchesForDate_NewOrdersJoinExistingBatch(t *testing.T) {
	zone := uint(1)
	repo := &fakeRepo{orders: []models.Order{pendingOrder(1, &zone)}}
	svc := NewService(repo)

	_, err := svc.CreateBatchesForDate(context.Background(), day(), cutoff(), models.OrderStatusPending)
	require.NoError(t, err)

	repo.orders = append(repo.orders, pendingOrder(2, &zone))

	summary, err := svc.CreateBatchesForDate(context.Background(), day(), cutoff(), models.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.BatchesCreated)
	assert.Equal(t, 1, summary.OrdersAttached)
	assert.Len(t, repo.batches, 1)
}

func TestCreateBatchesForDate_IgnoresOtherStatusesAndDates(t *testing.T) {
	zone := uint(1)
	confirmed := pendingOrder(2, &zone)
	confirmed.Status = models.OrderStatusConfirmed
	otherDay := pendingOrder(3, &zone)
	otherDay.DeliveryDate = day().AddDate(0, 0, 1)

	repo := &fakeRepo{orders: []models.Order{pendingOrder(1, &zone), confirmed, otherDay}}
	svc := NewService(repo)

	summary, err := svc.CreateBatchesForDate(context.Background(), day(), cutoff(), models.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.BatchesCreated)
	assert.Equal(t, 1, summary.OrdersAttached)
}

func TestLockDueBatches_LocksPastCutoff(t *testing.T) {
	now := cutoff().Add(time.Hour)
	repo := &fakeRepo{
		batches: []models.DeliveryBatch{
			{ID: 1, DeliveryDate: day(), CutoffAt: cutoff(), Status: models.BatchStatusOpen},
			{ID: 2, DeliveryDate: day(), CutoffAt: now.Add(time.Hour), Status: models.BatchStatusOpen},
		},
		nextID: 2,
	}
	svc := NewService(repo)

	locked, err := svc.LockDueBatches(context.Background(), day(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, locked)

	assert.Equal(t, models.BatchStatusLocked, repo.batches[0].Status)
	require.NotNil(t, repo.batches[0].LockedAt)
	assert.True(t, repo.batches[0].LockedAt.Equal(now))

	assert.Equal(t, models.BatchStatusOpen, repo.batches[1].Status)
	assert.Nil(t, repo.batches[1].LockedAt)
}

func TestLockDueBatches_Idempotent(t *testing.T) {
	now := cutoff().Add(time.Hour)
	repo := &fakeRepo{
		batches: []models.DeliveryBatch{
			{ID: 1, DeliveryDate: day(), CutoffAt: cutoff(), Status: models.BatchStatusOpen},
		},
		nextID: 1,
	}
	svc := NewService(repo)

	locked, err := svc.LockDueBatches(context.Background(), day(), now)
	require.NoError(t, err)
	require.Equal(t, 1, locked)
	firstLockedAt := *repo.batches[0].LockedAt

	locked, err = svc.LockDueBatches(context.Background(), day(), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, locked)
	assert.True(t, repo.batches[0].LockedAt.Equal(firstLockedAt))
}

func TestLockDueBatches_NothingDue(t *testing.T) {
	repo := &fakeRepo{
		batches: []models.DeliveryBatch{
			{ID: 1, DeliveryDate: day(), CutoffAt: cutoff(), Status: models.BatchStatusOpen},
		},
		nextID: 1,
	}
	svc := NewService(repo)

	locked, err := svc.LockDueBatches(context.Background(), day(), cutoff().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, locked)
	assert.Equal(t, models.BatchStatusOpen, repo.batches[0].Status)
}
