package ordergen

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
	sub    *models.Subscription
	orders []models.Order
	items  []models.OrderItem
	nextID uint
}

func (f *fakeRepo) InTransaction(_ context.Context, fn func(Repository) error) error {
	ordersBefore := append([]models.Order(nil), f.orders...)
	itemsBefore := append([]models.OrderItem(nil), f.items...)
	if err := fn(f); err != nil {
		f.orders = ordersBefore
		f.items = itemsBefore
		return err
	}
	return nil
}

func (f *fakeRepo) LockSubscriptionByID(id uint) (*models.Subscription, error) {
	if f.sub == nil || f.sub.ID != id {
		return nil, nil
	}
	return f.sub, nil
}

func (f *fakeRepo) FindOrderByGeneratedKey(key string) (*models.Order, error) {
	for i := range f.orders {
		if f.orders[i].GeneratedKey == key {
			order := f.orders[i]
			return &order, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CreateOrder(order *models.Order) error {
	f.nextID++
	order.ID = f.nextID
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeRepo) OrderItemExists(orderID, variantID uint) (bool, error) {
	for _, item := range f.items {
		if item.OrderID == orderID && item.VariantID == variantID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) CreateOrderItem(item *models.OrderItem) error {
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeRepo) SaveOrderTotals(order *models.Order) error {
	for i := range f.orders {
		if f.orders[i].ID == order.ID {
			f.orders[i].SubtotalAmount = order.SubtotalAmount
			f.orders[i].TotalAmount = order.TotalAmount
			return nil
		}
	}
	return nil
}

func deliveryDate() time.Time {
	return time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)
}

func activeSubscription() *models.Subscription {
	addressID := uint(10)
	zoneID := uint(3)
	return &models.Subscription{
		ID:               1,
		UserID:           5,
		NextRunDate:      deliveryDate(),
		DefaultAddressID: &addressID,
		DefaultAddress:   &models.Address{ID: addressID, ZoneID: &zoneID},
		Items: []models.SubscriptionItem{
			{
				SubscriptionID: 1,
				VariantID:      100,
				Quantity:       2,
				UnitAmount:     1000,
				IsActive:       true,
				Variant:        &models.ProductVariant{ID: 100, SKU: "BOX-S", Name: "Small Box"},
			},
		},
	}
}

func TestGenerateFromSubscription_CreatesOrder(t *testing.T) {
	repo := &fakeRepo{sub: activeSubscription()}
	svc := NewService(repo)

	order, wasCreated, err := svc.GenerateFromSubscription(context.Background(), 1, deliveryDate())
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.True(t, wasCreated)

	key := GeneratedKey(1, deliveryDate())
	assert.Equal(t, key, order.GeneratedKey)
	assert.Equal(t, OrderNo(key), order.OrderNo)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "THB", order.Currency)
	require.NotNil(t, order.ZoneID)
	assert.Equal(t, uint(3), *order.ZoneID)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "BOX-S", order.Items[0].SKU)
	assert.Equal(t, "Small Box", order.Items[0].Name)
	assert.Equal(t, int64(1000), order.Items[0].UnitAmount)
	assert.Equal(t, int64(2000), order.Items[0].LineTotalAmount)

	assert.Equal(t, int64(2000), order.SubtotalAmount)
	assert.Equal(t, int64(2000), order.TotalAmount)
}

func TestGenerateFromSubscription_Idempotent(t *testing.T) {
	repo := &fakeRepo{sub: activeSubscription()}
	svc := NewService(repo)

	first, wasCreated, err := svc.GenerateFromSubscription(context.Background(), 1, deliveryDate())
	require.NoError(t, err)
	require.True(t, wasCreated)

	second, wasCreated, err := svc.GenerateFromSubscription(context.Background(), 1, deliveryDate())
	require.NoError(t, err)
	assert.False(t, wasCreated)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.OrderNo, second.OrderNo)

	assert.Len(t, repo.orders, 1)
	assert.Len(t, repo.items, 1)
}

func TestGenerateFromSubscription_DifferentDatesYieldDifferentOrders(t *testing.T) {
	sub := activeSubscription()
	repo := &fakeRepo{sub: sub}
	svc := NewService(repo)

	first, _, err := svc.GenerateFromSubscription(context.Background(), 1, deliveryDate())
	require.NoError(t, err)

	second, wasCreated, err := svc.GenerateFromSubscription(context.Background(), 1, deliveryDate().AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.True(t, wasCreated)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.OrderNo, second.OrderNo)
}

func TestGenerateFromSubscription_NotFound(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	_, _, err := svc.GenerateFromSubscription(context.Background(), 99, deliveryDate())
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestGenerateFromSubscription_NotActive(t *testing.T) {
	now := time.Now()

	sub := activeSubscription()
	sub.PausedAt = &now
	repo := &fakeRepo{sub: sub}
	svc := NewService(repo)

	_, _, err := svc.GenerateFromSubscription(context.Background(), 1, deliveryDate())
	assert.ErrorIs(t, err, ErrSubscriptionNotActive)
	assert.Empty(t, repo.orders)
}

func TestGenerateFromSubscription_CanceledEvenWithActiveStatus(t *testing.T) {
	now := time.Now()

	sub := activeSubscription()
	sub.Status = models.SubscriptionStatusActive
	sub.CanceledAt = &now
	repo := &fakeRepo{sub: sub}
	svc := NewService(repo)

	_, _, err := svc.GenerateFromSubscription(context.Background(), 1, deliveryDate())
	assert.ErrorIs(t, err, ErrSubscriptionNotActive)
}

func TestGenerateFromSubscription_NotDue(t *testing.T) {
	sub := activeSubscription()
	sub.NextRunDate = deliveryDate().AddDate(0, 0, 1)
	repo := &fakeRepo{sub: sub}
	svc := NewService(repo)

	_, _, err := svc.GenerateFromSubscription(context.Background(), 1, deliveryDate())
	assert.ErrorIs(t, err, ErrSubscriptionNotDue)
}

func TestGenerateFromSubscription_DefaultAddressRequired(t *testing.T) {
	sub := activeSubscription()
	sub.DefaultAddressID = nil
	sub.DefaultAddress = nil
	repo := &fakeRepo{sub: sub}
	svc := NewService(repo)

	_, _, err := svc.GenerateFromSubscription(context.Background(), 1, deliveryDate())
	assert.ErrorIs(t, err, ErrSubscriptionDefaultAddressRequired)
	assert.Empty(t, repo.orders)
}

func TestGenerateFromSubscription_SkipsInactiveAndZeroQuantityItems(t *testing.T) {
	sub := activeSubscription()
	sub.Items = append(sub.Items,
		models.SubscriptionItem{
			SubscriptionID: 1,
			VariantID:      101,
			Quantity:       1,
			UnitAmount:     500,
			IsActive:       false,
			Variant:        &models.ProductVariant{ID: 101, SKU: "BOX-M", Name: "Medium Box"},
		},
		models.SubscriptionItem{
			SubscriptionID: 1,
			VariantID:      102,
			Quantity:       0,
			UnitAmount:     500,
			IsActive:       true,
			Variant:        &models.ProductVariant{ID: 102, SKU: "BOX-L", Name: "Large Box"},
		},
	)
	repo := &fakeRepo{sub: sub}
	svc := NewService(repo)

	order, _, err := svc.GenerateFromSubscription(context.Background(), 1, deliveryDate())
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(2000), order.SubtotalAmount)
}

func TestGenerateFromSubscription_VariantMissingRollsBack(t *testing.T) {
	sub := activeSubscription()
	sub.Items[0].Variant = nil
	repo := &fakeRepo{sub: sub}
	svc := NewService(repo)

	_, _, err := svc.GenerateFromSubscription(context.Background(), 1, deliveryDate())
	assert.ErrorIs(t, err, ErrSubscriptionItemVariantMissing)

	// Rollback leaves no half-written order behind.
	assert.Empty(t, repo.orders)
	assert.Empty(t, repo.items)
}

func TestGenerateFromSubscription_InvalidPriceRollsBack(t *testing.T) {
	sub := activeSubscription()
	sub.Items[0].UnitAmount = -1
	repo := &fakeRepo{sub: sub}
	svc := NewService(repo)

	_, _, err := svc.GenerateFromSubscription(context.Background(), 1, deliveryDate())
	assert.ErrorIs(t, err, ErrSubscriptionItemPriceInvalid)
	assert.Empty(t, repo.orders)
	assert.Empty(t, repo.items)
}

func TestGenerateFromSubscription_PriceSnapshotSurvivesRepricing(t *testing.T) {
	sub := activeSubscription()
	repo := &fakeRepo{sub: sub}
	svc := NewService(repo)

	order, _, err := svc.GenerateFromSubscription(context.Background(), 1, deliveryDate())
	require.NoError(t, err)
	require.Equal(t, int64(2000), order.SubtotalAmount)

	// Repricing the subscription item after generation must not touch the
	// already-created order.
	sub.Items[0].UnitAmount = 9999

	again, wasCreated, err := svc.GenerateFromSubscription(context.Background(), 1, deliveryDate())
	require.NoError(t, err)
	assert.False(t, wasCreated)
	assert.Equal(t, int64(2000), repo.orders[0].SubtotalAmount)
	assert.Equal(t, order.ID, again.ID)
}
