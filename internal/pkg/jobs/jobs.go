package jobs

import (
	"context"
	"log"
	"time"

	"github.com/subboxhq/batchflow/app/models"
	"github.com/subboxhq/batchflow/internal/pkg/batching"
	"github.com/subboxhq/batchflow/internal/pkg/ordergen"
)

const DefaultPageSize = 200

// Options configures how orchestrators walk their work lists. HaltOnError
// stops a run at the first failed unit; the default is to log the failure,
// count it, and keep going so one bad subscription cannot stall the rest.
type Options struct {
	PageSize    int
	HaltOnError bool
}

func (o Options) pageSize() int {
	if o.PageSize <= 0 {
		return DefaultPageSize
	}
	return o.PageSize
}

// GenerateOrdersSummary reports the outcome of one generate-orders run.
type GenerateOrdersSummary struct {
	DeliveryDate string `json:"delivery_date"`
	Created      int    `json:"created"`
	Existing     int    `json:"existing"`
	Failed       int    `json:"failed"`
}

// CreateBatchesSummary reports the outcome of one create-batches run.
type CreateBatchesSummary struct {
	DeliveryDate   string `json:"delivery_date"`
	BatchesCreated int    `json:"batches_created"`
	OrdersAttached int    `json:"orders_attached"`
}

// LockBatchesSummary reports the outcome of one lock-batches run.
type LockBatchesSummary struct {
	DeliveryDate string `json:"delivery_date"`
	Locked       int    `json:"locked"`
	Now          string `json:"now"`
}

// SubscriptionSource pages through due, active subscriptions in ascending id
// order for reproducible pagination.
type SubscriptionSource interface {
	ListDueActive(cutoffDate time.Time, limit, offset int) ([]models.Subscription, error)
}

// Recorder persists the latest run summary per job for observability.
// Recording failures are logged, never fatal.
type Recorder interface {
	RecordJobRun(name string, summary any) error
}

// Runner drives the three engines. Every unit of work (one subscription, one
// zone group, one batch) is its own transaction, so a mid-run crash leaves a
// consistent state the next run simply resumes from.
type Runner struct {
	subs     SubscriptionSource
	orders   *ordergen.Service
	batches  *batching.Service
	recorder Recorder
	opts     Options
}

// NewRunner creates a job runner. recorder may be nil.
func NewRunner(subs SubscriptionSource, orders *ordergen.Service, batches *batching.Service, recorder Recorder, opts Options) *Runner {
	return &Runner{
		subs:     subs,
		orders:   orders,
		batches:  batches,
		recorder: recorder,
		opts:     opts,
	}
}

// GenerateOrders pages through due subscriptions and generates one order per
// (subscription, deliveryDate). Re-running counts already-generated orders
// as existing and creates nothing twice.
func (r *Runner) GenerateOrders(ctx context.Context, deliveryDate time.Time) (GenerateOrdersSummary, error) {
	summary := GenerateOrdersSummary{DeliveryDate: deliveryDate.Format("2006-01-02")}
	pageSize := r.opts.pageSize()

	for offset := 0; ; offset += pageSize {
		subs, err := r.subs.ListDueActive(deliveryDate, pageSize, offset)
		if err != nil {
			return summary, err
		}
		if len(subs) == 0 {
			break
		}

		for _, sub := range subs {
			_, wasCreated, err := r.orders.GenerateFromSubscription(ctx, sub.ID, deliveryDate)
			if err != nil {
				if r.opts.HaltOnError {
					return summary, err
				}
				summary.Failed++
				log.Printf("generate orders: subscription %d failed: %v", sub.ID, err)
				continue
			}
			if wasCreated {
				summary.Created++
			} else {
				summary.Existing++
			}
		}
	}

	r.record("generate_orders", summary)
	return summary, nil
}

// CreateBatches groups all pending orders for deliveryDate into delivery
// batches. cutoffAt is stamped on batches created by this run.
func (r *Runner) CreateBatches(ctx context.Context, deliveryDate time.Time, cutoffAt time.Time) (CreateBatchesSummary, error) {
	summary := CreateBatchesSummary{DeliveryDate: deliveryDate.Format("2006-01-02")}

	result, err := r.batches.CreateBatchesForDate(ctx, deliveryDate, cutoffAt, models.OrderStatusPending)
	summary.BatchesCreated = result.BatchesCreated
	summary.OrdersAttached = result.OrdersAttached
	if err != nil {
		if r.opts.HaltOnError {
			return summary, err
		}
		log.Printf("create batches for %s: partial failure: %v", summary.DeliveryDate, err)
	}

	r.record("create_batches", summary)
	return summary, nil
}

// LockBatches freezes every open batch for deliveryDate whose cutoff has
// passed as of now.
func (r *Runner) LockBatches(ctx context.Context, deliveryDate time.Time, now time.Time) (LockBatchesSummary, error) {
	summary := LockBatchesSummary{
		DeliveryDate: deliveryDate.Format("2006-01-02"),
		Now:          now.UTC().Format(time.RFC3339),
	}

	locked, err := r.batches.LockDueBatches(ctx, deliveryDate, now)
	summary.Locked = locked
	if err != nil {
		if r.opts.HaltOnError {
			return summary, err
		}
		log.Printf("lock batches for %s: partial failure: %v", summary.DeliveryDate, err)
	}

	r.record("lock_batches", summary)
	return summary, nil
}

func (r *Runner) record(name string, summary any) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.RecordJobRun(name, summary); err != nil {
		log.Printf("record job run %s: %v", name, err)
	}
}
