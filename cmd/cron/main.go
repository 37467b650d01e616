package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/subboxhq/batchflow/app/repository"
	"github.com/subboxhq/batchflow/internal/pkg/batching"
	"github.com/subboxhq/batchflow/internal/pkg/database"
	"github.com/subboxhq/batchflow/internal/pkg/env"
	"github.com/subboxhq/batchflow/internal/pkg/jobs"
	"github.com/subboxhq/batchflow/internal/pkg/ordergen"
)

// In-process scheduler for deployments without an external cron. Every job
// run is idempotent, so overlapping or repeated invocations are harmless.
func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())

	db := database.GetDB()
	runner := jobs.NewRunner(
		repository.GetGlobalFactory().GetSubscriptionRepository(),
		ordergen.NewServiceFromDB(db),
		batching.NewServiceFromDB(db),
		jobs.NewCacheRecorder(),
		jobs.Options{},
	)

	scheduler := cron.New()

	// Generate orders for today early in the morning.
	mustSchedule(scheduler, env.GetEnv("CRON_GENERATE_ORDERS", "0 4 * * *"), func() {
		date := today()
		summary, err := runner.GenerateOrders(context.Background(), date)
		if err != nil {
			log.Printf("[CRON] generate orders: %v", err)
			return
		}
		log.Printf("[CRON] generate orders: %+v", summary)
	})

	// Assemble batches once orders exist.
	mustSchedule(scheduler, env.GetEnv("CRON_CREATE_BATCHES", "0 6 * * *"), func() {
		date := today()
		summary, err := runner.CreateBatches(context.Background(), date, time.Now().UTC())
		if err != nil {
			log.Printf("[CRON] create batches: %v", err)
			return
		}
		log.Printf("[CRON] create batches: %+v", summary)
	})

	// Lock batches past cutoff, checked frequently.
	mustSchedule(scheduler, env.GetEnv("CRON_LOCK_BATCHES", "*/15 * * * *"), func() {
		date := today()
		summary, err := runner.LockBatches(context.Background(), date, time.Now().UTC())
		if err != nil {
			log.Printf("[CRON] lock batches: %v", err)
			return
		}
		log.Printf("[CRON] lock batches: %+v", summary)
	})

	scheduler.Start()
	log.Println("batchflow cron started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("batchflow cron stopping")
	<-scheduler.Stop().Done()
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func mustSchedule(scheduler *cron.Cron, spec string, fn func()) {
	if _, err := scheduler.AddFunc(spec, fn); err != nil {
		log.Fatalf("invalid cron spec %q: %v", spec, err)
	}
}
