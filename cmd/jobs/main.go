package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/subboxhq/batchflow/app/repository"
	"github.com/subboxhq/batchflow/internal/pkg/batching"
	"github.com/subboxhq/batchflow/internal/pkg/database"
	"github.com/subboxhq/batchflow/internal/pkg/env"
	"github.com/subboxhq/batchflow/internal/pkg/jobs"
	"github.com/subboxhq/batchflow/internal/pkg/ordergen"
)

// One-shot job runner for external cron: runs one pipeline step and exits.
func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]

	flags := flag.NewFlagSet(command, flag.ExitOnError)
	dateArg := flags.String("date", time.Now().UTC().Format("2006-01-02"), "delivery date (YYYY-MM-DD)")
	cutoffArg := flags.String("cutoff", "", "batch cutoff time (RFC3339, default now)")
	nowArg := flags.String("now", "", "lock reference time (RFC3339, default now)")
	pageSize := flags.Int("page-size", jobs.DefaultPageSize, "subscriptions per page")
	haltOnError := flags.Bool("halt-on-error", false, "stop at the first failed unit instead of continuing")
	if err := flags.Parse(os.Args[2:]); err != nil {
		os.Exit(1)
	}

	deliveryDate, err := time.Parse("2006-01-02", *dateArg)
	if err != nil {
		log.Fatalf("invalid --date: %v", err)
	}

	env.SetupEnvFile()
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())

	db := database.GetDB()
	runner := jobs.NewRunner(
		repository.GetGlobalFactory().GetSubscriptionRepository(),
		ordergen.NewServiceFromDB(db),
		batching.NewServiceFromDB(db),
		jobs.NewCacheRecorder(),
		jobs.Options{PageSize: *pageSize, HaltOnError: *haltOnError},
	)

	ctx := context.Background()
	switch command {
	case "generate-orders":
		summary, err := runner.GenerateOrders(ctx, deliveryDate)
		report(summary, err)
	case "create-batches":
		cutoffAt, terr := parseTimeFlag(*cutoffArg)
		if terr != nil {
			log.Fatalf("invalid --cutoff: %v", terr)
		}
		summary, err := runner.CreateBatches(ctx, deliveryDate, cutoffAt)
		report(summary, err)
	case "lock-batches":
		now, terr := parseTimeFlag(*nowArg)
		if terr != nil {
			log.Fatalf("invalid --now: %v", terr)
		}
		summary, err := runner.LockBatches(ctx, deliveryDate, now)
		report(summary, err)
	default:
		printUsage()
		os.Exit(1)
	}
}

func parseTimeFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(time.RFC3339, value)
}

func report(summary any, err error) {
	if err != nil {
		log.Fatalf("job failed: %v (partial result %+v)", err, summary)
	}
	log.Printf("job finished: %+v", summary)
}

func printUsage() {
	fmt.Println("Usage: go run cmd/jobs/main.go [command] [flags]")
	fmt.Println("Available commands:")
	fmt.Println("  generate-orders --date=YYYY-MM-DD   generate orders from due subscriptions")
	fmt.Println("  create-batches  --date=YYYY-MM-DD   group pending orders into delivery batches")
	fmt.Println("  lock-batches    --date=YYYY-MM-DD   lock open batches past their cutoff")
}
