package router

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/subboxhq/batchflow/app/controllers"
	"github.com/subboxhq/batchflow/internal/pkg/env"
	"github.com/subboxhq/batchflow/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Storage:    newLimiterStorage(),
	}))

	v1 := api.Group("/v1")

	v1.Post("/subscriptions", controllers.HandleCreateSubscription)
	v1.Get("/subscriptions", controllers.HandleListSubscriptions)
	v1.Get("/subscriptions/:id", controllers.HandleGetSubscription)
	v1.Post("/subscriptions/:id/pause", controllers.HandlePauseSubscription)
	v1.Post("/subscriptions/:id/resume", controllers.HandleResumeSubscription)
	v1.Post("/subscriptions/:id/cancel", controllers.HandleCancelSubscription)

	v1.Get("/orders", controllers.HandleListOrders)
	v1.Get("/orders/:id", controllers.HandleGetOrder)

	v1.Get("/delivery-batches", controllers.HandleListBatches)
	v1.Get("/delivery-batches/:id", controllers.HandleGetBatch)

	admin := v1.Group("/admin", middleware.AdminAPIKeyMiddleware())
	admin.Post("/jobs/generate-orders", controllers.HandleTriggerGenerateOrders)
	admin.Post("/jobs/create-batches", controllers.HandleTriggerCreateBatches)
	admin.Post("/jobs/lock-batches", controllers.HandleTriggerLockBatches)
	admin.Get("/jobs/:name/last-run", controllers.HandleGetLastJobRun)
	admin.Get("/stats/:date", controllers.HandleGetDailyStats)
}

// newLimiterStorage backs the rate limiter with Redis so limits hold across
// replicas.
func newLimiterStorage() fiber.Storage {
	port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
	if err != nil {
		port = 6379
	}
	return redisstorage.New(redisstorage.Config{
		Host: env.GetEnv("CACHE_HOST", "localhost"),
		Port: port,
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
