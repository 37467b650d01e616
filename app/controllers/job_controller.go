package controllers

import (
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/subboxhq/batchflow/app/repository"
	"github.com/subboxhq/batchflow/internal/pkg/batching"
	"github.com/subboxhq/batchflow/internal/pkg/database"
	"github.com/subboxhq/batchflow/internal/pkg/jobs"
	"github.com/subboxhq/batchflow/internal/pkg/ordergen"
)

// jobTriggerRequest is the payload for all three job trigger endpoints.
// CutoffAt and Now default to the current time when omitted.
type jobTriggerRequest struct {
	DeliveryDate string `json:"delivery_date" validate:"required,datetime=2006-01-02"`
	CutoffAt     string `json:"cutoff_at" validate:"omitempty"`
	Now          string `json:"now" validate:"omitempty"`
}

var validate = validator.New()

func parseJobTrigger(c *fiber.Ctx) (*jobTriggerRequest, time.Time, error) {
	var req jobTriggerRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, time.Time{}, err
	}
	if err := validate.Struct(&req); err != nil {
		return nil, time.Time{}, err
	}
	date, err := parseDateParam(req.DeliveryDate)
	if err != nil {
		return nil, time.Time{}, err
	}
	return &req, date, nil
}

func parseTimeOrNow(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(time.RFC3339, value)
}

func newJobRunner() *jobs.Runner {
	db := database.GetDB()
	return jobs.NewRunner(
		repository.GetGlobalFactory().GetSubscriptionRepository(),
		ordergen.NewServiceFromDB(db),
		batching.NewServiceFromDB(db),
		jobs.NewCacheRecorder(),
		jobs.Options{},
	)
}

// HandleTriggerGenerateOrders runs order generation for a delivery date.
func HandleTriggerGenerateOrders(c *fiber.Ctx) error {
	_, date, err := parseJobTrigger(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_REQUEST", "message": err.Error()})
	}

	summary, err := newJobRunner().GenerateOrders(c.Context(), date)
	if err != nil {
		log.Printf("generate orders job: %v", err)
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// HandleTriggerCreateBatches runs batch assembly for a delivery date.
func HandleTriggerCreateBatches(c *fiber.Ctx) error {
	req, date, err := parseJobTrigger(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_REQUEST", "message": err.Error()})
	}
	cutoffAt, err := parseTimeOrNow(req.CutoffAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_REQUEST", "message": "cutoff_at must be RFC3339"})
	}

	summary, err := newJobRunner().CreateBatches(c.Context(), date, cutoffAt)
	if err != nil {
		log.Printf("create batches job: %v", err)
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// HandleTriggerLockBatches locks due batches for a delivery date.
func HandleTriggerLockBatches(c *fiber.Ctx) error {
	req, date, err := parseJobTrigger(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_REQUEST", "message": err.Error()})
	}
	now, err := parseTimeOrNow(req.Now)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_REQUEST", "message": "now must be RFC3339"})
	}

	summary, err := newJobRunner().LockBatches(c.Context(), date, now)
	if err != nil {
		log.Printf("lock batches job: %v", err)
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// HandleGetLastJobRun returns the recorded summary of a job's latest run.
func HandleGetLastJobRun(c *fiber.Ctx) error {
	name := c.Params("name")
	switch name {
	case "generate_orders", "create_batches", "lock_batches":
	default:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"code": "JOB_NOT_FOUND"})
	}

	payload, err := jobs.LastJobRun(name)
	if err != nil {
		log.Printf("last job run %s: %v", name, err)
		return respondError(c, err)
	}
	if payload == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"code": "NO_RUN_RECORDED"})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(payload)
}
