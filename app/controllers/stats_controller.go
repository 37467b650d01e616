package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/subboxhq/batchflow/internal/pkg/statistics"
)

// HandleGetDailyStats returns the cached operational snapshot for a delivery
// date: due subscriptions, generated orders and batch states.
func HandleGetDailyStats(c *fiber.Ctx) error {
	date, err := parseDateParam(c.Params("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_DATE"})
	}

	snapshot, err := statistics.GetDailySnapshot(date)
	if err != nil {
		log.Printf("daily statistics for %s: %v", c.Params("date"), err)
		return respondError(c, err)
	}
	return c.JSON(snapshot)
}
