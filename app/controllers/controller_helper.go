package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/subboxhq/batchflow/internal/pkg/batching"
	"github.com/subboxhq/batchflow/internal/pkg/ordergen"
	"github.com/subboxhq/batchflow/internal/pkg/subscriptions"
)

const dateLayout = "2006-01-02"

// parseDateParam reads a YYYY-MM-DD query or body value.
func parseDateParam(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

// parseIDParam reads a numeric path parameter.
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// parsePagination reads offset/limit query parameters with sane bounds.
func parsePagination(c *fiber.Ctx) (offset, limit int) {
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit = c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return offset, limit
}

// errorStatus maps domain errors to HTTP statuses. Unknown errors are
// internal: the handler logs them and the client sees a generic 500.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ordergen.ErrSubscriptionNotFound),
		errors.Is(err, subscriptions.ErrSubscriptionNotFound),
		errors.Is(err, batching.ErrOrderNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ordergen.ErrSubscriptionNotActive),
		errors.Is(err, ordergen.ErrSubscriptionNotDue),
		errors.Is(err, ordergen.ErrSubscriptionDefaultAddressRequired),
		errors.Is(err, subscriptions.ErrSubscriptionNotPausable),
		errors.Is(err, subscriptions.ErrSubscriptionNotResumable),
		errors.Is(err, batching.ErrBatchLocked):
		return fiber.StatusConflict
	case errors.Is(err, ordergen.ErrSubscriptionItemVariantMissing),
		errors.Is(err, ordergen.ErrSubscriptionItemPriceInvalid):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError renders a domain error as {code, message} JSON.
func respondError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	code := err.Error()
	if status == fiber.StatusInternalServerError {
		code = "INTERNAL_ERROR"
	}
	return c.Status(status).JSON(fiber.Map{"code": code})
}
