package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/subboxhq/batchflow/app/repository"
)

// HandleListBatches returns delivery batches, newest delivery date first.
func HandleListBatches(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)
	repo := repository.GetGlobalFactory().GetDeliveryBatchRepository()

	batches, err := repo.List(offset, limit)
	if err != nil {
		log.Printf("list batches: %v", err)
		return respondError(c, err)
	}
	total, err := repo.Count()
	if err != nil {
		log.Printf("count batches: %v", err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"data": batches, "total": total, "offset": offset, "limit": limit})
}

// HandleGetBatch returns one batch with its attached order count.
func HandleGetBatch(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_ID"})
	}

	repo := repository.GetGlobalFactory().GetDeliveryBatchRepository()
	batch, err := repo.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}
	ordersCount, err := repo.CountOrders(batch.ID)
	if err != nil {
		log.Printf("count orders for batch %d: %v", batch.ID, err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"id":            batch.ID,
		"public_id":     batch.PublicID,
		"batch_code":    batch.BatchCode,
		"delivery_date": batch.DeliveryDate.Format(dateLayout),
		"zone_id":       batch.ZoneID,
		"status":        batch.Status,
		"cutoff_at":     batch.CutoffAt,
		"locked_at":     batch.LockedAt,
		"orders_count":  ordersCount,
		"created_at":    batch.CreatedAt,
	})
}
