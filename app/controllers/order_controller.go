package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/subboxhq/batchflow/app/repository"
)

// HandleListOrders returns the orders for a delivery date (?date=YYYY-MM-DD).
func HandleListOrders(c *fiber.Ctx) error {
	date, err := parseDateParam(c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_DATE", "message": "date must be YYYY-MM-DD"})
	}
	offset, limit := parsePagination(c)

	repo := repository.GetGlobalFactory().GetOrderRepository()
	orders, err := repo.ListByDeliveryDate(date, offset, limit)
	if err != nil {
		log.Printf("list orders for %s: %v", date.Format(dateLayout), err)
		return respondError(c, err)
	}
	total, err := repo.CountByDeliveryDate(date)
	if err != nil {
		log.Printf("count orders for %s: %v", date.Format(dateLayout), err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"data": orders, "total": total, "offset": offset, "limit": limit})
}

// HandleGetOrder returns one order with its items.
func HandleGetOrder(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_ID"})
	}

	order, err := repository.GetGlobalFactory().GetOrderRepository().GetByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}
