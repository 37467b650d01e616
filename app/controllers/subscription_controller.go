package controllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/subboxhq/batchflow/app/models"
	"github.com/subboxhq/batchflow/app/repository"
	"github.com/subboxhq/batchflow/internal/pkg/database"
	"github.com/subboxhq/batchflow/internal/pkg/subscriptions"
)

type createSubscriptionItemRequest struct {
	VariantID  uint   `json:"variant_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
	UnitAmount int64  `json:"unit_amount" validate:"gte=0"`
	Currency   string `json:"currency" validate:"omitempty,len=3"`
}

type createSubscriptionRequest struct {
	UserID           uint                            `json:"user_id" validate:"required"`
	PlanID           uint                            `json:"plan_id" validate:"required"`
	StartDate        string                          `json:"start_date" validate:"required,datetime=2006-01-02"`
	DefaultAddressID uint                            `json:"default_address_id" validate:"required"`
	Items            []createSubscriptionItemRequest `json:"items" validate:"required,min=1,dive"`
}

// HandleCreateSubscription creates a subscription with its items. The unit
// amounts sent here are the contract prices later frozen onto orders.
func HandleCreateSubscription(c *fiber.Ctx) error {
	var req createSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_REQUEST", "message": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_REQUEST", "message": err.Error()})
	}

	startDate, err := parseDateParam(req.StartDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_REQUEST", "message": "start_date must be YYYY-MM-DD"})
	}

	db := database.GetDB()

	var plan models.Plan
	if err := db.First(&plan, req.PlanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"code": "PLAN_NOT_FOUND"})
		}
		return respondError(c, err)
	}
	if !plan.IsActive {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "PLAN_INACTIVE"})
	}

	var address models.Address
	err = db.Where("id = ? AND user_id = ?", req.DefaultAddressID, req.UserID).First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "ADDRESS_NOT_OWNED_BY_USER"})
		}
		return respondError(c, err)
	}

	items := make([]models.SubscriptionItem, 0, len(req.Items))
	for _, item := range req.Items {
		currency := strings.ToUpper(item.Currency)
		if currency == "" {
			currency = "THB"
		}
		if currency != "THB" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "UNSUPPORTED_CURRENCY"})
		}

		var variant models.ProductVariant
		err := db.Where("id = ? AND is_active = ?", item.VariantID, true).First(&variant).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"code": "VARIANT_NOT_FOUND"})
			}
			return respondError(c, err)
		}

		items = append(items, models.SubscriptionItem{
			VariantID:  item.VariantID,
			Quantity:   item.Quantity,
			UnitAmount: item.UnitAmount,
			Currency:   currency,
			IsActive:   true,
		})
	}

	sub := &models.Subscription{
		UserID:           req.UserID,
		PlanID:           req.PlanID,
		Status:           models.SubscriptionStatusActive,
		StartDate:        startDate,
		NextRunDate:      startDate,
		Timezone:         "Asia/Bangkok",
		DefaultAddressID: &req.DefaultAddressID,
		Items:            items,
	}
	if err := repository.GetGlobalFactory().GetSubscriptionRepository().Create(sub); err != nil {
		log.Printf("create subscription: %v", err)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(sub)
}

// HandleListSubscriptions returns a paginated list of subscriptions.
func HandleListSubscriptions(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)
	repo := repository.GetGlobalFactory().GetSubscriptionRepository()

	subs, err := repo.List(offset, limit)
	if err != nil {
		log.Printf("list subscriptions: %v", err)
		return respondError(c, err)
	}
	total, err := repo.Count()
	if err != nil {
		log.Printf("count subscriptions: %v", err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"data": subs, "total": total, "offset": offset, "limit": limit})
}

// HandleGetSubscription returns one subscription with items and plan.
func HandleGetSubscription(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_ID"})
	}

	sub, err := repository.GetGlobalFactory().GetSubscriptionRepository().GetByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sub)
}

// HandlePauseSubscription suspends an active subscription.
func HandlePauseSubscription(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_ID"})
	}

	svc := subscriptions.NewServiceFromDB(database.GetDB())
	if err := svc.Pause(c.Context(), id, time.Now().UTC()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "paused"})
}

// HandleResumeSubscription reactivates a paused subscription.
func HandleResumeSubscription(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_ID"})
	}

	svc := subscriptions.NewServiceFromDB(database.GetDB())
	if err := svc.Resume(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "active"})
}

// HandleCancelSubscription terminates a subscription; idempotent.
func HandleCancelSubscription(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_ID"})
	}

	svc := subscriptions.NewServiceFromDB(database.GetDB())
	if err := svc.Cancel(c.Context(), id, time.Now().UTC()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "canceled"})
}
