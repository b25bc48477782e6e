package notification

import (
	"errors"

	"go-erp/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type NotificationController struct {
	Service NotificationService
}

func NewNotificationController(service NotificationService) *NotificationController {
	return &NotificationController{Service: service}
}

// ListNotifications godoc
// @Summary      Notifications for the current user
// @Tags         notifications
// @Produce      json
// @Param        unread query bool false "Only unread"
// @Param        limit query int false "Entries" default(50)
// @Success      200  {array} Notification
// @Router       /notifications [get]
func (c *NotificationController) ListNotifications(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	notifications, err := c.Service.ListForUser(ctx.Context(), claims.UserID, ctx.QueryBool("unread"), int64(ctx.QueryInt("limit", 50)))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(notifications)
}

// MarkNotificationRead godoc
// @Summary      Mark one notification read
// @Tags         notifications
// @Param        id path string true "Notification ID (hex)"
// @Success      204
// @Router       /notifications/{id}/read [post]
func (c *NotificationController) MarkNotificationRead(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := c.Service.MarkRead(ctx.Context(), ctx.Params("id"), claims.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// MarkAllNotificationsRead godoc
// @Summary      Mark every notification read
// @Tags         notifications
// @Success      204
// @Router       /notifications/read-all [post]
func (c *NotificationController) MarkAllNotificationsRead(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := c.Service.MarkAllRead(ctx.Context(), claims.UserID); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
