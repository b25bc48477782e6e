package automation

import (
	"github.com/gofiber/fiber/v2"
)

type AutomationController struct {
	Service AutomationService
}

func NewAutomationController(service AutomationService) *AutomationController {
	return &AutomationController{Service: service}
}

// CreateRule godoc
// @Summary      Create an automation rule
// @Description  Rules react to requisition lifecycle triggers with scripts or notifications
// @Tags         automation
// @Accept       json
// @Produce      json
// @Param        input body AutomationRule true "Rule"
// @Success      201  {object} AutomationRule
// @Router       /automation/rules [post]
func (c *AutomationController) CreateRule(ctx *fiber.Ctx) error {
	var rule AutomationRule
	if err := ctx.BodyParser(&rule); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.CreateRule(ctx.Context(), &rule); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(rule)
}

// ListRules godoc
// @Summary      List automation rules
// @Tags         automation
// @Produce      json
// @Success      200  {array} AutomationRule
// @Router       /automation/rules [get]
func (c *AutomationController) ListRules(ctx *fiber.Ctx) error {
	rules, err := c.Service.ListRules(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(rules)
}

// UpdateRule godoc
// @Summary      Update an automation rule
// @Tags         automation
// @Accept       json
// @Produce      json
// @Param        id path string true "Rule ID (hex)"
// @Param        input body AutomationRule true "Rule"
// @Success      200  {object} AutomationRule
// @Router       /automation/rules/{id} [put]
func (c *AutomationController) UpdateRule(ctx *fiber.Ctx) error {
	var rule AutomationRule
	if err := ctx.BodyParser(&rule); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateRule(ctx.Context(), ctx.Params("id"), &rule); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(rule)
}

// DeleteRule godoc
// @Summary      Delete an automation rule
// @Tags         automation
// @Param        id path string true "Rule ID (hex)"
// @Success      204
// @Router       /automation/rules/{id} [delete]
func (c *AutomationController) DeleteRule(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteRule(ctx.Context(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
