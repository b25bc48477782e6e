package consumable

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type ConsumableController struct {
	Service ConsumableService
}

func NewConsumableController(service ConsumableService) *ConsumableController {
	return &ConsumableController{Service: service}
}

type RestockPayload struct {
	Quantity float64 `json:"quantity"`
}

// CreateConsumable godoc
// @Summary      Register a consumable
// @Tags         consumables
// @Accept       json
// @Produce      json
// @Param        input body CreateConsumableInput true "Consumable Input"
// @Success      201  {object} Consumable
// @Failure      409  {string} string "Code already exists"
// @Router       /consumables [post]
func (c *ConsumableController) CreateConsumable(ctx *fiber.Ctx) error {
	var input CreateConsumableInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := c.Service.Create(ctx.Context(), input)
	if err != nil {
		return respondConsumableError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

// ListConsumables godoc
// @Summary      List consumables
// @Tags         consumables
// @Produce      json
// @Param        category query string false "Category filter"
// @Param        search query string false "Matches code or name"
// @Param        active query bool false "Only active items"
// @Success      200  {array} Consumable
// @Router       /consumables [get]
func (c *ConsumableController) ListConsumables(ctx *fiber.Ctx) error {
	items, err := c.Service.List(ctx.Context(), ctx.Query("category"), ctx.Query("search"), ctx.QueryBool("active"))
	if err != nil {
		return respondConsumableError(ctx, err)
	}
	return ctx.JSON(items)
}

// LowStockConsumables godoc
// @Summary      Consumables at or below their reorder level
// @Tags         consumables
// @Produce      json
// @Success      200  {array} Consumable
// @Router       /consumables/low-stock [get]
func (c *ConsumableController) LowStockConsumables(ctx *fiber.Ctx) error {
	items, err := c.Service.LowStock(ctx.Context())
	if err != nil {
		return respondConsumableError(ctx, err)
	}
	return ctx.JSON(items)
}

// GetConsumable godoc
// @Summary      Get a consumable
// @Tags         consumables
// @Produce      json
// @Param        id path string true "Consumable ID (hex)"
// @Success      200  {object} Consumable
// @Failure      404  {string} string "Consumable not found"
// @Router       /consumables/{id} [get]
func (c *ConsumableController) GetConsumable(ctx *fiber.Ctx) error {
	item, err := c.Service.Get(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return respondConsumableError(ctx, err)
	}
	return ctx.JSON(item)
}

// UpdateConsumable godoc
// @Summary      Update a consumable
// @Tags         consumables
// @Accept       json
// @Produce      json
// @Param        id path string true "Consumable ID (hex)"
// @Param        input body UpdateConsumableInput true "Fields to update"
// @Success      200  {object} Consumable
// @Router       /consumables/{id} [put]
func (c *ConsumableController) UpdateConsumable(ctx *fiber.Ctx) error {
	var input UpdateConsumableInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updated, err := c.Service.Update(ctx.Context(), ctx.Params("id"), input)
	if err != nil {
		return respondConsumableError(ctx, err)
	}
	return ctx.JSON(updated)
}

// DeactivateConsumable godoc
// @Summary      Deactivate a consumable
// @Tags         consumables
// @Param        id path string true "Consumable ID (hex)"
// @Success      204
// @Router       /consumables/{id} [delete]
func (c *ConsumableController) DeactivateConsumable(ctx *fiber.Ctx) error {
	if err := c.Service.Deactivate(ctx.Context(), ctx.Params("id")); err != nil {
		return respondConsumableError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// RestockConsumable godoc
// @Summary      Add received stock
// @Tags         consumables
// @Accept       json
// @Produce      json
// @Param        id path string true "Consumable ID (hex)"
// @Param        input body RestockPayload true "Quantity received"
// @Success      200  {object} Consumable
// @Router       /consumables/{id}/restock [post]
func (c *ConsumableController) RestockConsumable(ctx *fiber.Ctx) error {
	var payload RestockPayload
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	item, err := c.Service.Restock(ctx.Context(), ctx.Params("id"), payload.Quantity)
	if err != nil {
		return respondConsumableError(ctx, err)
	}
	return ctx.JSON(item)
}

func respondConsumableError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrDuplicateCode):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrInsufficientStock):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
}
