package supplier

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type SupplierController struct {
	Service SupplierService
}

func NewSupplierController(service SupplierService) *SupplierController {
	return &SupplierController{Service: service}
}

// CreateSupplier godoc
// @Summary      Register a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        input body SupplierInput true "Supplier Input"
// @Success      201  {object} Supplier
// @Router       /suppliers [post]
func (c *SupplierController) CreateSupplier(ctx *fiber.Ctx) error {
	var input SupplierInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := c.Service.Create(ctx.Context(), input)
	if err != nil {
		return respondSupplierError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

// ListSuppliers godoc
// @Summary      List suppliers
// @Tags         suppliers
// @Produce      json
// @Param        category query string false "Category filter"
// @Param        search query string false "Matches name, contact or email"
// @Param        active query bool false "Only active suppliers"
// @Success      200  {array} Supplier
// @Router       /suppliers [get]
func (c *SupplierController) ListSuppliers(ctx *fiber.Ctx) error {
	suppliers, err := c.Service.List(ctx.Context(), ctx.Query("category"), ctx.Query("search"), ctx.QueryBool("active"))
	if err != nil {
		return respondSupplierError(ctx, err)
	}
	return ctx.JSON(suppliers)
}

// GetSupplier godoc
// @Summary      Get a supplier
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID (hex)"
// @Success      200  {object} Supplier
// @Failure      404  {string} string "Supplier not found"
// @Router       /suppliers/{id} [get]
func (c *SupplierController) GetSupplier(ctx *fiber.Ctx) error {
	sup, err := c.Service.Get(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return respondSupplierError(ctx, err)
	}
	return ctx.JSON(sup)
}

// UpdateSupplier godoc
// @Summary      Update a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier ID (hex)"
// @Param        input body SupplierInput true "Fields to update"
// @Success      200  {object} Supplier
// @Router       /suppliers/{id} [put]
func (c *SupplierController) UpdateSupplier(ctx *fiber.Ctx) error {
	var input SupplierInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updated, err := c.Service.Update(ctx.Context(), ctx.Params("id"), input)
	if err != nil {
		return respondSupplierError(ctx, err)
	}
	return ctx.JSON(updated)
}

// DeactivateSupplier godoc
// @Summary      Deactivate a supplier
// @Tags         suppliers
// @Param        id path string true "Supplier ID (hex)"
// @Success      204
// @Router       /suppliers/{id} [delete]
func (c *SupplierController) DeactivateSupplier(ctx *fiber.Ctx) error {
	if err := c.Service.Deactivate(ctx.Context(), ctx.Params("id")); err != nil {
		return respondSupplierError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func respondSupplierError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrDuplicateEmail):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
}
