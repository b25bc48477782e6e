package department

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type DepartmentController struct {
	Service DepartmentService
}

func NewDepartmentController(service DepartmentService) *DepartmentController {
	return &DepartmentController{Service: service}
}

// CreateDepartment godoc
// @Summary      Create a department
// @Tags         departments
// @Accept       json
// @Produce      json
// @Param        input body DepartmentInput true "Department Input"
// @Success      201  {object} Department
// @Failure      409  {string} string "Name or code already exists"
// @Router       /departments [post]
func (c *DepartmentController) CreateDepartment(ctx *fiber.Ctx) error {
	var input DepartmentInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	d, err := c.Service.Create(ctx.Context(), input)
	if err != nil {
		return respondDepartmentError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(d)
}

// ListDepartments godoc
// @Summary      List departments
// @Tags         departments
// @Produce      json
// @Param        active query bool false "Only active departments"
// @Success      200  {array} Department
// @Router       /departments [get]
func (c *DepartmentController) ListDepartments(ctx *fiber.Ctx) error {
	departments, err := c.Service.List(ctx.Context(), ctx.QueryBool("active"))
	if err != nil {
		return respondDepartmentError(ctx, err)
	}
	return ctx.JSON(departments)
}

// GetDepartment godoc
// @Summary      Get a department
// @Tags         departments
// @Produce      json
// @Param        id path string true "Department ID (hex)"
// @Success      200  {object} Department
// @Failure      404  {string} string "Department not found"
// @Router       /departments/{id} [get]
func (c *DepartmentController) GetDepartment(ctx *fiber.Ctx) error {
	d, err := c.Service.Get(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return respondDepartmentError(ctx, err)
	}
	return ctx.JSON(d)
}

// UpdateDepartment godoc
// @Summary      Update a department
// @Tags         departments
// @Accept       json
// @Produce      json
// @Param        id path string true "Department ID (hex)"
// @Param        input body DepartmentInput true "Fields to update"
// @Success      200  {object} Department
// @Router       /departments/{id} [put]
func (c *DepartmentController) UpdateDepartment(ctx *fiber.Ctx) error {
	var input DepartmentInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	d, err := c.Service.Update(ctx.Context(), ctx.Params("id"), input)
	if err != nil {
		return respondDepartmentError(ctx, err)
	}
	return ctx.JSON(d)
}

// DeactivateDepartment godoc
// @Summary      Deactivate a department
// @Tags         departments
// @Param        id path string true "Department ID (hex)"
// @Success      204
// @Router       /departments/{id} [delete]
func (c *DepartmentController) DeactivateDepartment(ctx *fiber.Ctx) error {
	if err := c.Service.Deactivate(ctx.Context(), ctx.Params("id")); err != nil {
		return respondDepartmentError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func respondDepartmentError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrDuplicateName), errors.Is(err, ErrDuplicateCode):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
}
