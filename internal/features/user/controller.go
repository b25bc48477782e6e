package user

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Service UserService
}

func NewUserController(service UserService) *UserController {
	return &UserController{Service: service}
}

// CreateUser godoc
// @Summary      Create a user account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        input body CreateUserInput true "User Input"
// @Success      201  {object} models.User
// @Failure      409  {string} string "Username or staff ID taken"
// @Router       /users [post]
func (c *UserController) CreateUser(ctx *fiber.Ctx) error {
	var input CreateUserInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	u, err := c.Service.Create(ctx.Context(), input)
	if err != nil {
		return respondUserError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(u)
}

// ListUsers godoc
// @Summary      List user accounts
// @Tags         users
// @Produce      json
// @Param        limit query int false "Page size" default(50)
// @Param        offset query int false "Offset"
// @Success      200  {array} models.User
// @Router       /users [get]
func (c *UserController) ListUsers(ctx *fiber.Ctx) error {
	limit := int64(ctx.QueryInt("limit", 50))
	offset := int64(ctx.QueryInt("offset", 0))

	users, err := c.Service.List(ctx.Context(), limit, offset)
	if err != nil {
		return respondUserError(ctx, err)
	}
	return ctx.JSON(users)
}

// GetUser godoc
// @Summary      Get a user account
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID (hex)"
// @Success      200  {object} models.User
// @Failure      404  {string} string "User not found"
// @Router       /users/{id} [get]
func (c *UserController) GetUser(ctx *fiber.Ctx) error {
	u, err := c.Service.Get(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return respondUserError(ctx, err)
	}
	return ctx.JSON(u)
}

// UpdateUser godoc
// @Summary      Update a user account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID (hex)"
// @Param        input body UpdateUserInput true "Fields to update"
// @Success      200  {object} models.User
// @Router       /users/{id} [put]
func (c *UserController) UpdateUser(ctx *fiber.Ctx) error {
	var input UpdateUserInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	u, err := c.Service.Update(ctx.Context(), ctx.Params("id"), input)
	if err != nil {
		return respondUserError(ctx, err)
	}
	return ctx.JSON(u)
}

// DeleteUser godoc
// @Summary      Delete a user account
// @Tags         users
// @Param        id path string true "User ID (hex)"
// @Success      204
// @Router       /users/{id} [delete]
func (c *UserController) DeleteUser(ctx *fiber.Ctx) error {
	if err := c.Service.Delete(ctx.Context(), ctx.Params("id")); err != nil {
		return respondUserError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func respondUserError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrDuplicateUsername), errors.Is(err, ErrDuplicateStaffID):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
}
