package requisition

import (
	"errors"

	common_models "go-erp/internal/common/models"
	"go-erp/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type RequisitionController struct {
	Service RequisitionService
}

func NewRequisitionController(service RequisitionService) *RequisitionController {
	return &RequisitionController{Service: service}
}

type DecisionPayload struct {
	ActingRole string `json:"acting_role"`
	Decision   string `json:"decision"`
	Comments   string `json:"comments"`
}

// CreateRequisition godoc
// @Summary      Submit a staff requisition
// @Description  Create a new consumable requisition; it enters the workflow as pending
// @Tags         requisitions
// @Accept       json
// @Produce      json
// @Param        input body CreateInput true "Requisition Input"
// @Success      201  {object} Requisition
// @Failure      400  {string} string "Validation failed"
// @Router       /requisitions [post]
func (c *RequisitionController) CreateRequisition(ctx *fiber.Ctx) error {
	var input CreateInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	req, err := c.Service.Create(ctx.Context(), input)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(req)
}

// ListRequisitions godoc
// @Summary      List requisitions
// @Description  List requisitions with optional status, department and search filters
// @Tags         requisitions
// @Produce      json
// @Param        status query string false "Status filter"
// @Param        department query string false "Department filter"
// @Param        search query string false "Matches number, staff name or department"
// @Success      200  {array} Requisition
// @Router       /requisitions [get]
func (c *RequisitionController) ListRequisitions(ctx *fiber.Ctx) error {
	filter := ListFilter{
		Status:     ctx.Query("status"),
		Department: ctx.Query("department"),
		Search:     ctx.Query("search"),
	}

	requisitions, err := c.Service.List(ctx.Context(), filter)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(requisitions)
}

// PendingRequisitions godoc
// @Summary      Pending queue for a role
// @Description  Requisitions awaiting the given role's decision
// @Tags         requisitions
// @Produce      json
// @Param        role query string true "supervisor or admin"
// @Success      200  {array} Requisition
// @Failure      403  {string} string "Role cannot hold a decision queue"
// @Router       /requisitions/pending [get]
func (c *RequisitionController) PendingRequisitions(ctx *fiber.Ctx) error {
	role := common_models.Role(ctx.Query("role"))
	if err := c.requireRole(ctx, role); err != nil {
		return err
	}

	requisitions, err := c.Service.PendingForRole(ctx.Context(), role)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(requisitions)
}

// ProcessedRequisitions godoc
// @Summary      Recently processed requisitions
// @Tags         requisitions
// @Produce      json
// @Success      200  {array} Requisition
// @Router       /requisitions/processed [get]
func (c *RequisitionController) ProcessedRequisitions(ctx *fiber.Ctx) error {
	requisitions, err := c.Service.RecentlyProcessed(ctx.Context())
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(requisitions)
}

// GetRequisition godoc
// @Summary      Get a requisition
// @Tags         requisitions
// @Produce      json
// @Param        id path string true "Requisition ID (hex)"
// @Success      200  {object} Requisition
// @Failure      404  {string} string "Requisition not found"
// @Router       /requisitions/{id} [get]
func (c *RequisitionController) GetRequisition(ctx *fiber.Ctx) error {
	req, err := c.Service.Get(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(req)
}

// DecideRequisition godoc
// @Summary      Approve or reject a requisition
// @Description  Apply one reviewer decision; the acting role must match the workflow stage and be held by the caller
// @Tags         requisitions
// @Accept       json
// @Produce      json
// @Param        id path string true "Requisition ID (hex)"
// @Param        input body DecisionPayload true "Decision"
// @Success      200  {object} Requisition
// @Failure      403  {string} string "Caller does not hold the acting role"
// @Failure      404  {string} string "Requisition not found"
// @Failure      409  {string} string "Invalid transition"
// @Router       /requisitions/{id}/decision [post]
func (c *RequisitionController) DecideRequisition(ctx *fiber.Ctx) error {
	var payload DecisionPayload
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	role := common_models.Role(payload.ActingRole)
	if err := c.requireRole(ctx, role); err != nil {
		return err
	}

	req, err := c.Service.Decide(ctx.Context(), ctx.Params("id"), role, Decision(payload.Decision), payload.Comments)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(req)
}

// FulfillRequisition godoc
// @Summary      Fulfill an approved requisition
// @Description  Issue the requested stock and mark the requisition completed
// @Tags         requisitions
// @Produce      json
// @Param        id path string true "Requisition ID (hex)"
// @Success      200  {object} Requisition
// @Failure      404  {string} string "Requisition not found"
// @Failure      409  {string} string "Requisition is not admin-approved"
// @Router       /requisitions/{id}/fulfill [post]
func (c *RequisitionController) FulfillRequisition(ctx *fiber.Ctx) error {
	req, err := c.Service.Fulfill(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(req)
}

// requireRole rejects callers whose token does not carry the acting role.
// The acting role is always an explicit request parameter, never inferred.
func (c *RequisitionController) requireRole(ctx *fiber.Ctx, role common_models.Role) error {
	if !role.Valid() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown role"})
	}
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	if !claims.HasRole(string(role)) {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not hold the acting role"})
	}
	return nil
}

func respondError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrInvalidTransition):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "This requisition is not awaiting your review"})
	case errors.Is(err, ErrUnauthorizedRole):
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrValidation):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
