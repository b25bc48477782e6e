package purchaseorder

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type PurchaseOrderController struct {
	Service PurchaseOrderService
}

func NewPurchaseOrderController(service PurchaseOrderService) *PurchaseOrderController {
	return &PurchaseOrderController{Service: service}
}

type CancelPayload struct {
	Reason string `json:"reason"`
}

// CreatePurchaseOrder godoc
// @Summary      Create a purchase order
// @Description  Draft an order against a supplier; lines default to catalog prices
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        input body CreateOrderInput true "Order Input"
// @Success      201  {object} PurchaseOrder
// @Router       /purchase-orders [post]
func (c *PurchaseOrderController) CreatePurchaseOrder(ctx *fiber.Ctx) error {
	var input CreateOrderInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	po, err := c.Service.Create(ctx.Context(), input)
	if err != nil {
		return respondOrderError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(po)
}

// ListPurchaseOrders godoc
// @Summary      List purchase orders
// @Tags         purchase-orders
// @Produce      json
// @Param        status query string false "Status filter"
// @Param        supplier query string false "Supplier ID filter"
// @Param        search query string false "Matches number or supplier name"
// @Success      200  {array} PurchaseOrder
// @Router       /purchase-orders [get]
func (c *PurchaseOrderController) ListPurchaseOrders(ctx *fiber.Ctx) error {
	filter := OrderFilter{
		Status:     ctx.Query("status"),
		SupplierID: ctx.Query("supplier"),
		Search:     ctx.Query("search"),
	}
	orders, err := c.Service.List(ctx.Context(), filter)
	if err != nil {
		return respondOrderError(ctx, err)
	}
	return ctx.JSON(orders)
}

// GetPurchaseOrder godoc
// @Summary      Get a purchase order
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Order ID (hex)"
// @Success      200  {object} PurchaseOrder
// @Failure      404  {string} string "Order not found"
// @Router       /purchase-orders/{id} [get]
func (c *PurchaseOrderController) GetPurchaseOrder(ctx *fiber.Ctx) error {
	po, err := c.Service.Get(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return respondOrderError(ctx, err)
	}
	return ctx.JSON(po)
}

// AdvancePurchaseOrder godoc
// @Summary      Move an order to its next stage
// @Description  draft to sent, sent to confirmed, confirmed to delivered; delivery receives stock
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Order ID (hex)"
// @Success      200  {object} PurchaseOrder
// @Failure      409  {string} string "Order cannot advance from its current state"
// @Router       /purchase-orders/{id}/advance [post]
func (c *PurchaseOrderController) AdvancePurchaseOrder(ctx *fiber.Ctx) error {
	po, err := c.Service.Advance(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return respondOrderError(ctx, err)
	}
	return ctx.JSON(po)
}

// CancelPurchaseOrder godoc
// @Summary      Cancel an undelivered order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID (hex)"
// @Param        input body CancelPayload false "Cancellation reason"
// @Success      200  {object} PurchaseOrder
// @Failure      409  {string} string "Delivered orders cannot be cancelled"
// @Router       /purchase-orders/{id}/cancel [post]
func (c *PurchaseOrderController) CancelPurchaseOrder(ctx *fiber.Ctx) error {
	var payload CancelPayload
	_ = ctx.BodyParser(&payload)

	po, err := c.Service.Cancel(ctx.Context(), ctx.Params("id"), payload.Reason)
	if err != nil {
		return respondOrderError(ctx, err)
	}
	return ctx.JSON(po)
}

func respondOrderError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrInvalidTransition):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrValidation):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
