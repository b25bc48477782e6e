package purchaseorder

import (
	"go-erp/internal/config"
	"go-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PurchaseOrderApi struct {
	controller *PurchaseOrderController
	config     *config.Config
}

func NewPurchaseOrderApi(controller *PurchaseOrderController, config *config.Config) *PurchaseOrderApi {
	return &PurchaseOrderApi{
		controller: controller,
		config:     config,
	}
}

func (h *PurchaseOrderApi) Setup(app *fiber.App) {
	orders := app.Group("/api/purchase-orders",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(h.config.SkipAuth, "admin", "supervisor"))

	orders.Get("/", h.controller.ListPurchaseOrders)
	orders.Get("/:id", h.controller.GetPurchaseOrder)
	orders.Post("/", middleware.RequireRole(h.config.SkipAuth, "admin"), h.controller.CreatePurchaseOrder)
	orders.Post("/:id/advance", middleware.RequireRole(h.config.SkipAuth, "admin"), h.controller.AdvancePurchaseOrder)
	orders.Post("/:id/cancel", middleware.RequireRole(h.config.SkipAuth, "admin"), h.controller.CancelPurchaseOrder)
}
