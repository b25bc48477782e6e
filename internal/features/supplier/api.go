package supplier

import (
	"go-erp/internal/config"
	"go-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SupplierApi struct {
	controller *SupplierController
	config     *config.Config
}

func NewSupplierApi(controller *SupplierController, config *config.Config) *SupplierApi {
	return &SupplierApi{
		controller: controller,
		config:     config,
	}
}

func (h *SupplierApi) Setup(app *fiber.App) {
	suppliers := app.Group("/api/suppliers", middleware.AuthMiddleware(h.config.SkipAuth))

	suppliers.Get("/", h.controller.ListSuppliers)
	suppliers.Get("/:id", h.controller.GetSupplier)
	suppliers.Post("/", middleware.RequireRole(h.config.SkipAuth, "admin"), h.controller.CreateSupplier)
	suppliers.Put("/:id", middleware.RequireRole(h.config.SkipAuth, "admin"), h.controller.UpdateSupplier)
	suppliers.Delete("/:id", middleware.RequireRole(h.config.SkipAuth, "admin"), h.controller.DeactivateSupplier)
}
