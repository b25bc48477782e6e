package consumable

import (
	"go-erp/internal/config"
	"go-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ConsumableApi struct {
	controller *ConsumableController
	config     *config.Config
}

func NewConsumableApi(controller *ConsumableController, config *config.Config) *ConsumableApi {
	return &ConsumableApi{
		controller: controller,
		config:     config,
	}
}

func (h *ConsumableApi) Setup(app *fiber.App) {
	consumables := app.Group("/api/consumables", middleware.AuthMiddleware(h.config.SkipAuth))

	consumables.Get("/", h.controller.ListConsumables)
	consumables.Get("/low-stock", h.controller.LowStockConsumables)
	consumables.Get("/:id", h.controller.GetConsumable)

	// Catalog and stock mutations are an admin concern
	consumables.Post("/", middleware.RequireRole(h.config.SkipAuth, "admin"), h.controller.CreateConsumable)
	consumables.Put("/:id", middleware.RequireRole(h.config.SkipAuth, "admin"), h.controller.UpdateConsumable)
	consumables.Delete("/:id", middleware.RequireRole(h.config.SkipAuth, "admin"), h.controller.DeactivateConsumable)
	consumables.Post("/:id/restock", middleware.RequireRole(h.config.SkipAuth, "admin"), h.controller.RestockConsumable)
}
