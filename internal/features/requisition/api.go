package requisition

import (
	"go-erp/internal/config"
	"go-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RequisitionApi struct {
	controller *RequisitionController
	config     *config.Config
}

func NewRequisitionApi(controller *RequisitionController, config *config.Config) *RequisitionApi {
	return &RequisitionApi{
		controller: controller,
		config:     config,
	}
}

func (h *RequisitionApi) Setup(app *fiber.App) {
	requisitions := app.Group("/api/requisitions", middleware.AuthMiddleware(h.config.SkipAuth))

	requisitions.Post("/", h.controller.CreateRequisition)
	requisitions.Get("/", h.controller.ListRequisitions)
	requisitions.Get("/pending", h.controller.PendingRequisitions)
	requisitions.Get("/processed", h.controller.ProcessedRequisitions)
	requisitions.Get("/:id", h.controller.GetRequisition)
	requisitions.Post("/:id/decision", h.controller.DecideRequisition)
	requisitions.Post("/:id/fulfill", middleware.RequireRole(h.config.SkipAuth, "admin"), h.controller.FulfillRequisition)
}
