package dashboard

import (
	"go-erp/internal/config"
	"go-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DashboardApi struct {
	controller *DashboardController
	config     *config.Config
}

func NewDashboardApi(controller *DashboardController, config *config.Config) *DashboardApi {
	return &DashboardApi{
		controller: controller,
		config:     config,
	}
}

func (h *DashboardApi) Setup(app *fiber.App) {
	app.Get("/api/dashboard",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(h.config.SkipAuth, "admin", "supervisor"),
		h.controller.DashboardSummary)
}
