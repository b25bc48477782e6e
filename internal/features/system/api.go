package system

import (
	"go-erp/internal/config"

	"github.com/gofiber/fiber/v2"
)

type SystemApi struct {
	config *config.Config
}

func NewSystemApi(config *config.Config) *SystemApi {
	return &SystemApi{config: config}
}

// HealthCheck godoc
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200  {object} map[string]string
// @Router       /health [get]
func (h *SystemApi) Setup(app *fiber.App) {
	app.Get("/api/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"status":      "ok",
			"environment": h.config.Environment,
		})
	})
}
