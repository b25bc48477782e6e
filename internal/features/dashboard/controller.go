package dashboard

import (
	"github.com/gofiber/fiber/v2"
)

type DashboardController struct {
	Service DashboardService
}

func NewDashboardController(service DashboardService) *DashboardController {
	return &DashboardController{Service: service}
}

// DashboardSummary godoc
// @Summary      Operational summary
// @Description  Requisition pipeline counts, reviewer queues, low stock and open orders
// @Tags         dashboard
// @Produce      json
// @Success      200  {object} Summary
// @Router       /dashboard [get]
func (c *DashboardController) DashboardSummary(ctx *fiber.Ctx) error {
	summary, err := c.Service.Summary(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(summary)
}
