package audit

import (
	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

// ListAuditLogs godoc
// @Summary      Browse the audit trail
// @Tags         audit
// @Produce      json
// @Param        module query string false "Module filter, e.g. requisitions"
// @Param        action query string false "Action filter, e.g. APPROVAL"
// @Param        record query string false "Record ID filter"
// @Param        page query int false "Page" default(1)
// @Param        limit query int false "Page size" default(50)
// @Success      200  {array} models.AuditLog
// @Router       /audit [get]
func (c *AuditController) ListAuditLogs(ctx *fiber.Ctx) error {
	filters := map[string]interface{}{}
	if module := ctx.Query("module"); module != "" {
		filters["module"] = module
	}
	if action := ctx.Query("action"); action != "" {
		filters["action"] = action
	}
	if record := ctx.Query("record"); record != "" {
		filters["record_id"] = record
	}

	page := int64(ctx.QueryInt("page", 1))
	limit := int64(ctx.QueryInt("limit", 50))

	logs, err := c.Service.ListLogs(ctx.Context(), filters, page, limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(logs)
}

// RecentAuditLogs godoc
// @Summary      Most recent audit activity
// @Tags         audit
// @Produce      json
// @Param        limit query int false "Entries" default(20)
// @Success      200  {array} models.AuditLog
// @Router       /audit/recent [get]
func (c *AuditController) RecentAuditLogs(ctx *fiber.Ctx) error {
	limit := int64(ctx.QueryInt("limit", 20))

	logs, err := c.Service.Recent(ctx.Context(), limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(logs)
}
