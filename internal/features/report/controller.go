package report

import (
	"fmt"
	"time"

	"go-erp/internal/features/requisition"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

type ReportController struct {
	Service ReportService
}

func NewReportController(service ReportService) *ReportController {
	return &ReportController{Service: service}
}

// RequisitionRegister godoc
// @Summary      Download the requisition register as xlsx
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        status query string false "Status filter"
// @Param        department query string false "Department filter"
// @Success      200  {file} binary
// @Router       /reports/requisitions [get]
func (c *ReportController) RequisitionRegister(ctx *fiber.Ctx) error {
	filter := requisition.ListFilter{
		Status:     ctx.Query("status"),
		Department: ctx.Query("department"),
	}

	f, err := c.Service.RequisitionRegister(ctx.Context(), filter)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return sendWorkbook(ctx, f, "requisitions")
}

// StockSheet godoc
// @Summary      Download the stock sheet as xlsx
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file} binary
// @Router       /reports/stock [get]
func (c *ReportController) StockSheet(ctx *fiber.Ctx) error {
	f, err := c.Service.StockSheet(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return sendWorkbook(ctx, f, "stock")
}

func sendWorkbook(ctx *fiber.Ctx, f *excelize.File, name string) error {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("2006-01-02"))
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Send(buf.Bytes())
}
