package report

import (
	"context"
	"fmt"
	"time"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/features/audit"
	"go-erp/internal/features/consumable"
	"go-erp/internal/features/requisition"

	"github.com/xuri/excelize/v2"
)

type ReportService interface {
	RequisitionRegister(ctx context.Context, filter requisition.ListFilter) (*excelize.File, error)
	StockSheet(ctx context.Context) (*excelize.File, error)
}

type ReportServiceImpl struct {
	RequisitionRepo requisition.RequisitionRepository
	ConsumableRepo  consumable.ConsumableRepository
	AuditService    audit.AuditService
}

func NewReportService(
	requisitionRepo requisition.RequisitionRepository,
	consumableRepo consumable.ConsumableRepository,
	auditService audit.AuditService,
) ReportService {
	return &ReportServiceImpl{
		RequisitionRepo: requisitionRepo,
		ConsumableRepo:  consumableRepo,
		AuditService:    auditService,
	}
}

// RequisitionRegister renders the full requisition register as a workbook,
// one row per requisition with its workflow trail.
func (s *ReportServiceImpl) RequisitionRegister(ctx context.Context, filter requisition.ListFilter) (*excelize.File, error) {
	requisitions, err := s.RequisitionRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Requisitions"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Number", "Request Date", "Staff", "Staff ID", "Department", "Supervisor",
		"Items", "Purpose", "Urgency", "Status", "Supervisor Comments",
		"Admin Comments", "Expected Delivery", "Fulfilled",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, req := range requisitions {
		values := []interface{}{
			req.Number,
			req.RequestDate.Format("2006-01-02"),
			req.StaffName,
			req.StaffID,
			req.Department,
			req.Supervisor,
			req.ItemCount(),
			req.Purpose,
			string(req.Urgency),
			string(req.Status),
			req.SupervisorComments,
			req.AdminComments,
			formatDate(req.ExpectedDelivery),
			formatDate(req.FulfilledDate),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionExport, "requisitions", "", map[string]common_models.Change{
		"rows": {Old: nil, New: len(requisitions)},
	})

	return f, nil
}

// StockSheet renders the consumable catalog with current stock levels.
func (s *ReportServiceImpl) StockSheet(ctx context.Context) (*excelize.File, error) {
	consumables, err := s.ConsumableRepo.List(ctx, "", "", false)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Stock"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Code", "Name", "Category", "Unit", "Stock Level", "Reorder Level", "Unit Price", "Location", "Active"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, c := range consumables {
		values := []interface{}{
			c.Code, c.Name, c.Category, c.Unit,
			c.StockLevel, c.ReorderLevel, c.UnitPrice, c.Location,
			fmt.Sprintf("%t", c.Active),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionExport, "consumables", "", map[string]common_models.Change{
		"rows": {Old: nil, New: len(consumables)},
	})

	return f, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
