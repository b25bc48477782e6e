package dashboard

import (
	"context"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/features/audit"
	"go-erp/internal/features/consumable"
	"go-erp/internal/features/purchaseorder"
	"go-erp/internal/features/requisition"
)

type Summary struct {
	RequisitionsByStatus map[requisition.Status]int64 `json:"requisitions_by_status"`
	SupervisorQueue      int                          `json:"supervisor_queue"`
	AdminQueue           int                          `json:"admin_queue"`
	LowStockItems        int                          `json:"low_stock_items"`
	OpenPurchaseOrders   int64                        `json:"open_purchase_orders"`
	RecentActivity       []common_models.AuditLog     `json:"recent_activity"`
}

type DashboardService interface {
	Summary(ctx context.Context) (*Summary, error)
}

type DashboardServiceImpl struct {
	RequisitionRepo   requisition.RequisitionRepository
	ConsumableRepo    consumable.ConsumableRepository
	PurchaseOrderRepo purchaseorder.PurchaseOrderRepository
	AuditService      audit.AuditService
}

func NewDashboardService(
	requisitionRepo requisition.RequisitionRepository,
	consumableRepo consumable.ConsumableRepository,
	purchaseOrderRepo purchaseorder.PurchaseOrderRepository,
	auditService audit.AuditService,
) DashboardService {
	return &DashboardServiceImpl{
		RequisitionRepo:   requisitionRepo,
		ConsumableRepo:    consumableRepo,
		PurchaseOrderRepo: purchaseOrderRepo,
		AuditService:      auditService,
	}
}

func (s *DashboardServiceImpl) Summary(ctx context.Context) (*Summary, error) {
	byStatus, err := s.RequisitionRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var supervisorQueue, adminQueue int64
	for _, status := range requisition.EligibleStatuses(common_models.RoleSupervisor) {
		supervisorQueue += byStatus[status]
	}
	for _, status := range requisition.EligibleStatuses(common_models.RoleAdmin) {
		adminQueue += byStatus[status]
	}

	lowStock, err := s.ConsumableRepo.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	openOrders, err := s.PurchaseOrderRepo.CountOpen(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.AuditService.Recent(ctx, 15)
	if err != nil {
		return nil, err
	}

	return &Summary{
		RequisitionsByStatus: byStatus,
		SupervisorQueue:      int(supervisorQueue),
		AdminQueue:           int(adminQueue),
		LowStockItems:        len(lowStock),
		OpenPurchaseOrders:   openOrders,
		RecentActivity:       recent,
	}, nil
}
