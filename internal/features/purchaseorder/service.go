package purchaseorder

import (
	"context"
	"fmt"
	"time"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/features/audit"
	"go-erp/internal/features/consumable"
	"go-erp/internal/features/supplier"
	"go-erp/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type LineInput struct {
	ConsumableID string  `json:"consumable_id"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
}

type CreateOrderInput struct {
	SupplierID string      `json:"supplier_id"`
	Notes      string      `json:"notes"`
	Lines      []LineInput `json:"lines"`
}

type PurchaseOrderService interface {
	Create(ctx context.Context, input CreateOrderInput) (*PurchaseOrder, error)
	Get(ctx context.Context, id string) (*PurchaseOrder, error)
	List(ctx context.Context, filter OrderFilter) ([]PurchaseOrder, error)
	Advance(ctx context.Context, id string) (*PurchaseOrder, error)
	Cancel(ctx context.Context, id string, reason string) (*PurchaseOrder, error)
}

type PurchaseOrderServiceImpl struct {
	Repo           PurchaseOrderRepository
	SupplierRepo   supplier.SupplierRepository
	ConsumableRepo consumable.ConsumableRepository
	AuditService   audit.AuditService
	Logger         *zap.Logger
}

func NewPurchaseOrderService(
	repo PurchaseOrderRepository,
	supplierRepo supplier.SupplierRepository,
	consumableRepo consumable.ConsumableRepository,
	auditService audit.AuditService,
	logger *zap.Logger,
) PurchaseOrderService {
	return &PurchaseOrderServiceImpl{
		Repo:           repo,
		SupplierRepo:   supplierRepo,
		ConsumableRepo: consumableRepo,
		AuditService:   auditService,
		Logger:         logger,
	}
}

func (s *PurchaseOrderServiceImpl) Create(ctx context.Context, input CreateOrderInput) (*PurchaseOrder, error) {
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("%w: at least one order line is required", ErrValidation)
	}

	sup, err := s.SupplierRepo.FindByID(ctx, input.SupplierID)
	if err != nil {
		return nil, err
	}
	if sup == nil || !sup.Active {
		return nil, fmt.Errorf("%w: unknown supplier %q", ErrValidation, input.SupplierID)
	}

	lines := make([]OrderLine, 0, len(input.Lines))
	var total float64
	for i, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line %d quantity must be positive", ErrValidation, i+1)
		}
		if line.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: line %d unit price cannot be negative", ErrValidation, i+1)
		}
		con, err := s.ConsumableRepo.FindByID(ctx, line.ConsumableID)
		if err != nil {
			return nil, err
		}
		if con == nil {
			return nil, fmt.Errorf("%w: unknown consumable %q", ErrValidation, line.ConsumableID)
		}
		price := line.UnitPrice
		if price == 0 {
			price = con.UnitPrice
		}
		lineTotal := line.Quantity * price
		lines = append(lines, OrderLine{
			ConsumableID:   line.ConsumableID,
			ConsumableName: con.Name,
			Unit:           con.Unit,
			Quantity:       line.Quantity,
			UnitPrice:      price,
			LineTotal:      lineTotal,
		})
		total += lineTotal
	}

	now := time.Now()
	po := &PurchaseOrder{
		ID:           primitive.NewObjectID(),
		Number:       utils.BusinessNumber("PO"),
		SupplierID:   input.SupplierID,
		SupplierName: sup.Name,
		Lines:        lines,
		Total:        total,
		Status:       OrderStatusDraft,
		Notes:        input.Notes,
		OrderDate:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, po); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "purchase_orders", po.ID.Hex(), map[string]common_models.Change{
		"number": {Old: nil, New: po.Number},
		"total":  {Old: nil, New: po.Total},
	})

	return po, nil
}

func (s *PurchaseOrderServiceImpl) Get(ctx context.Context, id string) (*PurchaseOrder, error) {
	po, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, ErrNotFound
	}
	return po, nil
}

func (s *PurchaseOrderServiceImpl) List(ctx context.Context, filter OrderFilter) ([]PurchaseOrder, error) {
	return s.Repo.List(ctx, filter)
}

// Advance moves the order one step along draft, sent, confirmed, delivered.
// Delivery receives every line into stock before the status flips, so a
// failed receipt leaves the order confirmed.
func (s *PurchaseOrderServiceImpl) Advance(ctx context.Context, id string) (*PurchaseOrder, error) {
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	next, ok := nextStatus[existing.Status]
	if !ok {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	set := bson.M{
		"status":     next,
		"updated_at": now,
	}
	switch next {
	case OrderStatusSent:
		set["sent_date"] = now
	case OrderStatusDelivered:
		set["delivered_on"] = now
	}

	delivered := next == OrderStatusDelivered
	if delivered {
		if err := s.receiveLines(ctx, existing); err != nil {
			return nil, err
		}
	}

	updated, err := s.Repo.ApplyStatus(ctx, id, []OrderStatus{existing.Status}, set)
	if err != nil || updated == nil {
		// The status write lost a race (e.g. a concurrent cancel); back
		// the receipt out so stock is not inflated.
		if delivered {
			s.unreceiveLines(ctx, existing)
		}
		if err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "purchase_orders", id, map[string]common_models.Change{
		"status": {Old: existing.Status, New: updated.Status},
	})

	return updated, nil
}

func (s *PurchaseOrderServiceImpl) Cancel(ctx context.Context, id string, reason string) (*PurchaseOrder, error) {
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	if !existing.Status.CanCancel() {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	set := bson.M{
		"status":     OrderStatusCancelled,
		"updated_at": now,
	}
	if reason != "" {
		set["notes"] = reason
	}

	updated, err := s.Repo.ApplyStatus(ctx, id, []OrderStatus{OrderStatusDraft, OrderStatusSent, OrderStatusConfirmed}, set)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrInvalidTransition
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "purchase_orders", id, map[string]common_models.Change{
		"status": {Old: existing.Status, New: OrderStatusCancelled},
	})

	return updated, nil
}

func (s *PurchaseOrderServiceImpl) receiveLines(ctx context.Context, po *PurchaseOrder) error {
	received := make([]OrderLine, 0, len(po.Lines))
	for _, line := range po.Lines {
		if _, err := s.ConsumableRepo.AdjustStock(ctx, line.ConsumableID, line.Quantity); err != nil {
			for _, undo := range received {
				if _, rbErr := s.ConsumableRepo.AdjustStock(ctx, undo.ConsumableID, -undo.Quantity); rbErr != nil {
					s.Logger.Error("failed to roll back received stock",
						zap.String("consumable", undo.ConsumableID),
						zap.Error(rbErr))
				}
			}
			return fmt.Errorf("cannot receive %s: %w", line.ConsumableName, err)
		}
		received = append(received, line)
	}
	return nil
}

// unreceiveLines backs out a full receipt whose status write never landed.
func (s *PurchaseOrderServiceImpl) unreceiveLines(ctx context.Context, po *PurchaseOrder) {
	for _, line := range po.Lines {
		if _, err := s.ConsumableRepo.AdjustStock(ctx, line.ConsumableID, -line.Quantity); err != nil {
			s.Logger.Error("failed to roll back received stock",
				zap.String("consumable", line.ConsumableID),
				zap.Error(err))
		}
	}
}
