package requisition

import (
	"context"
	"fmt"
	"time"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/features/audit"
	"go-erp/internal/features/automation"
	"go-erp/internal/features/consumable"
	"go-erp/internal/features/department"
	"go-erp/internal/features/notification"
	"go-erp/internal/features/user"
	"go-erp/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DecisionExporter receives terminal requisitions for the reporting sink.
// Export failures must never block a decision.
type DecisionExporter interface {
	ExportDecision(ctx context.Context, req *Requisition)
}

type ItemInput struct {
	ConsumableID      string  `json:"consumable_id"`
	RequestedQuantity float64 `json:"requested_quantity"`
	Justification     string  `json:"justification"`
}

type CreateInput struct {
	StaffName        string      `json:"staff_name"`
	StaffID          string      `json:"staff_id"`
	Department       string      `json:"department"`
	Supervisor       string      `json:"supervisor"`
	Purpose          string      `json:"purpose"`
	Urgency          Urgency     `json:"urgency"`
	ExpectedDelivery *time.Time  `json:"expected_delivery"`
	Items            []ItemInput `json:"items"`
}

type RequisitionService interface {
	Create(ctx context.Context, input CreateInput) (*Requisition, error)
	Get(ctx context.Context, id string) (*Requisition, error)
	List(ctx context.Context, filter ListFilter) ([]Requisition, error)
	PendingForRole(ctx context.Context, role common_models.Role) ([]Requisition, error)
	RecentlyProcessed(ctx context.Context) ([]Requisition, error)
	Decide(ctx context.Context, id string, role common_models.Role, decision Decision, comments string) (*Requisition, error)
	Fulfill(ctx context.Context, id string) (*Requisition, error)
}

type RequisitionServiceImpl struct {
	Repo                RequisitionRepository
	ConsumableRepo      consumable.ConsumableRepository
	DepartmentRepo      department.DepartmentRepository
	UserRepo            user.UserRepository
	AuditService        audit.AuditService
	NotificationService notification.NotificationService
	AutomationService   automation.AutomationService
	Exporter            DecisionExporter
	Logger              *zap.Logger
}

func NewRequisitionService(
	repo RequisitionRepository,
	consumableRepo consumable.ConsumableRepository,
	departmentRepo department.DepartmentRepository,
	userRepo user.UserRepository,
	auditService audit.AuditService,
	notificationService notification.NotificationService,
	automationService automation.AutomationService,
	exporter DecisionExporter,
	logger *zap.Logger,
) RequisitionService {
	return &RequisitionServiceImpl{
		Repo:                repo,
		ConsumableRepo:      consumableRepo,
		DepartmentRepo:      departmentRepo,
		UserRepo:            userRepo,
		AuditService:        auditService,
		NotificationService: notificationService,
		AutomationService:   automationService,
		Exporter:            exporter,
		Logger:              logger,
	}
}

// recentWindow bounds the recently-processed projection.
const recentWindow = 10

func (s *RequisitionServiceImpl) Create(ctx context.Context, input CreateInput) (*Requisition, error) {
	if input.StaffName == "" || input.StaffID == "" {
		return nil, fmt.Errorf("%w: requester identity is required", ErrValidation)
	}
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}
	if input.Urgency == "" {
		input.Urgency = UrgencyMedium
	}
	if !input.Urgency.Valid() {
		return nil, fmt.Errorf("%w: unknown urgency %q", ErrValidation, input.Urgency)
	}

	dept, err := s.DepartmentRepo.FindByName(ctx, input.Department)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, fmt.Errorf("%w: unknown department %q", ErrValidation, input.Department)
	}

	items := make([]RequisitionItem, 0, len(input.Items))
	for i, item := range input.Items {
		if item.RequestedQuantity <= 0 {
			return nil, fmt.Errorf("%w: item %d quantity must be positive", ErrValidation, i+1)
		}
		con, err := s.ConsumableRepo.FindByID(ctx, item.ConsumableID)
		if err != nil {
			return nil, err
		}
		if con == nil || !con.Active {
			return nil, fmt.Errorf("%w: unknown consumable %q", ErrValidation, item.ConsumableID)
		}
		items = append(items, RequisitionItem{
			ConsumableID:      item.ConsumableID,
			ConsumableName:    con.Name,
			RequestedQuantity: item.RequestedQuantity,
			Unit:              con.Unit,
			Justification:     item.Justification,
		})
	}

	supervisor := input.Supervisor
	if supervisor == "" {
		supervisor = dept.Manager
	}

	now := time.Now()
	expected := input.ExpectedDelivery
	if expected == nil {
		// Default planning date: one week from submission
		d := now.AddDate(0, 0, 7)
		expected = &d
	}

	req := &Requisition{
		ID:               primitive.NewObjectID(),
		Number:           utils.BusinessNumber("REQ"),
		RequestDate:      now,
		StaffName:        input.StaffName,
		StaffID:          input.StaffID,
		Department:       dept.Name,
		Supervisor:       supervisor,
		Items:            items,
		Purpose:          input.Purpose,
		Urgency:          input.Urgency,
		Status:           StatusPending,
		ExpectedDelivery: expected,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Automation rules may adjust a small set of planning fields before the
	// record is persisted
	if changes := s.AutomationService.Dispatch(ctx, automation.TriggerRequisitionCreated, s.recordMap(req)); changes != nil {
		s.applyCreationChanges(req, changes)
	}

	if err := s.Repo.Create(ctx, req); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "requisitions", req.ID.Hex(), map[string]common_models.Change{
		"status": {Old: nil, New: req.Status},
		"number": {Old: nil, New: req.Number},
	})

	if err := s.NotificationService.NotifyRole(ctx, common_models.RoleSupervisor,
		"New requisition awaiting review",
		fmt.Sprintf("%s submitted requisition %s (%d items).", req.StaffName, req.Number, req.ItemCount()),
		notification.NotificationTypeInfo,
		"/inventory/requisitions/"+req.ID.Hex(),
	); err != nil {
		s.Logger.Warn("failed to notify supervisors", zap.String("requisition", req.Number), zap.Error(err))
	}

	return req, nil
}

func (s *RequisitionServiceImpl) Get(ctx context.Context, id string) (*Requisition, error) {
	req, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}
	return req, nil
}

func (s *RequisitionServiceImpl) List(ctx context.Context, filter ListFilter) ([]Requisition, error) {
	return s.Repo.List(ctx, filter)
}

func (s *RequisitionServiceImpl) PendingForRole(ctx context.Context, role common_models.Role) ([]Requisition, error) {
	eligible := EligibleStatuses(role)
	if eligible == nil {
		return nil, ErrUnauthorizedRole
	}
	return s.Repo.FindByStatuses(ctx, eligible)
}

func (s *RequisitionServiceImpl) RecentlyProcessed(ctx context.Context) ([]Requisition, error) {
	return s.Repo.FindProcessed(ctx, recentWindow)
}

// Decide applies one reviewer decision. Validation runs against an initial
// read, but the write itself is a compare-and-swap on the eligible statuses,
// so a concurrent decision on the same record makes this call fail with
// ErrInvalidTransition instead of overwriting it.
func (s *RequisitionServiceImpl) Decide(ctx context.Context, id string, role common_models.Role, decision Decision, comments string) (*Requisition, error) {
	if role != common_models.RoleSupervisor && role != common_models.RoleAdmin {
		return nil, ErrUnauthorizedRole
	}
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, fmt.Errorf("%w: unknown decision %q", ErrValidation, decision)
	}

	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	next, err := Transition(existing.Status, role, decision)
	if err != nil {
		return nil, err
	}

	if comments == "" {
		comments = DefaultComments(role, decision)
	}

	now := time.Now()
	set := bson.M{
		"status":     next,
		"updated_at": now,
	}
	switch role {
	case common_models.RoleSupervisor:
		set["supervisor_comments"] = comments
		set["supervisor_date"] = now
	case common_models.RoleAdmin:
		set["admin_comments"] = comments
		set["admin_date"] = now
	}

	updated, err := s.Repo.ApplyDecision(ctx, id, EligibleStatuses(role), set)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// The record moved on between the read and the write: someone else
		// decided first, or it was already terminal
		return nil, ErrInvalidTransition
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionApproval, "requisitions", updated.ID.Hex(), map[string]common_models.Change{
		"status":   {Old: existing.Status, New: updated.Status},
		"comments": {Old: nil, New: comments},
	})

	s.notifyDecision(ctx, updated, role, decision)
	s.AutomationService.Dispatch(ctx, automation.TriggerRequisitionDecided, s.recordMap(updated))

	if IsTerminal(updated.Status) {
		s.Exporter.ExportDecision(ctx, updated)
	}

	return updated, nil
}

// Fulfill issues the requested stock and closes an admin-approved
// requisition. Issued quantities are rolled back if a later line fails.
func (s *RequisitionServiceImpl) Fulfill(ctx context.Context, id string) (*Requisition, error) {
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	if existing.Status != StatusAdminApproved {
		return nil, ErrInvalidTransition
	}

	issued := make([]RequisitionItem, 0, len(existing.Items))
	for _, item := range existing.Items {
		if _, err := s.ConsumableRepo.AdjustStock(ctx, item.ConsumableID, -item.RequestedQuantity); err != nil {
			s.rollbackIssued(ctx, issued)
			return nil, fmt.Errorf("cannot issue %s: %w", item.ConsumableName, err)
		}
		issued = append(issued, item)
	}

	now := time.Now()
	set := bson.M{
		"status":         StatusCompleted,
		"fulfilled_date": now,
		"updated_at":     now,
	}
	updated, err := s.Repo.ApplyDecision(ctx, id, []Status{StatusAdminApproved}, set)
	if err != nil {
		s.rollbackIssued(ctx, issued)
		return nil, err
	}
	if updated == nil {
		s.rollbackIssued(ctx, issued)
		return nil, ErrInvalidTransition
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionFulfill, "requisitions", updated.ID.Hex(), map[string]common_models.Change{
		"status": {Old: StatusAdminApproved, New: StatusCompleted},
	})

	s.notifyRequester(ctx, updated,
		"Requisition fulfilled",
		fmt.Sprintf("Requisition %s has been fulfilled and is ready for collection.", updated.Number),
		notification.NotificationTypeSuccess)
	s.AutomationService.Dispatch(ctx, automation.TriggerRequisitionFulfilled, s.recordMap(updated))
	s.Exporter.ExportDecision(ctx, updated)

	return updated, nil
}

func (s *RequisitionServiceImpl) rollbackIssued(ctx context.Context, issued []RequisitionItem) {
	for _, item := range issued {
		if _, err := s.ConsumableRepo.AdjustStock(ctx, item.ConsumableID, item.RequestedQuantity); err != nil {
			s.Logger.Error("failed to roll back issued stock",
				zap.String("consumable", item.ConsumableID),
				zap.Float64("quantity", item.RequestedQuantity),
				zap.Error(err))
		}
	}
}

func (s *RequisitionServiceImpl) notifyDecision(ctx context.Context, req *Requisition, role common_models.Role, decision Decision) {
	nType := notification.NotificationTypeSuccess
	verb := "approved"
	if decision == DecisionReject {
		nType = notification.NotificationTypeError
		verb = "rejected"
	}

	s.notifyRequester(ctx, req,
		fmt.Sprintf("Requisition %s by %s", verb, role),
		fmt.Sprintf("Requisition %s was %s at the %s stage.", req.Number, verb, role),
		nType)

	// A supervisor approval hands the decision to the admin queue
	if req.Status == StatusAdminReview {
		if err := s.NotificationService.NotifyRole(ctx, common_models.RoleAdmin,
			"Requisition awaiting admin approval",
			fmt.Sprintf("Requisition %s passed supervisor review.", req.Number),
			notification.NotificationTypeInfo,
			"/inventory/requisitions/"+req.ID.Hex(),
		); err != nil {
			s.Logger.Warn("failed to notify admins", zap.String("requisition", req.Number), zap.Error(err))
		}
	}
}

func (s *RequisitionServiceImpl) notifyRequester(ctx context.Context, req *Requisition, title, message string, nType notification.NotificationType) {
	requester, err := s.UserRepo.FindByStaffID(ctx, req.StaffID)
	if err != nil || requester == nil {
		// Requesters without an account simply get no notification
		return
	}
	if err := s.NotificationService.Notify(ctx, requester.ID.Hex(), title, message, nType, "/inventory/requisitions/"+req.ID.Hex()); err != nil {
		s.Logger.Warn("failed to notify requester", zap.String("requisition", req.Number), zap.Error(err))
	}
}

func (s *RequisitionServiceImpl) recordMap(req *Requisition) map[string]interface{} {
	return map[string]interface{}{
		"id":         req.ID.Hex(),
		"number":     req.Number,
		"staff_name": req.StaffName,
		"staff_id":   req.StaffID,
		"department": req.Department,
		"supervisor": req.Supervisor,
		"purpose":    req.Purpose,
		"urgency":    string(req.Urgency),
		"status":     string(req.Status),
		"item_count": req.ItemCount(),
	}
}

// applyCreationChanges applies automation output to the fields rules are
// allowed to adjust at submission time. Workflow fields stay untouchable.
func (s *RequisitionServiceImpl) applyCreationChanges(req *Requisition, changes map[string]interface{}) {
	for field, value := range changes {
		switch field {
		case "urgency":
			if u := Urgency(fmt.Sprintf("%v", value)); u.Valid() {
				req.Urgency = u
			}
		case "supervisor":
			req.Supervisor = fmt.Sprintf("%v", value)
		case "expected_delivery_days":
			if days, ok := value.(int64); ok && days > 0 {
				d := req.RequestDate.AddDate(0, 0, int(days))
				req.ExpectedDelivery = &d
			}
		}
	}
}
