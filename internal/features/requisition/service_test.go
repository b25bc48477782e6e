package requisition

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/features/automation"
	"go-erp/internal/features/consumable"
	"go-erp/internal/features/department"
	"go-erp/internal/features/notification"
	"go-erp/internal/features/user"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakeRequisitionRepo backs the service with a map and mirrors the
// compare-and-swap semantics of the Mongo implementation.
type fakeRequisitionRepo struct {
	mu   sync.Mutex
	docs map[string]*Requisition
}

func newFakeRequisitionRepo() *fakeRequisitionRepo {
	return &fakeRequisitionRepo{docs: map[string]*Requisition{}}
}

func (f *fakeRequisitionRepo) Create(_ context.Context, req *Requisition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *req
	f.docs[req.ID.Hex()] = &cp
	return nil
}

func (f *fakeRequisitionRepo) FindByID(_ context.Context, id string) (*Requisition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (f *fakeRequisitionRepo) List(_ context.Context, _ ListFilter) ([]Requisition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Requisition, 0, len(f.docs))
	for _, req := range f.docs {
		out = append(out, *req)
	}
	return out, nil
}

func (f *fakeRequisitionRepo) FindByStatuses(_ context.Context, statuses []Status) ([]Requisition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Requisition
	for _, req := range f.docs {
		for _, s := range statuses {
			if req.Status == s {
				out = append(out, *req)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRequisitionRepo) FindProcessed(_ context.Context, limit int64) ([]Requisition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Requisition
	for _, req := range f.docs {
		if IsProcessed(req.Status) {
			out = append(out, *req)
		}
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRequisitionRepo) FindPendingOlderThan(_ context.Context, cutoff time.Time) ([]Requisition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Requisition
	for _, req := range f.docs {
		if !IsTerminal(req.Status) && req.RequestDate.Before(cutoff) {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (f *fakeRequisitionRepo) ApplyDecision(_ context.Context, id string, allowed []Status, set bson.M) (*Requisition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	eligible := false
	for _, s := range allowed {
		if req.Status == s {
			eligible = true
			break
		}
	}
	if !eligible {
		return nil, nil
	}
	for field, value := range set {
		switch field {
		case "status":
			req.Status = value.(Status)
		case "supervisor_comments":
			req.SupervisorComments = value.(string)
		case "admin_comments":
			req.AdminComments = value.(string)
		case "supervisor_date":
			ts := value.(time.Time)
			req.SupervisorDate = &ts
		case "admin_date":
			ts := value.(time.Time)
			req.AdminDate = &ts
		case "fulfilled_date":
			ts := value.(time.Time)
			req.FulfilledDate = &ts
		case "updated_at":
			req.UpdatedAt = value.(time.Time)
		}
	}
	cp := *req
	return &cp, nil
}

func (f *fakeRequisitionRepo) CountByStatus(_ context.Context) (map[Status]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[Status]int64{}
	for _, req := range f.docs {
		out[req.Status]++
	}
	return out, nil
}

type fakeConsumableRepo struct {
	consumable.ConsumableRepository

	mu    sync.Mutex
	items map[string]*consumable.Consumable
}

func newFakeConsumableRepo(items ...*consumable.Consumable) *fakeConsumableRepo {
	f := &fakeConsumableRepo{items: map[string]*consumable.Consumable{}}
	for _, c := range items {
		f.items[c.ID.Hex()] = c
	}
	return f
}

func (f *fakeConsumableRepo) FindByID(_ context.Context, id string) (*consumable.Consumable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeConsumableRepo) AdjustStock(_ context.Context, id string, delta float64) (*consumable.Consumable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return nil, consumable.ErrNotFound
	}
	if c.StockLevel+delta < 0 {
		return nil, consumable.ErrInsufficientStock
	}
	c.StockLevel += delta
	cp := *c
	return &cp, nil
}

type fakeDepartmentRepo struct {
	department.DepartmentRepository

	depts map[string]*department.Department
}

func (f *fakeDepartmentRepo) FindByName(_ context.Context, name string) (*department.Department, error) {
	d, ok := f.depts[name]
	if !ok {
		return nil, nil
	}
	return d, nil
}

type fakeUserRepo struct {
	user.UserRepository
}

func (f *fakeUserRepo) FindByStaffID(_ context.Context, _ string) (*common_models.User, error) {
	return nil, nil
}

type fakeAuditService struct {
	mu      sync.Mutex
	actions []common_models.AuditAction
}

func (f *fakeAuditService) LogChange(_ context.Context, action common_models.AuditAction, _ string, _ string, _ map[string]common_models.Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeAuditService) ListLogs(_ context.Context, _ map[string]interface{}, _, _ int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

func (f *fakeAuditService) Recent(_ context.Context, _ int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

type fakeNotificationService struct {
	notification.NotificationService

	mu    sync.Mutex
	roles []common_models.Role
}

func (f *fakeNotificationService) Notify(_ context.Context, _, _, _ string, _ notification.NotificationType, _ string) error {
	return nil
}

func (f *fakeNotificationService) NotifyRole(_ context.Context, role common_models.Role, _, _ string, _ notification.NotificationType, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles = append(f.roles, role)
	return nil
}

type fakeAutomationService struct {
	automation.AutomationService

	changes map[string]interface{}
}

func (f *fakeAutomationService) Dispatch(_ context.Context, _ string, _ map[string]interface{}) map[string]interface{} {
	return f.changes
}

type fakeExporter struct {
	mu       sync.Mutex
	exported []string
}

func (f *fakeExporter) ExportDecision(_ context.Context, req *Requisition) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exported = append(f.exported, req.Number)
}

type serviceFixture struct {
	service   *RequisitionServiceImpl
	repo      *fakeRequisitionRepo
	stock     *fakeConsumableRepo
	notifier  *fakeNotificationService
	exporter  *fakeExporter
	pens      *consumable.Consumable
	notebooks *consumable.Consumable
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	pens := &consumable.Consumable{
		ID:         primitive.NewObjectID(),
		Code:       "CON001",
		Name:       "Ballpoint Pens",
		Unit:       "box",
		StockLevel: 50,
		Active:     true,
	}
	notebooks := &consumable.Consumable{
		ID:         primitive.NewObjectID(),
		Code:       "CON002",
		Name:       "Notebooks A5",
		Unit:       "piece",
		StockLevel: 20,
		Active:     true,
	}

	f := &serviceFixture{
		repo:      newFakeRequisitionRepo(),
		stock:     newFakeConsumableRepo(pens, notebooks),
		notifier:  &fakeNotificationService{},
		exporter:  &fakeExporter{},
		pens:      pens,
		notebooks: notebooks,
	}
	f.service = &RequisitionServiceImpl{
		Repo:           f.repo,
		ConsumableRepo: f.stock,
		DepartmentRepo: &fakeDepartmentRepo{depts: map[string]*department.Department{
			"Engineering": {Name: "Engineering", Code: "ENG", Manager: "Grace Ojo", Active: true},
		}},
		UserRepo:            &fakeUserRepo{},
		AuditService:        &fakeAuditService{},
		NotificationService: f.notifier,
		AutomationService:   &fakeAutomationService{},
		Exporter:            f.exporter,
		Logger:              zap.NewNop(),
	}
	return f
}

func (f *serviceFixture) validInput() CreateInput {
	return CreateInput{
		StaffName:  "John Adebayo",
		StaffID:    "EMP-1042",
		Department: "Engineering",
		Purpose:    "Field documentation kits",
		Urgency:    UrgencyMedium,
		Items: []ItemInput{
			{ConsumableID: f.pens.ID.Hex(), RequestedQuantity: 5, Justification: "Site visits"},
			{ConsumableID: f.notebooks.ID.Hex(), RequestedQuantity: 10},
		},
	}
}

func TestCreateRequisition(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	req, err := f.service.Create(ctx, f.validInput())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if req.Status != StatusPending {
		t.Errorf("new requisition status = %s, want %s", req.Status, StatusPending)
	}
	if req.Number == "" {
		t.Error("new requisition has no number")
	}
	if req.ItemCount() != 2 {
		t.Errorf("ItemCount() = %d, want 2", req.ItemCount())
	}
	if req.Items[0].ConsumableName != "Ballpoint Pens" || req.Items[0].Unit != "box" {
		t.Errorf("item not denormalized from catalog: %+v", req.Items[0])
	}
	if req.Supervisor != "Grace Ojo" {
		t.Errorf("supervisor = %q, want department manager fallback", req.Supervisor)
	}
	if req.ExpectedDelivery == nil {
		t.Fatal("expected delivery not defaulted")
	}
	wantDelivery := req.RequestDate.AddDate(0, 0, 7)
	if !req.ExpectedDelivery.Equal(wantDelivery) {
		t.Errorf("expected delivery = %v, want %v", req.ExpectedDelivery, wantDelivery)
	}

	if len(f.notifier.roles) != 1 || f.notifier.roles[0] != common_models.RoleSupervisor {
		t.Errorf("notified roles = %v, want [supervisor]", f.notifier.roles)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing staff name", func(in *CreateInput) { in.StaffName = "" }},
		{"no items", func(in *CreateInput) { in.Items = nil }},
		{"zero quantity", func(in *CreateInput) { in.Items[0].RequestedQuantity = 0 }},
		{"negative quantity", func(in *CreateInput) { in.Items[0].RequestedQuantity = -3 }},
		{"unknown consumable", func(in *CreateInput) { in.Items[0].ConsumableID = primitive.NewObjectID().Hex() }},
		{"unknown department", func(in *CreateInput) { in.Department = "Astrology" }},
		{"bad urgency", func(in *CreateInput) { in.Urgency = "apocalyptic" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.validInput()
			tt.mutate(&in)
			if _, err := f.service.Create(ctx, in); !errors.Is(err, ErrValidation) {
				t.Errorf("Create() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSupervisorDecision(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	req, err := f.service.Create(ctx, f.validInput())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	updated, err := f.service.Decide(ctx, req.ID.Hex(), common_models.RoleSupervisor, DecisionApprove, "")
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	if updated.Status != StatusAdminReview {
		t.Errorf("status after supervisor approval = %s, want %s", updated.Status, StatusAdminReview)
	}
	if updated.SupervisorComments != "Approved by supervisor" {
		t.Errorf("default comments = %q", updated.SupervisorComments)
	}
	if updated.SupervisorDate == nil {
		t.Error("supervisor date not stamped")
	}
	if updated.AdminDate != nil {
		t.Error("admin date stamped by supervisor decision")
	}
	// Supervisor approval hands off to the admin queue
	last := f.notifier.roles[len(f.notifier.roles)-1]
	if last != common_models.RoleAdmin {
		t.Errorf("handoff notification role = %s, want admin", last)
	}
}

func TestSupervisorReject(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	req, _ := f.service.Create(ctx, f.validInput())
	updated, err := f.service.Decide(ctx, req.ID.Hex(), common_models.RoleSupervisor, DecisionReject, "Budget freeze")
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	if updated.Status != StatusSupervisorRejected {
		t.Errorf("status = %s, want %s", updated.Status, StatusSupervisorRejected)
	}
	if updated.SupervisorComments != "Budget freeze" {
		t.Errorf("explicit comments overwritten: %q", updated.SupervisorComments)
	}
	// A supervisor rejection is terminal and must reach the reporting sink
	if len(f.exporter.exported) != 1 || f.exporter.exported[0] != req.Number {
		t.Errorf("exported = %v, want [%s]", f.exporter.exported, req.Number)
	}
}

func TestAdminCannotSkipSupervisor(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	req, _ := f.service.Create(ctx, f.validInput())
	if _, err := f.service.Decide(ctx, req.ID.Hex(), common_models.RoleAdmin, DecisionApprove, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Decide() error = %v, want ErrInvalidTransition", err)
	}

	stored, _ := f.repo.FindByID(ctx, req.ID.Hex())
	if stored.Status != StatusPending {
		t.Errorf("rejected decision mutated the record: status = %s", stored.Status)
	}
}

func TestDecideTerminalRecord(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	req, _ := f.service.Create(ctx, f.validInput())
	if _, err := f.service.Decide(ctx, req.ID.Hex(), common_models.RoleSupervisor, DecisionReject, ""); err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	if _, err := f.service.Decide(ctx, req.ID.Hex(), common_models.RoleSupervisor, DecisionApprove, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("re-deciding terminal record: error = %v, want ErrInvalidTransition", err)
	}
}

func TestDecideUnknownRecord(t *testing.T) {
	f := newServiceFixture(t)
	if _, err := f.service.Decide(context.Background(), primitive.NewObjectID().Hex(), common_models.RoleSupervisor, DecisionApprove, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Decide() error = %v, want ErrNotFound", err)
	}
}

func TestDecideStaffForbidden(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	req, _ := f.service.Create(ctx, f.validInput())
	if _, err := f.service.Decide(ctx, req.ID.Hex(), common_models.RoleStaff, DecisionApprove, ""); !errors.Is(err, ErrUnauthorizedRole) {
		t.Errorf("Decide() error = %v, want ErrUnauthorizedRole", err)
	}
}

func TestConcurrentDecisions(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	req, _ := f.service.Create(ctx, f.validInput())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	decisions := []Decision{DecisionApprove, DecisionReject}
	for i := range decisions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Decide(ctx, req.ID.Hex(), common_models.RoleSupervisor, decisions[i], "")
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrInvalidTransition):
			lost++
		default:
			t.Fatalf("unexpected concurrent error: %v", err)
		}
	}
	if won != 1 || lost != 1 {
		t.Errorf("concurrent decisions: %d applied, %d lost; want exactly one of each", won, lost)
	}
}

func TestFulfill(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	req, _ := f.service.Create(ctx, f.validInput())
	if _, err := f.service.Decide(ctx, req.ID.Hex(), common_models.RoleSupervisor, DecisionApprove, ""); err != nil {
		t.Fatalf("supervisor decision: %v", err)
	}
	if _, err := f.service.Decide(ctx, req.ID.Hex(), common_models.RoleAdmin, DecisionApprove, ""); err != nil {
		t.Fatalf("admin decision: %v", err)
	}

	fulfilled, err := f.service.Fulfill(ctx, req.ID.Hex())
	if err != nil {
		t.Fatalf("Fulfill() error: %v", err)
	}
	if fulfilled.Status != StatusCompleted {
		t.Errorf("status = %s, want %s", fulfilled.Status, StatusCompleted)
	}
	if fulfilled.FulfilledDate == nil {
		t.Error("fulfilled date not stamped")
	}

	pens, _ := f.stock.FindByID(ctx, f.pens.ID.Hex())
	if pens.StockLevel != 45 {
		t.Errorf("pens stock = %v, want 45", pens.StockLevel)
	}
	notebooks, _ := f.stock.FindByID(ctx, f.notebooks.ID.Hex())
	if notebooks.StockLevel != 10 {
		t.Errorf("notebooks stock = %v, want 10", notebooks.StockLevel)
	}
}

func TestFulfillRequiresAdminApproval(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	req, _ := f.service.Create(ctx, f.validInput())
	if _, err := f.service.Fulfill(ctx, req.ID.Hex()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fulfill() on pending record: error = %v, want ErrInvalidTransition", err)
	}
}

func TestFulfillRollsBackOnShortStock(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	in := f.validInput()
	in.Items[1].RequestedQuantity = 25 // more notebooks than in stock
	req, err := f.service.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := f.service.Decide(ctx, req.ID.Hex(), common_models.RoleSupervisor, DecisionApprove, ""); err != nil {
		t.Fatalf("supervisor decision: %v", err)
	}
	if _, err := f.service.Decide(ctx, req.ID.Hex(), common_models.RoleAdmin, DecisionApprove, ""); err != nil {
		t.Fatalf("admin decision: %v", err)
	}

	if _, err := f.service.Fulfill(ctx, req.ID.Hex()); !errors.Is(err, consumable.ErrInsufficientStock) {
		t.Fatalf("Fulfill() error = %v, want ErrInsufficientStock", err)
	}

	// The first line was issued and must have been returned
	pens, _ := f.stock.FindByID(ctx, f.pens.ID.Hex())
	if pens.StockLevel != 50 {
		t.Errorf("pens stock after rollback = %v, want 50", pens.StockLevel)
	}
	stored, _ := f.repo.FindByID(ctx, req.ID.Hex())
	if stored.Status != StatusAdminApproved {
		t.Errorf("status after failed fulfilment = %s, want %s", stored.Status, StatusAdminApproved)
	}
}

func TestPendingForRole(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	first, _ := f.service.Create(ctx, f.validInput())
	second, _ := f.service.Create(ctx, f.validInput())
	if _, err := f.service.Decide(ctx, second.ID.Hex(), common_models.RoleSupervisor, DecisionApprove, ""); err != nil {
		t.Fatalf("supervisor decision: %v", err)
	}

	supervisorQueue, err := f.service.PendingForRole(ctx, common_models.RoleSupervisor)
	if err != nil {
		t.Fatalf("PendingForRole(supervisor) error: %v", err)
	}
	if len(supervisorQueue) != 1 || supervisorQueue[0].ID != first.ID {
		t.Errorf("supervisor queue = %d records, want just the undecided one", len(supervisorQueue))
	}

	adminQueue, err := f.service.PendingForRole(ctx, common_models.RoleAdmin)
	if err != nil {
		t.Fatalf("PendingForRole(admin) error: %v", err)
	}
	if len(adminQueue) != 1 || adminQueue[0].ID != second.ID {
		t.Errorf("admin queue = %d records, want just the supervisor-approved one", len(adminQueue))
	}

	if _, err := f.service.PendingForRole(ctx, common_models.RoleStaff); !errors.Is(err, ErrUnauthorizedRole) {
		t.Errorf("PendingForRole(staff) error = %v, want ErrUnauthorizedRole", err)
	}
}

func TestAutomationAdjustsCreation(t *testing.T) {
	f := newServiceFixture(t)
	f.service.AutomationService = &fakeAutomationService{changes: map[string]interface{}{
		"urgency":                "high",
		"supervisor":             "Procurement Desk",
		"expected_delivery_days": int64(2),
		"status":                 "admin-approved", // workflow fields must be ignored
	}}

	req, err := f.service.Create(context.Background(), f.validInput())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if req.Urgency != UrgencyHigh {
		t.Errorf("urgency = %s, want high", req.Urgency)
	}
	if req.Supervisor != "Procurement Desk" {
		t.Errorf("supervisor = %q", req.Supervisor)
	}
	if req.Status != StatusPending {
		t.Errorf("automation mutated workflow status: %s", req.Status)
	}
	want := req.RequestDate.AddDate(0, 0, 2)
	if req.ExpectedDelivery == nil || !req.ExpectedDelivery.Equal(want) {
		t.Errorf("expected delivery = %v, want %v", req.ExpectedDelivery, want)
	}
}
