package purchaseorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/features/consumable"
	"go-erp/internal/features/supplier"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeOrderRepo struct {
	mu   sync.Mutex
	docs map[string]*PurchaseOrder
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{docs: map[string]*PurchaseOrder{}}
}

func (f *fakeOrderRepo) Create(_ context.Context, po *PurchaseOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if po.ID.IsZero() {
		po.ID = primitive.NewObjectID()
	}
	cp := *po
	f.docs[po.ID.Hex()] = &cp
	return nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id string) (*PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	po, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *po
	return &cp, nil
}

func (f *fakeOrderRepo) List(_ context.Context, _ OrderFilter) ([]PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]PurchaseOrder, 0, len(f.docs))
	for _, po := range f.docs {
		out = append(out, *po)
	}
	return out, nil
}

func (f *fakeOrderRepo) CountOpen(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, po := range f.docs {
		if po.Status == OrderStatusDraft || po.Status == OrderStatusSent || po.Status == OrderStatusConfirmed {
			n++
		}
	}
	return n, nil
}

func (f *fakeOrderRepo) ApplyStatus(_ context.Context, id string, allowed []OrderStatus, set bson.M) (*PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	po, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	eligible := false
	for _, s := range allowed {
		if po.Status == s {
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
			po.Status = value.(OrderStatus)
		case "notes":
			po.Notes = value.(string)
		case "sent_date":
			ts := value.(time.Time)
			po.SentDate = &ts
		case "delivered_on":
			ts := value.(time.Time)
			po.DeliveredOn = &ts
		case "updated_at":
			po.UpdatedAt = value.(time.Time)
		}
	}
	cp := *po
	return &cp, nil
}

type fakeSupplierRepo struct {
	supplier.SupplierRepository

	suppliers map[string]*supplier.Supplier
}

func (f *fakeSupplierRepo) FindByID(_ context.Context, id string) (*supplier.Supplier, error) {
	s, ok := f.suppliers[id]
	if !ok {
		return nil, nil
	}
	return s, nil
}

type fakeStockRepo struct {
	consumable.ConsumableRepository

	mu    sync.Mutex
	items map[string]*consumable.Consumable
	// fail makes AdjustStock reject receipts for the given consumable
	fail string
}

func (f *fakeStockRepo) FindByID(_ context.Context, id string) (*consumable.Consumable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStockRepo) AdjustStock(_ context.Context, id string, delta float64) (*consumable.Consumable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == f.fail && delta > 0 {
		return nil, errors.New("stock adjustment rejected")
	}
	c, ok := f.items[id]
	if !ok {
		return nil, consumable.ErrNotFound
	}
	c.StockLevel += delta
	cp := *c
	return &cp, nil
}

type noopAudit struct{}

func (noopAudit) LogChange(context.Context, common_models.AuditAction, string, string, map[string]common_models.Change) error {
	return nil
}
func (noopAudit) ListLogs(context.Context, map[string]interface{}, int64, int64) ([]common_models.AuditLog, error) {
	return nil, nil
}
func (noopAudit) Recent(context.Context, int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

type orderFixture struct {
	service *PurchaseOrderServiceImpl
	repo    *fakeOrderRepo
	stock   *fakeStockRepo
	sup     *supplier.Supplier
	toner   *consumable.Consumable
	diesel  *consumable.Consumable
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	sup := &supplier.Supplier{
		ID:     primitive.NewObjectID(),
		Name:   "Bayview Supplies Ltd",
		Active: true,
	}
	toner := &consumable.Consumable{
		ID:         primitive.NewObjectID(),
		Code:       "CON003",
		Name:       "Printer Toner",
		Unit:       "piece",
		StockLevel: 10,
		UnitPrice:  28000,
	}
	diesel := &consumable.Consumable{
		ID:         primitive.NewObjectID(),
		Code:       "CON004",
		Name:       "Diesel",
		Unit:       "liter",
		StockLevel: 500,
		UnitPrice:  1100,
	}

	f := &orderFixture{
		repo: newFakeOrderRepo(),
		stock: &fakeStockRepo{items: map[string]*consumable.Consumable{
			toner.ID.Hex():  toner,
			diesel.ID.Hex(): diesel,
		}},
		sup:    sup,
		toner:  toner,
		diesel: diesel,
	}
	f.service = &PurchaseOrderServiceImpl{
		Repo:           f.repo,
		SupplierRepo:   &fakeSupplierRepo{suppliers: map[string]*supplier.Supplier{sup.ID.Hex(): sup}},
		ConsumableRepo: f.stock,
		AuditService:   noopAudit{},
		Logger:         zap.NewNop(),
	}
	return f
}

func (f *orderFixture) validInput() CreateOrderInput {
	return CreateOrderInput{
		SupplierID: f.sup.ID.Hex(),
		Lines: []LineInput{
			{ConsumableID: f.toner.ID.Hex(), Quantity: 4, UnitPrice: 27000},
			{ConsumableID: f.diesel.ID.Hex(), Quantity: 100}, // falls back to catalog price
		},
	}
}

func TestCreatePurchaseOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	po, err := f.service.Create(ctx, f.validInput())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if po.Status != OrderStatusDraft {
		t.Errorf("new order status = %s, want draft", po.Status)
	}
	if po.Number == "" {
		t.Error("new order has no number")
	}
	if po.Lines[1].UnitPrice != 1100 {
		t.Errorf("line 2 unit price = %v, want catalog fallback 1100", po.Lines[1].UnitPrice)
	}
	wantTotal := 4*27000 + 100*1100.0
	if po.Total != wantTotal {
		t.Errorf("order total = %v, want %v", po.Total, wantTotal)
	}
}

func TestCreatePurchaseOrderValidation(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateOrderInput)
	}{
		{"no lines", func(in *CreateOrderInput) { in.Lines = nil }},
		{"zero quantity", func(in *CreateOrderInput) { in.Lines[0].Quantity = 0 }},
		{"unknown supplier", func(in *CreateOrderInput) { in.SupplierID = primitive.NewObjectID().Hex() }},
		{"unknown consumable", func(in *CreateOrderInput) { in.Lines[0].ConsumableID = primitive.NewObjectID().Hex() }},
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

func TestAdvanceChain(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	po, _ := f.service.Create(ctx, f.validInput())

	want := []OrderStatus{OrderStatusSent, OrderStatusConfirmed, OrderStatusDelivered}
	for _, expected := range want {
		updated, err := f.service.Advance(ctx, po.ID.Hex())
		if err != nil {
			t.Fatalf("Advance() to %s: %v", expected, err)
		}
		if updated.Status != expected {
			t.Fatalf("status = %s, want %s", updated.Status, expected)
		}
	}

	// Delivery received stock
	toner, _ := f.stock.FindByID(ctx, f.toner.ID.Hex())
	if toner.StockLevel != 14 {
		t.Errorf("toner stock = %v, want 14", toner.StockLevel)
	}
	diesel, _ := f.stock.FindByID(ctx, f.diesel.ID.Hex())
	if diesel.StockLevel != 600 {
		t.Errorf("diesel stock = %v, want 600", diesel.StockLevel)
	}

	// Delivered is terminal
	if _, err := f.service.Advance(ctx, po.ID.Hex()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Advance() past delivered: error = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelBeforeDelivery(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	po, _ := f.service.Create(ctx, f.validInput())
	if _, err := f.service.Advance(ctx, po.ID.Hex()); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}

	cancelled, err := f.service.Cancel(ctx, po.ID.Hex(), "supplier out of stock")
	if err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	if cancelled.Status != OrderStatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if cancelled.Notes != "supplier out of stock" {
		t.Errorf("notes = %q", cancelled.Notes)
	}
}

func TestCancelAfterDeliveryFails(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	po, _ := f.service.Create(ctx, f.validInput())
	for i := 0; i < 3; i++ {
		if _, err := f.service.Advance(ctx, po.ID.Hex()); err != nil {
			t.Fatalf("Advance() error: %v", err)
		}
	}

	if _, err := f.service.Cancel(ctx, po.ID.Hex(), ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Cancel() delivered order: error = %v, want ErrInvalidTransition", err)
	}
}

func TestDeliveryRollsBackOnReceiptFailure(t *testing.T) {
	f := newOrderFixture(t)
	f.stock.fail = f.diesel.ID.Hex()
	ctx := context.Background()

	po, _ := f.service.Create(ctx, f.validInput())
	if _, err := f.service.Advance(ctx, po.ID.Hex()); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	if _, err := f.service.Advance(ctx, po.ID.Hex()); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}

	if _, err := f.service.Advance(ctx, po.ID.Hex()); err == nil {
		t.Fatal("Advance() to delivered should fail when receipt fails")
	}

	// The successfully received line was returned and the order stayed confirmed
	toner, _ := f.stock.FindByID(ctx, f.toner.ID.Hex())
	if toner.StockLevel != 10 {
		t.Errorf("toner stock after rollback = %v, want 10", toner.StockLevel)
	}
	stored, _ := f.repo.FindByID(ctx, po.ID.Hex())
	if stored.Status != OrderStatusConfirmed {
		t.Errorf("order status = %s, want confirmed", stored.Status)
	}
}

// staleReadRepo serves a fixed snapshot from FindByID while the backing
// store moves on, mimicking a concurrent writer landing between the
// service's read and its status write.
type staleReadRepo struct {
	*fakeOrderRepo
	stale *PurchaseOrder
}

func (f *staleReadRepo) FindByID(ctx context.Context, id string) (*PurchaseOrder, error) {
	if f.stale != nil && f.stale.ID.Hex() == id {
		cp := *f.stale
		return &cp, nil
	}
	return f.fakeOrderRepo.FindByID(ctx, id)
}

func TestDeliveryLosingCancelRaceRestoresStock(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	po, _ := f.service.Create(ctx, f.validInput())
	for i := 0; i < 2; i++ {
		if _, err := f.service.Advance(ctx, po.ID.Hex()); err != nil {
			t.Fatalf("Advance() error: %v", err)
		}
	}

	// Cancel lands first; the delivery attempt still sees the confirmed order.
	confirmed, _ := f.repo.FindByID(ctx, po.ID.Hex())
	if _, err := f.service.Cancel(ctx, po.ID.Hex(), "supplier folded"); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	f.service.Repo = &staleReadRepo{fakeOrderRepo: f.repo, stale: confirmed}

	if _, err := f.service.Advance(ctx, po.ID.Hex()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Advance() on cancelled order: error = %v, want ErrInvalidTransition", err)
	}

	// The losing delivery must not leave its receipt behind
	toner, _ := f.stock.FindByID(ctx, f.toner.ID.Hex())
	if toner.StockLevel != 10 {
		t.Errorf("toner stock = %v, want 10", toner.StockLevel)
	}
	diesel, _ := f.stock.FindByID(ctx, f.diesel.ID.Hex())
	if diesel.StockLevel != 500 {
		t.Errorf("diesel stock = %v, want 500", diesel.StockLevel)
	}
	stored, _ := f.repo.FindByID(ctx, po.ID.Hex())
	if stored.Status != OrderStatusCancelled {
		t.Errorf("order status = %s, want cancelled", stored.Status)
	}
}
