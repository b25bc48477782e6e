package consumable

import (
	"context"
	"errors"
	"sync"
	"testing"

	common_models "go-erp/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeConsumableRepo struct {
	mu    sync.Mutex
	items map[string]*Consumable
}

func newFakeConsumableRepo() *fakeConsumableRepo {
	return &fakeConsumableRepo{items: make(map[string]*Consumable)}
}

func (r *fakeConsumableRepo) Create(ctx context.Context, c *Consumable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *c
	r.items[c.ID.Hex()] = &copied
	return nil
}

func (r *fakeConsumableRepo) FindByID(ctx context.Context, id string) (*Consumable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *fakeConsumableRepo) FindByCode(ctx context.Context, code string) (*Consumable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.Code == code {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeConsumableRepo) List(ctx context.Context, category, search string, activeOnly bool) ([]Consumable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Consumable, 0)
	for _, c := range r.items {
		if activeOnly && !c.Active {
			continue
		}
		if category != "" && c.Category != category {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeConsumableRepo) LowStock(ctx context.Context) ([]Consumable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Consumable, 0)
	for _, c := range r.items {
		if c.Active && c.StockLevel <= c.ReorderLevel {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeConsumableRepo) Update(ctx context.Context, id string, c *Consumable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	copied := *c
	r.items[id] = &copied
	return nil
}

func (r *fakeConsumableRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeConsumableRepo) AdjustStock(ctx context.Context, id string, delta float64) (*Consumable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if delta < 0 && c.StockLevel < -delta {
		return nil, ErrInsufficientStock
	}
	c.StockLevel += delta
	copied := *c
	return &copied, nil
}

type noopAudit struct{}

func (noopAudit) LogChange(ctx context.Context, action common_models.AuditAction, module, recordID string, changes map[string]common_models.Change) error {
	return nil
}

func (noopAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

func (noopAudit) Recent(ctx context.Context, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

func newTestService() (ConsumableService, *fakeConsumableRepo) {
	repo := newFakeConsumableRepo()
	return NewConsumableService(repo, noopAudit{}, zap.NewNop()), repo
}

func seed(t *testing.T, repo *fakeConsumableRepo, code string, stock, reorder float64) string {
	t.Helper()
	c := &Consumable{
		ID:           primitive.NewObjectID(),
		Code:         code,
		Name:         code,
		Unit:         "Piece",
		StockLevel:   stock,
		ReorderLevel: reorder,
		Active:       true,
	}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("seed %s: %v", code, err)
	}
	return c.ID.Hex()
}

func TestCreateConsumable(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateConsumableInput{
		Code:         "CON010",
		Name:         "Staplers",
		Category:     "Office",
		Unit:         "Piece",
		StockLevel:   12,
		ReorderLevel: 3,
		UnitPrice:    4500,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID.IsZero() {
		t.Error("expected a generated ID")
	}
	if !c.Active {
		t.Error("new consumables should be active")
	}

	_, err = svc.Create(ctx, CreateConsumableInput{Code: "CON010", Name: "Duplicate", Unit: "Piece"})
	if !errors.Is(err, ErrDuplicateCode) {
		t.Errorf("duplicate code: got %v, want ErrDuplicateCode", err)
	}

	_, err = svc.Create(ctx, CreateConsumableInput{Name: "No code", Unit: "Piece"})
	if err == nil {
		t.Error("expected validation error for missing code")
	}
}

func TestRenameOnlyUpdateKeepsLevels(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateConsumableInput{
		Code:         "CON003",
		Name:         "Printer Toner",
		Unit:         "Piece",
		StockLevel:   10,
		ReorderLevel: 5,
		UnitPrice:    28000,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, c.ID.Hex(), UpdateConsumableInput{Name: "Printer Toner (Black)"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Printer Toner (Black)" {
		t.Errorf("name = %q", updated.Name)
	}
	if updated.ReorderLevel != 5 {
		t.Errorf("reorder level after rename = %v, want 5", updated.ReorderLevel)
	}
	if updated.UnitPrice != 28000 {
		t.Errorf("unit price after rename = %v, want 28000", updated.UnitPrice)
	}

	zero := 0.0
	updated, err = svc.Update(ctx, c.ID.Hex(), UpdateConsumableInput{ReorderLevel: &zero})
	if err != nil {
		t.Fatalf("Update with explicit zero: %v", err)
	}
	if updated.ReorderLevel != 0 {
		t.Errorf("explicit zero reorder level = %v, want 0", updated.ReorderLevel)
	}

	negative := -1.0
	if _, err := svc.Update(ctx, c.ID.Hex(), UpdateConsumableInput{UnitPrice: &negative}); err == nil {
		t.Error("expected error for negative price")
	}
}

func TestRestock(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	id := seed(t, repo, "CON001", 10, 5)

	c, err := svc.Restock(ctx, id, 40)
	if err != nil {
		t.Fatalf("Restock: %v", err)
	}
	if c.StockLevel != 50 {
		t.Errorf("stock level = %v, want 50", c.StockLevel)
	}

	if _, err := svc.Restock(ctx, id, 0); err == nil {
		t.Error("expected error for non-positive quantity")
	}
	if _, err := svc.Restock(ctx, id, -5); err == nil {
		t.Error("expected error for negative quantity")
	}
}

func TestAdjustStockNeverGoesNegative(t *testing.T) {
	_, repo := newTestService()
	ctx := context.Background()
	id := seed(t, repo, "CON002", 8, 2)

	if _, err := repo.AdjustStock(ctx, id, -10); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("over-withdrawal: got %v, want ErrInsufficientStock", err)
	}

	c, _ := repo.FindByID(ctx, id)
	if c.StockLevel != 8 {
		t.Errorf("stock level after failed withdrawal = %v, want 8", c.StockLevel)
	}

	if _, err := repo.AdjustStock(ctx, id, -8); err != nil {
		t.Fatalf("exact withdrawal: %v", err)
	}
	c, _ = repo.FindByID(ctx, id)
	if c.StockLevel != 0 {
		t.Errorf("stock level after exact withdrawal = %v, want 0", c.StockLevel)
	}
}

func TestLowStockAfterWithdrawals(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	seed(t, repo, "CON003", 100, 10)
	lowID := seed(t, repo, "CON004", 4, 5)

	low, err := svc.LowStock(ctx)
	if err != nil {
		t.Fatalf("LowStock: %v", err)
	}
	if len(low) != 1 || low[0].ID.Hex() != lowID {
		t.Errorf("low stock list = %v, want only CON004", low)
	}
}

func TestDeactivateHidesFromActiveList(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	id := seed(t, repo, "CON005", 20, 5)

	if err := svc.Deactivate(ctx, id); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	active, err := svc.List(ctx, "", "", true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("active list has %d items, want 0", len(active))
	}

	c, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after deactivate: %v", err)
	}
	if c.Active {
		t.Error("consumable should be inactive")
	}
}
