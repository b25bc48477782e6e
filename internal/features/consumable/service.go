package consumable

import (
	"context"
	"fmt"
	"time"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CreateConsumableInput struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Unit         string  `json:"unit"`
	StockLevel   float64 `json:"stock_level"`
	ReorderLevel float64 `json:"reorder_level"`
	UnitPrice    float64 `json:"unit_price"`
	Location     string  `json:"location"`
}

// UpdateConsumableInput carries a partial update. Numeric fields are
// pointers so an omitted field is distinguishable from an explicit zero.
type UpdateConsumableInput struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Unit         string   `json:"unit"`
	ReorderLevel *float64 `json:"reorder_level"`
	UnitPrice    *float64 `json:"unit_price"`
	Location     string   `json:"location"`
}

type ConsumableService interface {
	Create(ctx context.Context, input CreateConsumableInput) (*Consumable, error)
	Get(ctx context.Context, id string) (*Consumable, error)
	List(ctx context.Context, category, search string, activeOnly bool) ([]Consumable, error)
	LowStock(ctx context.Context) ([]Consumable, error)
	Update(ctx context.Context, id string, input UpdateConsumableInput) (*Consumable, error)
	Deactivate(ctx context.Context, id string) error
	Restock(ctx context.Context, id string, quantity float64) (*Consumable, error)
}

type ConsumableServiceImpl struct {
	Repo         ConsumableRepository
	AuditService audit.AuditService
	Logger       *zap.Logger
}

func NewConsumableService(repo ConsumableRepository, auditService audit.AuditService, logger *zap.Logger) ConsumableService {
	return &ConsumableServiceImpl{
		Repo:         repo,
		AuditService: auditService,
		Logger:       logger,
	}
}

func (s *ConsumableServiceImpl) Create(ctx context.Context, input CreateConsumableInput) (*Consumable, error) {
	if input.Code == "" || input.Name == "" || input.Unit == "" {
		return nil, fmt.Errorf("code, name and unit are required")
	}
	if input.StockLevel < 0 || input.ReorderLevel < 0 || input.UnitPrice < 0 {
		return nil, fmt.Errorf("stock, reorder level and price cannot be negative")
	}

	existing, err := s.Repo.FindByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateCode
	}

	now := time.Now()
	c := &Consumable{
		ID:           primitive.NewObjectID(),
		Code:         input.Code,
		Name:         input.Name,
		Category:     input.Category,
		Unit:         input.Unit,
		StockLevel:   input.StockLevel,
		ReorderLevel: input.ReorderLevel,
		UnitPrice:    input.UnitPrice,
		Location:     input.Location,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "consumables", c.ID.Hex(), map[string]common_models.Change{
		"code": {Old: nil, New: c.Code},
		"name": {Old: nil, New: c.Name},
	})

	return c, nil
}

func (s *ConsumableServiceImpl) Get(ctx context.Context, id string) (*Consumable, error) {
	c, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *ConsumableServiceImpl) List(ctx context.Context, category, search string, activeOnly bool) ([]Consumable, error) {
	return s.Repo.List(ctx, category, search, activeOnly)
}

func (s *ConsumableServiceImpl) LowStock(ctx context.Context) ([]Consumable, error) {
	return s.Repo.LowStock(ctx)
}

func (s *ConsumableServiceImpl) Update(ctx context.Context, id string, input UpdateConsumableInput) (*Consumable, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Code != "" && input.Code != existing.Code {
		dup, err := s.Repo.FindByCode(ctx, input.Code)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, ErrDuplicateCode
		}
		existing.Code = input.Code
	}
	if input.Name != "" {
		existing.Name = input.Name
	}
	if input.Category != "" {
		existing.Category = input.Category
	}
	if input.Unit != "" {
		existing.Unit = input.Unit
	}
	if input.ReorderLevel != nil {
		if *input.ReorderLevel < 0 {
			return nil, fmt.Errorf("reorder level cannot be negative")
		}
		existing.ReorderLevel = *input.ReorderLevel
	}
	if input.UnitPrice != nil {
		if *input.UnitPrice < 0 {
			return nil, fmt.Errorf("price cannot be negative")
		}
		existing.UnitPrice = *input.UnitPrice
	}
	if input.Location != "" {
		existing.Location = input.Location
	}
	existing.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, id, existing); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "consumables", id, map[string]common_models.Change{
		"name": {Old: nil, New: existing.Name},
	})

	return existing, nil
}

// Deactivate hides a consumable from new requisitions without losing the
// stock history behind it.
func (s *ConsumableServiceImpl) Deactivate(ctx context.Context, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	existing.Active = false
	existing.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, id, existing); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "consumables", id, map[string]common_models.Change{
		"active": {Old: true, New: false},
	})
	return nil
}

func (s *ConsumableServiceImpl) Restock(ctx context.Context, id string, quantity float64) (*Consumable, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("restock quantity must be positive")
	}
	c, err := s.Repo.AdjustStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionStock, "consumables", id, map[string]common_models.Change{
		"stock_level": {Old: c.StockLevel - quantity, New: c.StockLevel},
	})

	s.Logger.Info("consumable restocked",
		zap.String("consumable", c.Code),
		zap.Float64("quantity", quantity),
		zap.Float64("stock_level", c.StockLevel))

	return c, nil
}
