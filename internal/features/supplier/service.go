package supplier

import (
	"context"
	"fmt"
	"strings"
	"time"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SupplierInput struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Category      string `json:"category"`
}

type SupplierService interface {
	Create(ctx context.Context, input SupplierInput) (*Supplier, error)
	Get(ctx context.Context, id string) (*Supplier, error)
	List(ctx context.Context, category, search string, activeOnly bool) ([]Supplier, error)
	Update(ctx context.Context, id string, input SupplierInput) (*Supplier, error)
	Deactivate(ctx context.Context, id string) error
}

type SupplierServiceImpl struct {
	Repo         SupplierRepository
	AuditService audit.AuditService
}

func NewSupplierService(repo SupplierRepository, auditService audit.AuditService) SupplierService {
	return &SupplierServiceImpl{
		Repo:         repo,
		AuditService: auditService,
	}
}

func (s *SupplierServiceImpl) Create(ctx context.Context, input SupplierInput) (*Supplier, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("supplier name is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email != "" {
		existing, err := s.Repo.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrDuplicateEmail
		}
	}

	now := time.Now()
	sup := &Supplier{
		ID:            primitive.NewObjectID(),
		Name:          input.Name,
		ContactPerson: input.ContactPerson,
		Email:         email,
		Phone:         input.Phone,
		Address:       input.Address,
		Category:      input.Category,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ctx, sup); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "suppliers", sup.ID.Hex(), map[string]common_models.Change{
		"name": {Old: nil, New: sup.Name},
	})

	return sup, nil
}

func (s *SupplierServiceImpl) Get(ctx context.Context, id string) (*Supplier, error) {
	sup, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, ErrNotFound
	}
	return sup, nil
}

func (s *SupplierServiceImpl) List(ctx context.Context, category, search string, activeOnly bool) ([]Supplier, error) {
	return s.Repo.List(ctx, category, search, activeOnly)
}

func (s *SupplierServiceImpl) Update(ctx context.Context, id string, input SupplierInput) (*Supplier, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		existing.Name = input.Name
	}
	if input.ContactPerson != "" {
		existing.ContactPerson = input.ContactPerson
	}
	if input.Email != "" {
		email := strings.ToLower(strings.TrimSpace(input.Email))
		if email != existing.Email {
			dup, err := s.Repo.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if dup != nil {
				return nil, ErrDuplicateEmail
			}
			existing.Email = email
		}
	}
	if input.Phone != "" {
		existing.Phone = input.Phone
	}
	if input.Address != "" {
		existing.Address = input.Address
	}
	if input.Category != "" {
		existing.Category = input.Category
	}
	existing.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, id, existing); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "suppliers", id, map[string]common_models.Change{
		"name": {Old: nil, New: existing.Name},
	})

	return existing, nil
}

func (s *SupplierServiceImpl) Deactivate(ctx context.Context, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	existing.Active = false
	existing.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, id, existing); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "suppliers", id, map[string]common_models.Change{
		"active": {Old: true, New: false},
	})
	return nil
}
