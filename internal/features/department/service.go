package department

import (
	"context"
	"fmt"
	"strings"
	"time"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DepartmentInput struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Manager     string `json:"manager"`
}

type DepartmentService interface {
	Create(ctx context.Context, input DepartmentInput) (*Department, error)
	Get(ctx context.Context, id string) (*Department, error)
	List(ctx context.Context, activeOnly bool) ([]Department, error)
	Update(ctx context.Context, id string, input DepartmentInput) (*Department, error)
	Deactivate(ctx context.Context, id string) error
}

type DepartmentServiceImpl struct {
	Repo         DepartmentRepository
	AuditService audit.AuditService
}

func NewDepartmentService(repo DepartmentRepository, auditService audit.AuditService) DepartmentService {
	return &DepartmentServiceImpl{
		Repo:         repo,
		AuditService: auditService,
	}
}

func (s *DepartmentServiceImpl) Create(ctx context.Context, input DepartmentInput) (*Department, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("department name is required")
	}
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, fmt.Errorf("department code is required")
	}

	if existing, err := s.Repo.FindByName(ctx, input.Name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrDuplicateName
	}
	if existing, err := s.Repo.FindByCode(ctx, code); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrDuplicateCode
	}

	now := time.Now()
	d := &Department{
		ID:          primitive.NewObjectID(),
		Name:        input.Name,
		Code:        code,
		Description: input.Description,
		Manager:     input.Manager,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, d); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "departments", d.ID.Hex(), map[string]common_models.Change{
		"name": {Old: nil, New: d.Name},
		"code": {Old: nil, New: d.Code},
	})

	return d, nil
}

func (s *DepartmentServiceImpl) Get(ctx context.Context, id string) (*Department, error) {
	d, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *DepartmentServiceImpl) List(ctx context.Context, activeOnly bool) ([]Department, error) {
	return s.Repo.List(ctx, activeOnly)
}

func (s *DepartmentServiceImpl) Update(ctx context.Context, id string, input DepartmentInput) (*Department, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" && input.Name != existing.Name {
		if dup, err := s.Repo.FindByName(ctx, input.Name); err != nil {
			return nil, err
		} else if dup != nil {
			return nil, ErrDuplicateName
		}
		existing.Name = input.Name
	}
	if input.Description != "" {
		existing.Description = input.Description
	}
	if input.Manager != "" {
		existing.Manager = input.Manager
	}
	existing.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, id, existing); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "departments", id, map[string]common_models.Change{
		"name": {Old: nil, New: existing.Name},
	})

	return existing, nil
}

func (s *DepartmentServiceImpl) Deactivate(ctx context.Context, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	existing.Active = false
	existing.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, id, existing); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "departments", id, map[string]common_models.Change{
		"active": {Old: true, New: false},
	})
	return nil
}
