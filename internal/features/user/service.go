package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/features/audit"
	"go-erp/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateStaffID  = errors.New("staff ID already registered")
)

type CreateUserInput struct {
	Username   string               `json:"username"`
	Email      string               `json:"email"`
	Password   string               `json:"password"`
	FullName   string               `json:"full_name"`
	StaffID    string               `json:"staff_id"`
	Department string               `json:"department"`
	Roles      []common_models.Role `json:"roles"`
}

type UpdateUserInput struct {
	Email      string               `json:"email"`
	FullName   string               `json:"full_name"`
	Department string               `json:"department"`
	Roles      []common_models.Role `json:"roles"`
	Status     string               `json:"status"`
}

type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*common_models.User, error)
	Get(ctx context.Context, id string) (*common_models.User, error)
	List(ctx context.Context, limit, offset int64) ([]common_models.User, error)
	Update(ctx context.Context, id string, input UpdateUserInput) (*common_models.User, error)
	Delete(ctx context.Context, id string) error
}

type UserServiceImpl struct {
	Repo         UserRepository
	AuditService audit.AuditService
}

func NewUserService(repo UserRepository, auditService audit.AuditService) UserService {
	return &UserServiceImpl{
		Repo:         repo,
		AuditService: auditService,
	}
}

func (s *UserServiceImpl) Create(ctx context.Context, input CreateUserInput) (*common_models.User, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if username == "" || input.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	roles := input.Roles
	if len(roles) == 0 {
		roles = []common_models.Role{common_models.RoleStaff}
	}
	for _, r := range roles {
		if !r.Valid() {
			return nil, fmt.Errorf("unknown role %q", r)
		}
	}

	if existing, err := s.Repo.FindByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrDuplicateUsername
	}
	if input.StaffID != "" {
		if existing, err := s.Repo.FindByStaffID(ctx, input.StaffID); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, ErrDuplicateStaffID
		}
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &common_models.User{
		ID:         primitive.NewObjectID(),
		Username:   username,
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		Password:   hash,
		FullName:   input.FullName,
		StaffID:    input.StaffID,
		Department: input.Department,
		Roles:      roles,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "users", u.ID.Hex(), map[string]common_models.Change{
		"username": {Old: nil, New: u.Username},
	})

	return u, nil
}

func (s *UserServiceImpl) Get(ctx context.Context, id string) (*common_models.User, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *UserServiceImpl) List(ctx context.Context, limit, offset int64) ([]common_models.User, error) {
	return s.Repo.List(ctx, limit, offset)
}

func (s *UserServiceImpl) Update(ctx context.Context, id string, input UpdateUserInput) (*common_models.User, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != "" {
		existing.Email = strings.ToLower(strings.TrimSpace(input.Email))
	}
	if input.FullName != "" {
		existing.FullName = input.FullName
	}
	if input.Department != "" {
		existing.Department = input.Department
	}
	if len(input.Roles) > 0 {
		for _, r := range input.Roles {
			if !r.Valid() {
				return nil, fmt.Errorf("unknown role %q", r)
			}
		}
		existing.Roles = input.Roles
	}
	if input.Status != "" {
		existing.Status = input.Status
	}
	existing.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, id, existing); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "users", id, map[string]common_models.Change{
		"username": {Old: nil, New: existing.Username},
	})

	return existing, nil
}

func (s *UserServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "users", id, nil)
	return nil
}
