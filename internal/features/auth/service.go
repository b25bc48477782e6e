package auth

import (
	"context"
	"errors"
	"strings"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/features/audit"
	"go-erp/internal/features/user"
	"go-erp/pkg/utils"

	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string              `json:"token"`
	User  *common_models.User `json:"user"`
}

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Me(ctx context.Context, userID string) (*common_models.User, error)
}

type AuthServiceImpl struct {
	UserRepo     user.UserRepository
	AuditService audit.AuditService
	Logger       *zap.Logger
}

func NewAuthService(userRepo user.UserRepository, auditService audit.AuditService, logger *zap.Logger) AuthService {
	return &AuthServiceImpl{
		UserRepo:     userRepo,
		AuditService: auditService,
		Logger:       logger,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	u, err := s.UserRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Status != "active" {
		return nil, ErrInvalidCredentials
	}
	if !utils.CheckPassword(u.Password, input.Password) {
		s.Logger.Warn("failed login attempt", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r))
	}
	token, err := utils.GenerateToken(u.ID, roles)
	if err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionLogin, "users", u.ID.Hex(), nil)

	return &LoginResult{Token: token, User: u}, nil
}

func (s *AuthServiceImpl) Me(ctx context.Context, userID string) (*common_models.User, error) {
	u, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrNotFound
	}
	return u, nil
}
