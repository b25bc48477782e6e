package notification

import (
	"context"
	"time"

	common_models "go-erp/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type RoleUserFinder interface {
	FindByRole(ctx context.Context, role common_models.Role) ([]common_models.User, error)
}

type NotificationService interface {
	Notify(ctx context.Context, userID, title, message string, nType NotificationType, link string) error
	NotifyRole(ctx context.Context, role common_models.Role, title, message string, nType NotificationType, link string) error
	ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type NotificationServiceImpl struct {
	Repo     NotificationRepository
	UserRepo RoleUserFinder
	Hub      *Hub
	Logger   *zap.Logger
}

func NewNotificationService(repo NotificationRepository, userRepo RoleUserFinder, hub *Hub, logger *zap.Logger) NotificationService {
	return &NotificationServiceImpl{
		Repo:     repo,
		UserRepo: userRepo,
		Hub:      hub,
		Logger:   logger,
	}
}

func (s *NotificationServiceImpl) Notify(ctx context.Context, userID, title, message string, nType NotificationType, link string) error {
	n := &Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      nType,
		Link:      link,
		CreatedAt: time.Now(),
	}

	if err := s.Repo.Create(ctx, n); err != nil {
		return err
	}

	s.Hub.Push(userID, n)
	return nil
}

// NotifyRole fans a notification out to every active user holding the role.
func (s *NotificationServiceImpl) NotifyRole(ctx context.Context, role common_models.Role, title, message string, nType NotificationType, link string) error {
	users, err := s.UserRepo.FindByRole(ctx, role)
	if err != nil {
		return err
	}

	for _, u := range users {
		if err := s.Notify(ctx, u.ID.Hex(), title, message, nType, link); err != nil {
			s.Logger.Warn("failed to notify user",
				zap.String("user_id", u.ID.Hex()),
				zap.Error(err))
		}
	}
	return nil
}

func (s *NotificationServiceImpl) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]Notification, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return s.Repo.FindByUser(ctx, userID, unreadOnly, limit)
}

func (s *NotificationServiceImpl) MarkRead(ctx context.Context, id, userID string) error {
	return s.Repo.MarkRead(ctx, id, userID)
}

func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, userID string) error {
	return s.Repo.MarkAllRead(ctx, userID)
}
