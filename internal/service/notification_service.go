package service

import (
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/internal/model"
	"github.com/taskhive/taskhive-server/internal/pkg/email"
	"github.com/taskhive/taskhive-server/internal/pkg/ws"
	"github.com/taskhive/taskhive-server/internal/repository"
)

// NotificationService persists notifications and delivers them: websocket
// push when the user is connected, email best-effort. Delivery failures are
// logged, never retried, and never fail the calling workflow.
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	userRepo         *repository.UserRepository
	hub              *ws.Hub
	mailer           *email.Service
}

func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	hub *ws.Hub,
	mailer *email.Service,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		hub:              hub,
		mailer:           mailer,
	}
}

// Build assembles a notification row. Metadata marshalling errors are
// impossible for the map types the workflows pass, but are surfaced anyway.
func Build(userID int64, title, message string, typ model.NotificationType, metadata map[string]any) (*model.Notification, error) {
	n := &model.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    typ,
	}
	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err != nil {
			return nil, err
		}
		n.Metadata = data
	}
	return n, nil
}

// CreateInTx writes the notification row inside the caller's transaction so
// it commits or rolls back with the workflow that produced it. Deliver
// afterwards with Push.
func (s *NotificationService) CreateInTx(tx *gorm.DB, n *model.Notification) error {
	return s.notificationRepo.WithTx(tx).Create(n)
}

// Push delivers a committed notification over websocket and email.
func (s *NotificationService) Push(n *model.Notification) {
	if s.hub != nil {
		if err := s.hub.SendToUser(n.UserID, &ws.Message{Type: "notification", Data: n}); err != nil {
			zap.L().Warn("notification push failed",
				zap.Int64("user_id", n.UserID), zap.Int64("notification_id", n.ID), zap.Error(err))
		}
	}

	if s.mailer == nil {
		return
	}
	user, err := s.userRepo.GetByID(n.UserID)
	if err != nil {
		zap.L().Warn("notification email lookup failed",
			zap.Int64("user_id", n.UserID), zap.Error(err))
		return
	}
	if err := s.mailer.SendNotification(user.Email, n.Title, n.Message); err != nil {
		zap.L().Debug("notification email delivery failed",
			zap.Int64("user_id", n.UserID), zap.Error(err))
	}
}

// Notify is the non-transactional convenience path: persist then deliver.
func (s *NotificationService) Notify(userID int64, title, message string, typ model.NotificationType, metadata map[string]any) error {
	n, err := Build(userID, title, message, typ, metadata)
	if err != nil {
		return err
	}
	if err := s.notificationRepo.Create(n); err != nil {
		return err
	}
	s.Push(n)
	return nil
}

func (s *NotificationService) ListForUser(userID int64) ([]model.Notification, error) {
	return s.notificationRepo.ListByUser(userID)
}

func (s *NotificationService) MarkRead(userID, id int64) error {
	err := s.notificationRepo.MarkRead(userID, id)
	if err == gorm.ErrRecordNotFound {
		return ErrNotFound
	}
	return err
}
