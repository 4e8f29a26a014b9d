package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gradlinkph/gradlink-backend/internal/models"
	"github.com/gradlinkph/gradlink-backend/internal/pkg/apperror"
	"github.com/gradlinkph/gradlink-backend/internal/repository"
)

// NotificationRepo описывает хранилище уведомлений.
type NotificationRepo interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}

// NotificationService сохраняет уведомления и отдаёт их историю.
type NotificationService struct {
	repo NotificationRepo
}

// NewNotificationService создаёт сервис уведомлений.
func NewNotificationService(repo NotificationRepo) *NotificationService {
	return &NotificationService{repo: repo}
}

// CreateNotification сохраняет событие для пользователя. Реализует
// ws.NotificationSaver: хаб вызывает его при каждой рассылке.
func (s *NotificationService) CreateNotification(ctx context.Context, userID uuid.UUID, event string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("notification service: не удалось сериализовать данные: %w", err)
	}

	notification := &models.Notification{
		UserID: userID,
		Event:  event,
		Data:   raw,
	}
	return s.repo.Create(ctx, notification)
}

// ListNotifications возвращает историю уведомлений пользователя.
func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	limit = normalizeLimit(limit)
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// MarkRead помечает уведомление прочитанным.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "уведомление не найдено")
		}
		return err
	}
	return nil
}
