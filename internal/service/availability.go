package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gradlinkph/gradlink-backend/internal/models"
	"github.com/gradlinkph/gradlink-backend/internal/pkg/apperror"
	"github.com/gradlinkph/gradlink-backend/internal/repository"
)

// AvailabilityRepository — зависимости проверок занятости.
type AvailabilityRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Graduate, error)
	SetAvailability(ctx context.Context, userID uuid.UUID, available bool) error
}

// BookingCountRepository считает активные заявки сторон.
type BookingCountRepository interface {
	CountActiveByGraduate(ctx context.Context, graduateID uuid.UUID) (int, error)
	CountActiveByRequester(ctx context.Context, requesterID uuid.UUID) (int, error)
}

// AvailabilityGuard проверяет, свободны ли стороны для новой заявки.
// Проверки рекомендательные: они дают раннюю ошибку с понятным текстом,
// а решающее слово остаётся за guarded UPDATE и частичными индексами
// в хранилище.
type AvailabilityGuard struct {
	graduates AvailabilityRepository
	bookings  BookingCountRepository
}

// NewAvailabilityGuard создаёт новый guard.
func NewAvailabilityGuard(graduates AvailabilityRepository, bookings BookingCountRepository) *AvailabilityGuard {
	return &AvailabilityGuard{graduates: graduates, bookings: bookings}
}

// CheckGraduateFree убеждается, что исполнитель доступен и не занят
// другой активной заявкой.
func (g *AvailabilityGuard) CheckGraduateFree(ctx context.Context, graduateID uuid.UUID) error {
	graduate, err := g.graduates.GetByUserID(ctx, graduateID)
	if err != nil {
		if errors.Is(err, repository.ErrGraduateNotFound) {
			return apperror.ErrGraduateNotFound
		}
		return err
	}

	if !graduate.IsAvailable {
		return apperror.New(apperror.ErrCodeInvalidState, "исполнитель сейчас недоступен")
	}

	active, err := g.bookings.CountActiveByGraduate(ctx, graduateID)
	if err != nil {
		return err
	}
	if active > 0 {
		return apperror.New(apperror.ErrCodeConflict, "исполнитель уже занят другой заявкой")
	}

	return nil
}

// CheckRequesterFree убеждается, что у заказчика нет активной заявки.
func (g *AvailabilityGuard) CheckRequesterFree(ctx context.Context, requesterID uuid.UUID) error {
	active, err := g.bookings.CountActiveByRequester(ctx, requesterID)
	if err != nil {
		return err
	}
	if active > 0 {
		return apperror.New(apperror.ErrCodeConflict, "у вас уже есть активная заявка")
	}
	return nil
}

// SetGraduateAvailability переключает доступность исполнителя. Уход в
// недоступность не трогает уже принятые заявки: они доводятся до конца.
func (g *AvailabilityGuard) SetGraduateAvailability(ctx context.Context, graduateID uuid.UUID, available bool) error {
	if err := g.graduates.SetAvailability(ctx, graduateID, available); err != nil {
		if errors.Is(err, repository.ErrGraduateNotFound) {
			return apperror.ErrGraduateNotFound
		}
		return err
	}
	return nil
}
