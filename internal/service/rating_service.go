package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gradlinkph/gradlink-backend/internal/models"
	"github.com/gradlinkph/gradlink-backend/internal/pkg/apperror"
	"github.com/gradlinkph/gradlink-backend/internal/repository"
	"github.com/gradlinkph/gradlink-backend/internal/validation"
)

// RatingRepo описывает зависимости RatingService от слоя хранилища.
type RatingRepo interface {
	Create(ctx context.Context, rating *models.Rating) error
	Recompute(ctx context.Context, graduateID uuid.UUID) (float64, int, error)
	ListByGraduate(ctx context.Context, graduateID uuid.UUID, limit, offset int) ([]models.Rating, error)
}

// BookingRepoForRating загружает заявку для проверки предусловий оценки.
type BookingRepoForRating interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

// RatingService управляет оценками исполнителей.
type RatingService struct {
	repo     RatingRepo
	bookings BookingRepoForRating
}

// NewRatingService создаёт сервис оценок.
func NewRatingService(repo RatingRepo, bookings BookingRepoForRating) *RatingService {
	return &RatingService{repo: repo, bookings: bookings}
}

// ApplyRating сохраняет оценку заказчика по завершённой заявке и сворачивает
// её в рейтинг исполнителя. Оценить заявку можно один раз.
func (s *RatingService) ApplyRating(ctx context.Context, bookingID, requesterID uuid.UUID, value float64, comment *string) (*models.Rating, error) {
	if value < models.RatingMin || value > models.RatingMax {
		return nil, apperror.New(apperror.ErrCodeValidation, "оценка должна быть от 1 до 5")
	}
	if err := validation.ValidateRatingComment(comment); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, err
	}

	if booking.RequesterID != requesterID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "заявка принадлежит другому заказчику")
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "оценить можно только завершённую заявку")
	}
	if booking.GraduateID == nil {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "у заявки нет исполнителя")
	}

	rating := &models.Rating{
		BookingID:   bookingID,
		RequesterID: requesterID,
		GraduateID:  *booking.GraduateID,
		Value:       value,
		Comment:     comment,
	}

	if err := s.repo.Create(ctx, rating); err != nil {
		if errors.Is(err, repository.ErrAlreadyRated) {
			return nil, apperror.New(apperror.ErrCodeConflict, "вы уже оценили эту заявку")
		}
		if errors.Is(err, repository.ErrGraduateNotFound) {
			return nil, apperror.ErrGraduateNotFound
		}
		return nil, err
	}

	return rating, nil
}

// RecomputeGraduateRating пересчитывает рейтинг исполнителя с нуля по всем
// его оценкам. Сверочный путь: результат совпадает с инкрементальным
// сворачиванием в ApplyRating.
func (s *RatingService) RecomputeGraduateRating(ctx context.Context, graduateID uuid.UUID) (float64, int, error) {
	stars, count, err := s.repo.Recompute(ctx, graduateID)
	if err != nil {
		if errors.Is(err, repository.ErrGraduateNotFound) {
			return 0, 0, apperror.ErrGraduateNotFound
		}
		return 0, 0, err
	}
	return stars, count, nil
}

// ListGraduateRatings возвращает оценки исполнителя.
func (s *RatingService) ListGraduateRatings(ctx context.Context, graduateID uuid.UUID, limit, offset int) ([]models.Rating, error) {
	limit = normalizeLimit(limit)
	return s.repo.ListByGraduate(ctx, graduateID, limit, offset)
}
