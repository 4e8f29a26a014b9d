package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/gradlinkph/gradlink-backend/internal/models"
	"github.com/gradlinkph/gradlink-backend/internal/pkg/apperror"
)

// UrgentBookingLister — открытые срочные заявки категории.
type UrgentBookingLister interface {
	ListOpenUrgentByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Booking, error)
}

// MatchProbe — результат пробного матчинга до создания заявки.
type MatchProbe struct {
	CandidateCount int                     `json:"candidate_count"`
	Nearest        []models.NearbyGraduate `json:"nearest"`
	TopRated       []models.NearbyGraduate `json:"top_rated"`
}

// MatchingService — фасад матчинга: пробные запросы заказчика и лента
// открытых срочных заявок для исполнителя.
type MatchingService struct {
	matcher  CandidateFinder
	bookings UrgentBookingLister
	users    UserDirectory
}

// NewMatchingService создаёт сервис матчинга.
func NewMatchingService(matcher CandidateFinder, bookings UrgentBookingLister, users UserDirectory) *MatchingService {
	return &MatchingService{matcher: matcher, bookings: bookings, users: users}
}

// ProbeUrgentJob проверяет до создания заявки, найдутся ли исполнители.
// Доступен только подтверждённому заказчику. Пустая выборка — NOT_FOUND,
// как и при реальном создании срочной заявки.
func (s *MatchingService) ProbeUrgentJob(ctx context.Context, requesterID, categoryID uuid.UUID, lat, lon, radiusKm float64) (*MatchProbe, error) {
	if err := requireVerifiedRequester(ctx, s.users, requesterID); err != nil {
		return nil, err
	}

	candidates, err := s.matcher.FindCandidates(ctx, categoryID, lat, lon, radiusKm)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, apperror.New(apperror.ErrCodeNotFound, "рядом нет доступных исполнителей")
	}

	return &MatchProbe{
		CandidateCount: len(candidates),
		Nearest:        candidates,
		TopRated:       TopRated(candidates),
	}, nil
}

// OpenUrgentJobs возвращает непринятые срочные заявки категории —
// лента для исполнителя.
func (s *MatchingService) OpenUrgentJobs(ctx context.Context, categoryID uuid.UUID) ([]models.Booking, error) {
	return s.bookings.ListOpenUrgentByCategory(ctx, categoryID)
}
