package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gradlinkph/gradlink-backend/internal/models"
	"github.com/gradlinkph/gradlink-backend/internal/pkg/apperror"
	"github.com/gradlinkph/gradlink-backend/internal/repository"
	"github.com/gradlinkph/gradlink-backend/internal/validation"
)

// GraduateRepo описывает зависимости GraduateService от слоя хранилища.
type GraduateRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Graduate, error)
	Upsert(ctx context.Context, graduate *models.Graduate) error
	ReplaceCategories(ctx context.Context, userID uuid.UUID, categoryIDs []uuid.UUID) error
	ListByCategory(ctx context.Context, categoryID uuid.UUID, limit int) ([]models.Graduate, error)
}

// CategoryRepoForGraduate проверяет категории при обновлении профиля.
type CategoryRepoForGraduate interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}

// GraduateService управляет профилями исполнителей и каталогом.
type GraduateService struct {
	repo       GraduateRepo
	categories CategoryRepoForGraduate
	cache      *CacheService
}

// NewGraduateService создаёт сервис исполнителей. Кэш опционален:
// без него справочники читаются из базы каждый раз.
func NewGraduateService(repo GraduateRepo, categories CategoryRepoForGraduate, cache *CacheService) *GraduateService {
	return &GraduateService{repo: repo, categories: categories, cache: cache}
}

// ProfileInput — данные профиля исполнителя.
type ProfileInput struct {
	DisplayName string
	Bio         *string
	IsAvailable bool
	Latitude    *float64
	Longitude   *float64
	CategoryIDs []uuid.UUID
}

// GetProfile возвращает профиль исполнителя вместе с категориями.
func (s *GraduateService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Graduate, error) {
	graduate, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrGraduateNotFound) {
			return nil, apperror.ErrGraduateNotFound
		}
		return nil, err
	}
	return graduate, nil
}

// UpdateProfile создаёт или обновляет профиль исполнителя. Координаты
// задаются парой: одна без другой — ошибка валидации.
func (s *GraduateService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*models.Graduate, error) {
	if err := validation.ValidateDisplayName(in.DisplayName); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateBio(in.Bio); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, apperror.New(apperror.ErrCodeValidation, "широта и долгота задаются вместе")
	}
	if in.Latitude != nil {
		if err := validation.ValidateCoordinates(*in.Latitude, *in.Longitude); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
	}

	for _, categoryID := range in.CategoryIDs {
		if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, apperror.ErrCategoryNotFound
			}
			return nil, err
		}
	}

	graduate := &models.Graduate{
		UserID:      userID,
		DisplayName: in.DisplayName,
		Bio:         in.Bio,
		IsAvailable: in.IsAvailable,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}

	if err := s.repo.Upsert(ctx, graduate); err != nil {
		return nil, err
	}

	if in.CategoryIDs != nil {
		if err := s.repo.ReplaceCategories(ctx, userID, in.CategoryIDs); err != nil {
			return nil, err
		}
	}

	if s.cache != nil {
		s.cache.InvalidateCatalog()
	}

	return s.GetProfile(ctx, userID)
}

// ListByCategory возвращает доступных исполнителей категории для каталога.
func (s *GraduateService) ListByCategory(ctx context.Context, categoryID uuid.UUID, limit int) ([]models.Graduate, error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, apperror.ErrCategoryNotFound
		}
		return nil, err
	}
	limit = normalizeLimit(limit)

	if s.cache == nil {
		return s.repo.ListByCategory(ctx, categoryID, limit)
	}

	cached, err := s.cache.GetOrSet(CatalogCacheKey(categoryID, limit), time.Minute, func() (interface{}, error) {
		return s.repo.ListByCategory(ctx, categoryID, limit)
	})
	if err != nil {
		return nil, err
	}
	return cached.([]models.Graduate), nil
}

// ListCategories возвращает справочник категорий.
func (s *GraduateService) ListCategories(ctx context.Context) ([]models.Category, error) {
	if s.cache == nil {
		return s.categories.List(ctx)
	}

	cached, err := s.cache.GetOrSet(CategoriesCacheKey(), 10*time.Minute, func() (interface{}, error) {
		return s.categories.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return cached.([]models.Category), nil
}
