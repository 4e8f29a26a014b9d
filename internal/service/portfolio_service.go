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

// PortfolioRepo описывает взаимодействие сервиса с хранилищем портфолио.
type PortfolioRepo interface {
	Create(ctx context.Context, item *models.PortfolioItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PortfolioItem, error)
	ListByGraduate(ctx context.Context, graduateID uuid.UUID) ([]models.PortfolioItem, error)
	Update(ctx context.Context, item *models.PortfolioItem) error
	Delete(ctx context.Context, id, graduateID uuid.UUID) error
}

// PortfolioService содержит бизнес-логику работы с портфолио.
type PortfolioService struct {
	repo PortfolioRepo
}

// NewPortfolioService создаёт новый сервис портфолио.
func NewPortfolioService(repo PortfolioRepo) *PortfolioService {
	return &PortfolioService{repo: repo}
}

// CreatePortfolioItem добавляет работу в портфолио исполнителя.
func (s *PortfolioService) CreatePortfolioItem(ctx context.Context, graduateID uuid.UUID, title string, description, projectURL *string) (*models.PortfolioItem, error) {
	if err := validation.ValidatePortfolioTitle(title); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePortfolioDescription(description); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateExternalLink(projectURL); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	item := &models.PortfolioItem{
		GraduateID:  graduateID,
		Title:       title,
		Description: description,
		ProjectURL:  projectURL,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// GetPortfolioItem возвращает работу по идентификатору.
func (s *PortfolioService) GetPortfolioItem(ctx context.Context, id uuid.UUID) (*models.PortfolioItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPortfolioItemNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "работа не найдена")
		}
		return nil, err
	}
	return item, nil
}

// ListPortfolioItems возвращает работы исполнителя.
func (s *PortfolioService) ListPortfolioItems(ctx context.Context, graduateID uuid.UUID) ([]models.PortfolioItem, error) {
	return s.repo.ListByGraduate(ctx, graduateID)
}

// UpdatePortfolioItem обновляет работу. Изменять работу может только её владелец.
func (s *PortfolioService) UpdatePortfolioItem(ctx context.Context, id, graduateID uuid.UUID, title string, description, projectURL *string) (*models.PortfolioItem, error) {
	if err := validation.ValidatePortfolioTitle(title); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePortfolioDescription(description); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateExternalLink(projectURL); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	existing, err := s.GetPortfolioItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.GraduateID != graduateID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "у вас нет прав на изменение этой работы")
	}

	existing.Title = title
	existing.Description = description
	existing.ProjectURL = projectURL

	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrPortfolioItemNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "работа не найдена")
		}
		return nil, err
	}

	return existing, nil
}

// DeletePortfolioItem удаляет работу из портфолио.
func (s *PortfolioService) DeletePortfolioItem(ctx context.Context, id, graduateID uuid.UUID) error {
	existing, err := s.GetPortfolioItem(ctx, id)
	if err != nil {
		return err
	}
	if existing.GraduateID != graduateID {
		return apperror.New(apperror.ErrCodeForbidden, "у вас нет прав на удаление этой работы")
	}

	if err := s.repo.Delete(ctx, id, graduateID); err != nil {
		if errors.Is(err, repository.ErrPortfolioItemNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "работа не найдена")
		}
		return err
	}
	return nil
}
