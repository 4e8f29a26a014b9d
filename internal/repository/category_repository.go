package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gradlinkph/gradlink-backend/internal/models"
	"github.com/gradlinkph/gradlink-backend/internal/repository/common"
)

var ErrCategoryNotFound = errors.New("category not found")

// CategoryRepository отвечает за справочник категорий услуг.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository создаёт новый экземпляр.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetByID возвращает категорию по идентификатору.
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return common.GetByID[models.Category](ctx, r.db, "categories", id, ErrCategoryNotFound)
}

// GetByName возвращает категорию по имени.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return common.GetByField[models.Category](ctx, r.db, "categories", "name", name, ErrCategoryNotFound)
}

// List возвращает все категории по алфавиту.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, `SELECT * FROM categories ORDER BY name`); err != nil {
		return nil, fmt.Errorf("category repository: list %w", err)
	}
	return categories, nil
}
