package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gradlinkph/gradlink-backend/internal/models"
	"github.com/gradlinkph/gradlink-backend/internal/repository/common"
)

var ErrPortfolioItemNotFound = errors.New("portfolio item not found")

// PortfolioRepository отвечает за работы в портфолио исполнителей.
type PortfolioRepository struct {
	db *sqlx.DB
}

// NewPortfolioRepository создаёт новый экземпляр.
func NewPortfolioRepository(db *sqlx.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// Create добавляет работу в портфолио.
func (r *PortfolioRepository) Create(ctx context.Context, item *models.PortfolioItem) error {
	query := `
		INSERT INTO portfolio_items (graduate_id, title, description, project_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, item.GraduateID, item.Title, item.Description, item.ProjectURL).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("portfolio repository: insert item %w", err)
	}
	return nil
}

// GetByID возвращает работу по идентификатору.
func (r *PortfolioRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PortfolioItem, error) {
	return common.GetByID[models.PortfolioItem](ctx, r.db, "portfolio_items", id, ErrPortfolioItemNotFound)
}

// ListByGraduate возвращает работы исполнителя, новые первыми.
func (r *PortfolioRepository) ListByGraduate(ctx context.Context, graduateID uuid.UUID) ([]models.PortfolioItem, error) {
	var items []models.PortfolioItem
	query := `
		SELECT id, graduate_id, title, description, project_url, created_at, updated_at
		FROM portfolio_items
		WHERE graduate_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &items, query, graduateID); err != nil {
		return nil, fmt.Errorf("portfolio repository: list by graduate %w", err)
	}
	return items, nil
}

// Update обновляет работу. Владелец проверяется в WHERE.
func (r *PortfolioRepository) Update(ctx context.Context, item *models.PortfolioItem) error {
	query := `
		UPDATE portfolio_items
		SET title = $3, description = $4, project_url = $5, updated_at = NOW()
		WHERE id = $1 AND graduate_id = $2
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, item.ID, item.GraduateID, item.Title, item.Description, item.ProjectURL).
		Scan(&item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPortfolioItemNotFound
		}
		return fmt.Errorf("portfolio repository: update item %w", err)
	}
	return nil
}

// Delete удаляет работу исполнителя.
func (r *PortfolioRepository) Delete(ctx context.Context, id, graduateID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM portfolio_items WHERE id = $1 AND graduate_id = $2
	`, id, graduateID)
	if err != nil {
		return fmt.Errorf("portfolio repository: delete item %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("portfolio repository: delete rows affected %w", err)
	}
	if affected == 0 {
		return ErrPortfolioItemNotFound
	}
	return nil
}
