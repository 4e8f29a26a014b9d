package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gradlinkph/gradlink-backend/internal/models"
)

var ErrGraduateNotFound = errors.New("graduate not found")

// GraduateRepository отвечает за профили исполнителей и гео-выборки.
type GraduateRepository struct {
	db *sqlx.DB
}

// NewGraduateRepository создаёт новый экземпляр.
func NewGraduateRepository(db *sqlx.DB) *GraduateRepository {
	return &GraduateRepository{db: db}
}

// GetByUserID возвращает профиль исполнителя.
func (r *GraduateRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Graduate, error) {
	var graduate models.Graduate
	query := `
		SELECT user_id, display_name, bio, is_available, latitude, longitude,
		       stars, rating_count, created_at, updated_at
		FROM graduates
		WHERE user_id = $1
	`
	if err := r.db.GetContext(ctx, &graduate, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGraduateNotFound
		}
		return nil, fmt.Errorf("graduate repository: get by user id %w", err)
	}

	categories, err := r.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	graduate.Categories = categories

	return &graduate, nil
}

// Upsert создаёт или обновляет профиль исполнителя.
func (r *GraduateRepository) Upsert(ctx context.Context, graduate *models.Graduate) error {
	query := `
		INSERT INTO graduates (user_id, display_name, bio, is_available, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    bio = EXCLUDED.bio,
		    is_available = EXCLUDED.is_available,
		    latitude = EXCLUDED.latitude,
		    longitude = EXCLUDED.longitude,
		    updated_at = NOW()
		RETURNING stars, rating_count, created_at, updated_at
	`
	err := r.db.QueryRowxContext(
		ctx,
		query,
		graduate.UserID,
		graduate.DisplayName,
		graduate.Bio,
		graduate.IsAvailable,
		graduate.Latitude,
		graduate.Longitude,
	).Scan(&graduate.Stars, &graduate.RatingCount, &graduate.CreatedAt, &graduate.UpdatedAt)
	if err != nil {
		return fmt.Errorf("graduate repository: upsert %w", err)
	}
	return nil
}

// SetAvailability переключает флаг доступности исполнителя.
func (r *GraduateRepository) SetAvailability(ctx context.Context, userID uuid.UUID, available bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE graduates SET is_available = $2, updated_at = NOW() WHERE user_id = $1
	`, userID, available)
	if err != nil {
		return fmt.Errorf("graduate repository: set availability %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("graduate repository: set availability rows affected %w", err)
	}
	if affected == 0 {
		return ErrGraduateNotFound
	}
	return nil
}

// ListCategories возвращает имена категорий исполнителя.
func (r *GraduateRepository) ListCategories(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var categories []string
	query := `
		SELECT c.name
		FROM graduate_categories gc
		JOIN categories c ON c.id = gc.category_id
		WHERE gc.graduate_id = $1
		ORDER BY c.name
	`
	if err := r.db.SelectContext(ctx, &categories, query, userID); err != nil {
		return nil, fmt.Errorf("graduate repository: list categories %w", err)
	}
	return categories, nil
}

// ReplaceCategories заменяет набор категорий исполнителя в одной транзакции.
func (r *GraduateRepository) ReplaceCategories(ctx context.Context, userID uuid.UUID, categoryIDs []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("graduate repository: begin tx %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM graduate_categories WHERE graduate_id = $1`, userID); err != nil {
		return fmt.Errorf("graduate repository: delete categories %w", err)
	}

	for _, categoryID := range categoryIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO graduate_categories (graduate_id, category_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, userID, categoryID); err != nil {
			return fmt.Errorf("graduate repository: insert category %w", err)
		}
	}

	return tx.Commit()
}

// HasCategory проверяет, что исполнитель работает в категории.
func (r *GraduateRepository) HasCategory(ctx context.Context, userID, categoryID uuid.UUID) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM graduate_categories WHERE graduate_id = $1 AND category_id = $2`
	if err := r.db.GetContext(ctx, &count, query, userID, categoryID); err != nil {
		return false, fmt.Errorf("graduate repository: has category %w", err)
	}
	return count > 0, nil
}

// FindNearby возвращает доступных исполнителей категории в радиусе radiusKm
// от точки (lat, lon) по формуле большого круга. excludeBusy дополнительно
// отсекает исполнителей с активной заявкой — вариант для матчинга; без него
// выборка служит read-only списку «кто рядом». Порядок строк не гарантируется.
func (r *GraduateRepository) FindNearby(ctx context.Context, categoryID uuid.UUID, lat, lon, radiusKm float64, excludeBusy bool) ([]models.NearbyGraduate, error) {
	query := `
		SELECT g.user_id, g.display_name, g.latitude, g.longitude, g.stars, g.rating_count,
		       6371 * acos(
		           LEAST(1.0, GREATEST(-1.0,
		               cos(radians($1)) * cos(radians(g.latitude)) * cos(radians(g.longitude) - radians($2))
		               + sin(radians($1)) * sin(radians(g.latitude))
		           ))
		       ) AS distance_km
		FROM graduates g
		JOIN graduate_categories gc ON gc.graduate_id = g.user_id
		WHERE gc.category_id = $3
		  AND g.is_available
		  AND g.latitude IS NOT NULL
		  AND g.longitude IS NOT NULL
		  AND 6371 * acos(
		          LEAST(1.0, GREATEST(-1.0,
		              cos(radians($1)) * cos(radians(g.latitude)) * cos(radians(g.longitude) - radians($2))
		              + sin(radians($1)) * sin(radians(g.latitude))
		          ))
		      ) <= $4
	`
	if excludeBusy {
		query += `
		  AND NOT EXISTS (
		      SELECT 1 FROM bookings act
		      WHERE act.graduate_id = g.user_id AND act.status IN ('accepted', 'in_progress')
		  )
		`
	}

	var graduates []models.NearbyGraduate
	if err := r.db.SelectContext(ctx, &graduates, query, lat, lon, categoryID, radiusKm); err != nil {
		return nil, fmt.Errorf("graduate repository: find nearby %w", err)
	}
	return graduates, nil
}

// ListByCategory возвращает доступных исполнителей категории без гео-фильтра.
func (r *GraduateRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID, limit int) ([]models.Graduate, error) {
	var graduates []models.Graduate
	query := `
		SELECT g.user_id, g.display_name, g.bio, g.is_available, g.latitude, g.longitude,
		       g.stars, g.rating_count, g.created_at, g.updated_at
		FROM graduates g
		JOIN graduate_categories gc ON gc.graduate_id = g.user_id
		WHERE gc.category_id = $1 AND g.is_available
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &graduates, query, categoryID, limit); err != nil {
		return nil, fmt.Errorf("graduate repository: list by category %w", err)
	}
	return graduates, nil
}
