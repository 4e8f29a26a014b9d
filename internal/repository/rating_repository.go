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

var (
	ErrRatingNotFound = errors.New("rating not found")
	ErrAlreadyRated   = errors.New("booking already rated by requester")
)

// RatingRepository отвечает за оценки и денормализованный рейтинг исполнителя.
type RatingRepository struct {
	db *sqlx.DB
}

// NewRatingRepository создаёт новый экземпляр.
func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create сохраняет оценку и сворачивает её в бегущее среднее исполнителя
// в одной транзакции. Строка исполнителя блокируется FOR UPDATE, чтобы
// конкурентные оценки не потеряли друг друга.
func (r *RatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("rating repository: begin tx %w", err)
	}
	defer tx.Rollback()

	var stars float64
	var count int
	err = tx.QueryRowxContext(ctx, `
		SELECT stars, rating_count FROM graduates WHERE user_id = $1 FOR UPDATE
	`, rating.GraduateID).Scan(&stars, &count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrGraduateNotFound
		}
		return fmt.Errorf("rating repository: lock graduate %w", err)
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO ratings (booking_id, requester_id, graduate_id, value, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, rating.BookingID, rating.RequesterID, rating.GraduateID, rating.Value, rating.Comment).
		Scan(&rating.ID, &rating.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyRated
		}
		return fmt.Errorf("rating repository: insert rating %w", err)
	}

	newStars, newCount := models.NextRating(stars, count, rating.Value)
	if _, err := tx.ExecContext(ctx, `
		UPDATE graduates SET stars = $2, rating_count = $3, updated_at = NOW() WHERE user_id = $1
	`, rating.GraduateID, newStars, newCount); err != nil {
		return fmt.Errorf("rating repository: update graduate rating %w", err)
	}

	return tx.Commit()
}

// Recompute пересчитывает рейтинг исполнителя с нуля по таблице оценок и
// перезаписывает среднее и количество. Путь сверки: основной путь записи —
// инкрементальный Create.
func (r *RatingRepository) Recompute(ctx context.Context, graduateID uuid.UUID) (float64, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("rating repository: begin tx %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		SELECT 1 FROM graduates WHERE user_id = $1 FOR UPDATE
	`, graduateID); err != nil {
		return 0, 0, fmt.Errorf("rating repository: lock graduate %w", err)
	}

	var avg float64
	var count int
	err = tx.QueryRowxContext(ctx, `
		SELECT COALESCE(AVG(value), 0), COUNT(*) FROM ratings WHERE graduate_id = $1
	`, graduateID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("rating repository: aggregate ratings %w", err)
	}

	stars := models.Round1(avg)
	result, err := tx.ExecContext(ctx, `
		UPDATE graduates SET stars = $2, rating_count = $3, updated_at = NOW() WHERE user_id = $1
	`, graduateID, stars, count)
	if err != nil {
		return 0, 0, fmt.Errorf("rating repository: overwrite graduate rating %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("rating repository: recompute rows affected %w", err)
	}
	if affected == 0 {
		return 0, 0, ErrGraduateNotFound
	}

	return stars, count, tx.Commit()
}

// GetByBookingAndRequester возвращает оценку по заявке от конкретного заказчика.
func (r *RatingRepository) GetByBookingAndRequester(ctx context.Context, bookingID, requesterID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	query := `
		SELECT id, booking_id, requester_id, graduate_id, value, comment, created_at
		FROM ratings
		WHERE booking_id = $1 AND requester_id = $2
	`
	if err := r.db.GetContext(ctx, &rating, query, bookingID, requesterID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("rating repository: get by booking and requester %w", err)
	}
	return &rating, nil
}

// ListByGraduate возвращает оценки исполнителя, новые первыми.
func (r *RatingRepository) ListByGraduate(ctx context.Context, graduateID uuid.UUID, limit, offset int) ([]models.Rating, error) {
	var ratings []models.Rating
	query := `
		SELECT id, booking_id, requester_id, graduate_id, value, comment, created_at
		FROM ratings
		WHERE graduate_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &ratings, query, graduateID, limit, offset); err != nil {
		return nil, fmt.Errorf("rating repository: list by graduate %w", err)
	}
	return ratings, nil
}
