package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gradlinkph/gradlink-backend/internal/models"
)

// Ошибки уровня репозитория.
var (
	ErrBookingNotFound = errors.New("booking not found")
	// ErrStaleTransition возвращается, когда guarded UPDATE не нашёл строку:
	// заявка ушла из ожидаемого статуса (или её перехватил другой исполнитель)
	// между чтением и записью. Вызывающий код перечитывает заявку, чтобы
	// назвать нарушенное предусловие.
	ErrStaleTransition = errors.New("booking transition precondition no longer holds")
	// ErrActiveRequestExists — у заказчика уже есть активная заявка.
	ErrActiveRequestExists = errors.New("requester already has an active booking")
)

// BookingRepository отвечает за заявки и атомарность переходов их статусов.
// Каждый переход — один guarded UPDATE: проверка предусловий и запись не
// разделены окном, в которое мог бы вклиниться конкурентный переход.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository создаёт новый экземпляр.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	b.id, b.requester_id, b.graduate_id, b.category_id, b.type, b.status,
	b.payment_method, b.payment_status, b.amount,
	b.latitude, b.longitude, b.radius_km, b.job_details,
	b.created_at, b.updated_at
`

// GetByID возвращает заявку по идентификатору вместе с именем категории.
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	query := `
		SELECT ` + bookingColumns + `, c.name AS category_name
		FROM bookings b
		JOIN categories c ON c.id = b.category_id
		WHERE b.id = $1
	`
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("booking repository: get by id %w", err)
	}
	return &booking, nil
}

// Create сохраняет новую заявку в статусе pending.
// Инвариант "одна активная заявка на заказчика" обеспечивается частичным
// уникальным индексом: конкурентная вставка завершится unique violation.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (requester_id, graduate_id, category_id, type, status,
		                      payment_method, payment_status,
		                      latitude, longitude, radius_km, job_details)
		VALUES ($1, $2, $3, $4, 'pending', $5, 'pending', $6, $7, $8, $9)
		RETURNING id, status, payment_status, created_at, updated_at
	`
	err := r.db.QueryRowxContext(
		ctx,
		query,
		booking.RequesterID,
		booking.GraduateID,
		booking.CategoryID,
		booking.Type,
		booking.PaymentMethod,
		booking.Latitude,
		booking.Longitude,
		booking.RadiusKm,
		booking.JobDetails,
	).Scan(&booking.ID, &booking.Status, &booking.PaymentStatus, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrActiveRequestExists
		}
		return fmt.Errorf("booking repository: insert booking %w", err)
	}
	return nil
}

// Accept атомарно закрепляет заявку за исполнителем.
// Условия в WHERE повторяют предусловия accept: заявка в ожидании, для срочной
// исполнитель ещё не назначен (первый принявший выигрывает), исполнитель
// доступен и не занят другой активной заявкой. Из двух конкурентных accept
// ровно один обновит строку; второй получит ErrStaleTransition.
func (r *BookingRepository) Accept(ctx context.Context, id, graduateID uuid.UUID) (*models.Booking, error) {
	query := `
		UPDATE bookings b
		SET graduate_id = $2, status = 'accepted', updated_at = NOW()
		WHERE b.id = $1
		  AND b.status = 'pending'
		  AND (b.graduate_id IS NULL OR b.graduate_id = $2)
		  AND EXISTS (
		      SELECT 1 FROM graduates g
		      WHERE g.user_id = $2 AND g.is_available
		  )
		  AND NOT EXISTS (
		      SELECT 1 FROM bookings act
		      WHERE act.graduate_id = $2 AND act.status IN ('accepted', 'in_progress')
		  )
		RETURNING ` + bookingColumns

	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, query, id, graduateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStaleTransition
		}
		if isUniqueViolation(err) {
			// Конкурентный accept того же исполнителя по другой заявке
			// упёрся в частичный индекс занятости.
			return nil, ErrStaleTransition
		}
		return nil, fmt.Errorf("booking repository: accept %w", err)
	}
	return &booking, nil
}

// UpdateStatus выполняет переход from -> to одним guarded UPDATE.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.BookingStatus) (*models.Booking, error) {
	query := `
		UPDATE bookings b
		SET status = $3, updated_at = NOW()
		WHERE b.id = $1 AND b.status = $2
		RETURNING ` + bookingColumns

	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, query, id, from, to)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStaleTransition
		}
		return nil, fmt.Errorf("booking repository: update status %w", err)
	}
	return &booking, nil
}

// WorkerComplete переводит заявку in_progress -> worker_completed.
// Сумма на этом шаге опциональна: окончательный расчёт происходит при
// подтверждении оплаты.
func (r *BookingRepository) WorkerComplete(ctx context.Context, id uuid.UUID, amount *float64) (*models.Booking, error) {
	query := `
		UPDATE bookings b
		SET status = 'worker_completed', amount = COALESCE($2, b.amount), updated_at = NOW()
		WHERE b.id = $1 AND b.status = 'in_progress'
		RETURNING ` + bookingColumns

	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, query, id, amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStaleTransition
		}
		return nil, fmt.Errorf("booking repository: worker complete %w", err)
	}
	return &booking, nil
}

// ConfirmPayment подтверждает оплату завершённой заявки и фиксирует сумму.
func (r *BookingRepository) ConfirmPayment(ctx context.Context, id uuid.UUID, amount float64) (*models.Booking, error) {
	query := `
		UPDATE bookings b
		SET payment_status = 'confirmed', amount = $2, updated_at = NOW()
		WHERE b.id = $1 AND b.status = 'completed' AND b.payment_status = 'pending'
		RETURNING ` + bookingColumns

	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, query, id, amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStaleTransition
		}
		return nil, fmt.Errorf("booking repository: confirm payment %w", err)
	}
	return &booking, nil
}

// ListByRequester возвращает заявки заказчика, новые первыми.
func (r *BookingRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]models.Booking, error) {
	var bookings []models.Booking
	query := `
		SELECT ` + bookingColumns + `, c.name AS category_name
		FROM bookings b
		JOIN categories c ON c.id = b.category_id
		WHERE b.requester_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &bookings, query, requesterID, limit, offset); err != nil {
		return nil, fmt.Errorf("booking repository: list by requester %w", err)
	}
	return bookings, nil
}

// ListByGraduate возвращает заявки, закреплённые за исполнителем.
func (r *BookingRepository) ListByGraduate(ctx context.Context, graduateID uuid.UUID, limit, offset int) ([]models.Booking, error) {
	var bookings []models.Booking
	query := `
		SELECT ` + bookingColumns + `, c.name AS category_name
		FROM bookings b
		JOIN categories c ON c.id = b.category_id
		WHERE b.graduate_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &bookings, query, graduateID, limit, offset); err != nil {
		return nil, fmt.Errorf("booking repository: list by graduate %w", err)
	}
	return bookings, nil
}

// ListOpenUrgentByCategory возвращает непринятые срочные заявки категории.
func (r *BookingRepository) ListOpenUrgentByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Booking, error) {
	var bookings []models.Booking
	query := `
		SELECT ` + bookingColumns + `, c.name AS category_name
		FROM bookings b
		JOIN categories c ON c.id = b.category_id
		WHERE b.category_id = $1 AND b.type = 'urgent' AND b.status = 'pending' AND b.graduate_id IS NULL
		ORDER BY b.created_at DESC
	`
	if err := r.db.SelectContext(ctx, &bookings, query, categoryID); err != nil {
		return nil, fmt.Errorf("booking repository: list open urgent %w", err)
	}
	return bookings, nil
}

// CountActiveByGraduate считает активные заявки исполнителя (accepted/in_progress).
func (r *BookingRepository) CountActiveByGraduate(ctx context.Context, graduateID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM bookings WHERE graduate_id = $1 AND status IN ('accepted', 'in_progress')`
	if err := r.db.GetContext(ctx, &count, query, graduateID); err != nil {
		return 0, fmt.Errorf("booking repository: count active by graduate %w", err)
	}
	return count, nil
}

// CountActiveByRequester считает активные заявки заказчика.
func (r *BookingRepository) CountActiveByRequester(ctx context.Context, requesterID uuid.UUID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM bookings
		WHERE requester_id = $1 AND status IN ('pending', 'accepted', 'in_progress', 'worker_completed')
	`
	if err := r.db.GetContext(ctx, &count, query, requesterID); err != nil {
		return 0, fmt.Errorf("booking repository: count active by requester %w", err)
	}
	return count, nil
}

// isUniqueViolation распознаёт нарушение уникального индекса PostgreSQL.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
