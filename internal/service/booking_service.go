package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gradlinkph/gradlink-backend/internal/logger"
	"github.com/gradlinkph/gradlink-backend/internal/models"
	"github.com/gradlinkph/gradlink-backend/internal/pkg/apperror"
	"github.com/gradlinkph/gradlink-backend/internal/repository"
	"github.com/gradlinkph/gradlink-backend/internal/validation"
)

// BookingRepo описывает зависимости BookingService от слоя хранилища.
// Все переходы статуса в хранилище выполняются одним guarded UPDATE;
// ErrStaleTransition означает, что предусловие перестало выполняться
// между чтением и записью.
type BookingRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	Create(ctx context.Context, booking *models.Booking) error
	Accept(ctx context.Context, id, graduateID uuid.UUID) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.BookingStatus) (*models.Booking, error)
	WorkerComplete(ctx context.Context, id uuid.UUID, amount *float64) (*models.Booking, error)
	ConfirmPayment(ctx context.Context, id uuid.UUID, amount float64) (*models.Booking, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]models.Booking, error)
	ListByGraduate(ctx context.Context, graduateID uuid.UUID, limit, offset int) ([]models.Booking, error)
}

// CategoryRepoForBooking проверяет существование категории.
type CategoryRepoForBooking interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// UserDirectory отдаёт аккаунт заказчика: заявки и пробный матчинг
// доступны только подтверждённым аккаунтам.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// GraduateRepoForBooking — данные исполнителя для адресных заявок.
type GraduateRepoForBooking interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Graduate, error)
	HasCategory(ctx context.Context, userID, categoryID uuid.UUID) (bool, error)
}

// AvailabilityChecker — рекомендательные проверки занятости сторон.
type AvailabilityChecker interface {
	CheckGraduateFree(ctx context.Context, graduateID uuid.UUID) error
	CheckRequesterFree(ctx context.Context, requesterID uuid.UUID) error
}

// CandidateFinder ищет кандидатов для рассылки срочной заявки.
type CandidateFinder interface {
	FindCandidates(ctx context.Context, categoryID uuid.UUID, lat, lon, radiusKm float64) ([]models.NearbyGraduate, error)
}

// BookingNotifier рассылает события жизненного цикла заявки.
type BookingNotifier interface {
	NotifyUser(userID uuid.UUID, event string, booking *models.Booking)
}

// События жизненного цикла для уведомлений.
const (
	EventBookingCreated          = "booking.created"
	EventBookingAccepted         = "booking.accepted"
	EventBookingRejected         = "booking.rejected"
	EventBookingCancelled        = "booking.cancelled"
	EventBookingStarted          = "booking.started"
	EventBookingWorkerCompleted  = "booking.worker_completed"
	EventBookingReopened         = "booking.reopened"
	EventBookingCompleted        = "booking.completed"
	EventBookingPaymentConfirmed = "booking.payment_confirmed"
)

// BookingService управляет жизненным циклом заявок.
type BookingService struct {
	repo            BookingRepo
	categories      CategoryRepoForBooking
	graduates       GraduateRepoForBooking
	users           UserDirectory
	guard           AvailabilityChecker
	matcher         CandidateFinder
	notifier        BookingNotifier
	defaultRadiusKm float64
}

// NewBookingService создаёт сервис заявок.
func NewBookingService(
	repo BookingRepo,
	categories CategoryRepoForBooking,
	graduates GraduateRepoForBooking,
	users UserDirectory,
	guard AvailabilityChecker,
	matcher CandidateFinder,
	notifier BookingNotifier,
	defaultRadiusKm float64,
) *BookingService {
	return &BookingService{
		repo:            repo,
		categories:      categories,
		graduates:       graduates,
		users:           users,
		guard:           guard,
		matcher:         matcher,
		notifier:        notifier,
		defaultRadiusKm: defaultRadiusKm,
	}
}

// CreateUrgentInput — данные срочной заявки.
type CreateUrgentInput struct {
	CategoryID    uuid.UUID
	PaymentMethod string
	Latitude      float64
	Longitude     float64
	RadiusKm      *float64
	JobDetails    string
}

// CreateCategoryInput — данные адресной заявки конкретному исполнителю.
type CreateCategoryInput struct {
	CategoryID    uuid.UUID
	GraduateID    uuid.UUID
	PaymentMethod string
	JobDetails    string
}

// CreateUrgentBooking создаёт срочную заявку и рассылает её доступным
// исполнителям категории в радиусе. Если кандидатов нет, заявка не создаётся.
func (s *BookingService) CreateUrgentBooking(ctx context.Context, requesterID uuid.UUID, in CreateUrgentInput) (*models.Booking, error) {
	if err := requireVerifiedRequester(ctx, s.users, requesterID); err != nil {
		return nil, err
	}
	if err := s.validateCommon(ctx, in.CategoryID, in.PaymentMethod, in.JobDetails); err != nil {
		return nil, err
	}
	if err := validation.ValidateCoordinates(in.Latitude, in.Longitude); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	radius := s.defaultRadiusKm
	if in.RadiusKm != nil {
		radius = *in.RadiusKm
	}
	if err := validation.ValidateRadiusKm(radius); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	if err := s.guard.CheckRequesterFree(ctx, requesterID); err != nil {
		return nil, err
	}

	candidates, err := s.matcher.FindCandidates(ctx, in.CategoryID, in.Latitude, in.Longitude, radius)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, apperror.New(apperror.ErrCodeNotFound, "рядом нет доступных исполнителей")
	}

	booking := &models.Booking{
		RequesterID:   requesterID,
		CategoryID:    in.CategoryID,
		Type:          models.BookingTypeUrgent,
		PaymentMethod: in.PaymentMethod,
		Latitude:      &in.Latitude,
		Longitude:     &in.Longitude,
		RadiusKm:      &radius,
		JobDetails:    in.JobDetails,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrActiveRequestExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "у вас уже есть активная заявка")
		}
		return nil, err
	}

	for _, candidate := range candidates {
		s.notify(candidate.UserID, EventBookingCreated, booking)
	}

	return booking, nil
}

// CreateCategoryBooking создаёт адресную заявку выбранному исполнителю.
func (s *BookingService) CreateCategoryBooking(ctx context.Context, requesterID uuid.UUID, in CreateCategoryInput) (*models.Booking, error) {
	if err := requireVerifiedRequester(ctx, s.users, requesterID); err != nil {
		return nil, err
	}
	if err := s.validateCommon(ctx, in.CategoryID, in.PaymentMethod, in.JobDetails); err != nil {
		return nil, err
	}

	if _, err := s.graduates.GetByUserID(ctx, in.GraduateID); err != nil {
		if errors.Is(err, repository.ErrGraduateNotFound) {
			return nil, apperror.ErrGraduateNotFound
		}
		return nil, err
	}

	works, err := s.graduates.HasCategory(ctx, in.GraduateID, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if !works {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "исполнитель не работает в этой категории")
	}

	if err := s.guard.CheckRequesterFree(ctx, requesterID); err != nil {
		return nil, err
	}
	if err := s.guard.CheckGraduateFree(ctx, in.GraduateID); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		RequesterID:   requesterID,
		GraduateID:    &in.GraduateID,
		CategoryID:    in.CategoryID,
		Type:          models.BookingTypeCategory,
		PaymentMethod: in.PaymentMethod,
		JobDetails:    in.JobDetails,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrActiveRequestExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "у вас уже есть активная заявка")
		}
		return nil, err
	}

	s.notify(in.GraduateID, EventBookingCreated, booking)

	return booking, nil
}

// Accept закрепляет заявку за исполнителем. Для срочной заявки из двух
// конкурентных принятий выигрывает ровно одно: проигравшее получает
// CONFLICT после перечитывания заявки.
func (s *BookingService) Accept(ctx context.Context, bookingID, graduateID uuid.UUID) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	policy := models.ClaimPolicyFor(booking.Type)
	if err := policy.Accept(booking, graduateID); err != nil {
		return nil, err
	}

	if err := s.guard.CheckGraduateFree(ctx, graduateID); err != nil {
		return nil, err
	}

	accepted, err := s.repo.Accept(ctx, bookingID, graduateID)
	if err != nil {
		if errors.Is(err, repository.ErrStaleTransition) {
			return nil, s.explainAcceptFailure(ctx, bookingID, graduateID)
		}
		return nil, err
	}

	s.notify(accepted.RequesterID, EventBookingAccepted, accepted)

	return accepted, nil
}

// Reject отклоняет ожидающую заявку со стороны исполнителя.
func (s *BookingService) Reject(ctx context.Context, bookingID, graduateID uuid.UUID) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	policy := models.ClaimPolicyFor(booking.Type)
	if err := policy.Reject(booking, graduateID); err != nil {
		return nil, err
	}

	rejected, err := s.repo.UpdateStatus(ctx, bookingID, models.BookingStatusPending, models.BookingStatusRejected)
	if err != nil {
		if errors.Is(err, repository.ErrStaleTransition) {
			return nil, s.explainStale(ctx, bookingID, models.BookingStatusPending)
		}
		return nil, err
	}

	s.notify(rejected.RequesterID, EventBookingRejected, rejected)

	return rejected, nil
}

// Cancel отменяет заявку заказчиком. Отмена возможна только из ожидания:
// после принятия стороны связаны и заявка доводится до конца.
func (s *BookingService) Cancel(ctx context.Context, bookingID, requesterID uuid.UUID) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.RequesterID != requesterID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "заявка принадлежит другому заказчику")
	}
	if booking.Status != models.BookingStatusPending {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "отменить можно только заявку в ожидании")
	}

	cancelled, err := s.repo.UpdateStatus(ctx, bookingID, models.BookingStatusPending, models.BookingStatusCancelled)
	if err != nil {
		if errors.Is(err, repository.ErrStaleTransition) {
			return nil, s.explainStale(ctx, bookingID, models.BookingStatusPending)
		}
		return nil, err
	}

	if cancelled.GraduateID != nil {
		s.notify(*cancelled.GraduateID, EventBookingCancelled, cancelled)
	}

	return cancelled, nil
}

// Start переводит принятую заявку в работу. Действует заказчик.
func (s *BookingService) Start(ctx context.Context, bookingID, requesterID uuid.UUID) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.RequesterID != requesterID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "заявка принадлежит другому заказчику")
	}
	if booking.Status != models.BookingStatusAccepted {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "начать можно только принятую заявку")
	}

	started, err := s.repo.UpdateStatus(ctx, bookingID, models.BookingStatusAccepted, models.BookingStatusInProgress)
	if err != nil {
		if errors.Is(err, repository.ErrStaleTransition) {
			return nil, s.explainStale(ctx, bookingID, models.BookingStatusAccepted)
		}
		return nil, err
	}

	if started.GraduateID != nil {
		s.notify(*started.GraduateID, EventBookingStarted, started)
	}

	return started, nil
}

// CompleteByGraduate — исполнитель отмечает работу выполненной и может
// указать итоговую сумму. Заявка ждёт подтверждения заказчика.
func (s *BookingService) CompleteByGraduate(ctx context.Context, bookingID, graduateID uuid.UUID, amount *float64) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.requireAssignedGraduate(booking, graduateID); err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusInProgress {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "завершить можно только заявку в работе")
	}
	if amount != nil {
		if err := validation.ValidateAmount(*amount); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
	}

	completed, err := s.repo.WorkerComplete(ctx, bookingID, amount)
	if err != nil {
		if errors.Is(err, repository.ErrStaleTransition) {
			return nil, s.explainStale(ctx, bookingID, models.BookingStatusInProgress)
		}
		return nil, err
	}

	s.notify(completed.RequesterID, EventBookingWorkerCompleted, completed)

	return completed, nil
}

// Reopen возвращает заявку в работу: заказчик не согласен, что работа
// выполнена.
func (s *BookingService) Reopen(ctx context.Context, bookingID, requesterID uuid.UUID) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.RequesterID != requesterID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "заявка принадлежит другому заказчику")
	}
	if booking.Status != models.BookingStatusWorkerCompleted {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "вернуть в работу можно только заявку, завершённую исполнителем")
	}

	reopened, err := s.repo.UpdateStatus(ctx, bookingID, models.BookingStatusWorkerCompleted, models.BookingStatusInProgress)
	if err != nil {
		if errors.Is(err, repository.ErrStaleTransition) {
			return nil, s.explainStale(ctx, bookingID, models.BookingStatusWorkerCompleted)
		}
		return nil, err
	}

	if reopened.GraduateID != nil {
		s.notify(*reopened.GraduateID, EventBookingReopened, reopened)
	}

	return reopened, nil
}

// Complete — заказчик подтверждает выполнение. Заявка становится завершённой
// и исполнитель снова свободен для новых заявок.
func (s *BookingService) Complete(ctx context.Context, bookingID, requesterID uuid.UUID) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.RequesterID != requesterID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "заявка принадлежит другому заказчику")
	}
	if booking.Status != models.BookingStatusWorkerCompleted {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "подтвердить можно только заявку, завершённую исполнителем")
	}

	completed, err := s.repo.UpdateStatus(ctx, bookingID, models.BookingStatusWorkerCompleted, models.BookingStatusCompleted)
	if err != nil {
		if errors.Is(err, repository.ErrStaleTransition) {
			return nil, s.explainStale(ctx, bookingID, models.BookingStatusWorkerCompleted)
		}
		return nil, err
	}

	if completed.GraduateID != nil {
		s.notify(*completed.GraduateID, EventBookingCompleted, completed)
	}

	return completed, nil
}

// ConfirmPayment подтверждает оплату по завершённой заявке и фиксирует сумму.
// Подтверждает назначенный исполнитель.
func (s *BookingService) ConfirmPayment(ctx context.Context, bookingID, graduateID uuid.UUID, amount float64) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.requireAssignedGraduate(booking, graduateID); err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "оплату можно подтвердить только по завершённой заявке")
	}
	if booking.PaymentStatus == models.PaymentConfirmed {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "оплата уже подтверждена")
	}
	if amount <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "сумма оплаты должна быть больше нуля")
	}
	if err := validation.ValidateAmount(amount); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	confirmed, err := s.repo.ConfirmPayment(ctx, bookingID, amount)
	if err != nil {
		if errors.Is(err, repository.ErrStaleTransition) {
			return nil, apperror.New(apperror.ErrCodeInvalidState, "оплата уже подтверждена")
		}
		return nil, err
	}

	s.notify(confirmed.RequesterID, EventBookingPaymentConfirmed, confirmed)

	return confirmed, nil
}

// GetBooking возвращает заявку участнику: заказчику или назначенному
// исполнителю.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.RequesterID != actorID &&
		(booking.GraduateID == nil || *booking.GraduateID != actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "вы не участник этой заявки")
	}

	return booking, nil
}

// ListByRequester возвращает заявки заказчика.
func (s *BookingService) ListByRequester(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]models.Booking, error) {
	limit = normalizeLimit(limit)
	return s.repo.ListByRequester(ctx, requesterID, limit, offset)
}

// ListByGraduate возвращает заявки исполнителя.
func (s *BookingService) ListByGraduate(ctx context.Context, graduateID uuid.UUID, limit, offset int) ([]models.Booking, error) {
	limit = normalizeLimit(limit)
	return s.repo.ListByGraduate(ctx, graduateID, limit, offset)
}

// validateCommon проверяет поля, общие для обоих типов заявок.
func (s *BookingService) validateCommon(ctx context.Context, categoryID uuid.UUID, paymentMethod, jobDetails string) error {
	if _, ok := models.ValidPaymentMethods[paymentMethod]; !ok {
		return apperror.New(apperror.ErrCodeValidation, "недопустимый способ оплаты")
	}
	if err := validation.ValidateJobDetails(jobDetails); err != nil {
		return apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return apperror.ErrCategoryNotFound
		}
		return err
	}
	return nil
}

// getBooking загружает заявку и переводит ошибку хранилища в доменную.
func (s *BookingService) getBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

// requireVerifiedRequester проверяет, что заказчик существует и его аккаунт
// подтверждён. Общая проверка создания заявок и пробного матчинга.
func requireVerifiedRequester(ctx context.Context, users UserDirectory, requesterID uuid.UUID) error {
	user, err := users.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return err
	}
	if !user.IsVerified {
		return apperror.New(apperror.ErrCodeForbidden, "создавать заявки может только подтверждённый аккаунт")
	}
	return nil
}

// requireAssignedGraduate проверяет, что действует назначенный исполнитель.
func (s *BookingService) requireAssignedGraduate(booking *models.Booking, graduateID uuid.UUID) error {
	if booking.GraduateID == nil || *booking.GraduateID != graduateID {
		return apperror.New(apperror.ErrCodeForbidden, "заявка закреплена за другим исполнителем")
	}
	return nil
}

// explainAcceptFailure перечитывает заявку после проигранного guarded UPDATE
// и называет нарушенное предусловие.
func (s *BookingService) explainAcceptFailure(ctx context.Context, bookingID, graduateID uuid.UUID) error {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	policy := models.ClaimPolicyFor(booking.Type)
	if err := policy.Accept(booking, graduateID); err != nil {
		return err
	}

	// Заявка всё ещё выглядит доступной: значит, изменилось состояние
	// самого исполнителя.
	if err := s.guard.CheckGraduateFree(ctx, graduateID); err != nil {
		return err
	}

	return apperror.New(apperror.ErrCodeConflict, "заявку уже принял другой исполнитель")
}

// explainStale перечитывает заявку после проигранного guarded UPDATE
// обычного перехода.
func (s *BookingService) explainStale(ctx context.Context, bookingID uuid.UUID, expected models.BookingStatus) error {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status != expected {
		return apperror.New(apperror.ErrCodeInvalidState, "статус заявки уже изменился")
	}
	return apperror.New(apperror.ErrCodeConflict, "заявку изменил конкурентный запрос, повторите попытку")
}

// notify шлёт событие, если уведомитель сконфигурирован.
func (s *BookingService) notify(userID uuid.UUID, event string, booking *models.Booking) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyUser(userID, event, booking)
	if logger.Log != nil {
		logger.Log.WithFields(map[string]interface{}{
			"user_id":    userID,
			"event":      event,
			"booking_id": booking.ID,
		}).Debug("booking service: событие отправлено")
	}
}

// normalizeLimit приводит лимит страницы к допустимому диапазону.
func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
