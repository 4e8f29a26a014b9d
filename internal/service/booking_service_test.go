package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/gradlinkph/gradlink-backend/internal/models"
	"github.com/gradlinkph/gradlink-backend/internal/pkg/apperror"
	"github.com/gradlinkph/gradlink-backend/internal/repository"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	if args.Error(0) == nil {
		booking.ID = uuid.New()
		booking.Status = models.BookingStatusPending
		booking.PaymentStatus = models.PaymentPending
	}
	return args.Error(0)
}

func (m *mockBookingRepo) Accept(ctx context.Context, id, graduateID uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, id, graduateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.BookingStatus) (*models.Booking, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingRepo) WorkerComplete(ctx context.Context, id uuid.UUID, amount *float64) (*models.Booking, error) {
	args := m.Called(ctx, id, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingRepo) ConfirmPayment(ctx context.Context, id uuid.UUID, amount float64) (*models.Booking, error) {
	args := m.Called(ctx, id, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingRepo) ListByRequester(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]models.Booking, error) {
	args := m.Called(ctx, requesterID, limit, offset)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockBookingRepo) ListByGraduate(ctx context.Context, graduateID uuid.UUID, limit, offset int) ([]models.Booking, error) {
	args := m.Called(ctx, graduateID, limit, offset)
	return args.Get(0).([]models.Booking), args.Error(1)
}

type mockCategoryRepo struct {
	mock.Mock
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

type mockGraduateRepoForBooking struct {
	mock.Mock
}

func (m *mockGraduateRepoForBooking) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Graduate, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Graduate), args.Error(1)
}

func (m *mockGraduateRepoForBooking) HasCategory(ctx context.Context, userID, categoryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, categoryID)
	return args.Bool(0), args.Error(1)
}

type mockUserDirectory struct {
	mock.Mock
}

func (m *mockUserDirectory) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockAvailabilityChecker struct {
	mock.Mock
}

func (m *mockAvailabilityChecker) CheckGraduateFree(ctx context.Context, graduateID uuid.UUID) error {
	args := m.Called(ctx, graduateID)
	return args.Error(0)
}

func (m *mockAvailabilityChecker) CheckRequesterFree(ctx context.Context, requesterID uuid.UUID) error {
	args := m.Called(ctx, requesterID)
	return args.Error(0)
}

type mockCandidateFinder struct {
	mock.Mock
}

func (m *mockCandidateFinder) FindCandidates(ctx context.Context, categoryID uuid.UUID, lat, lon, radiusKm float64) ([]models.NearbyGraduate, error) {
	args := m.Called(ctx, categoryID, lat, lon, radiusKm)
	return args.Get(0).([]models.NearbyGraduate), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyUser(userID uuid.UUID, event string, booking *models.Booking) {
	m.Called(userID, event, booking)
}

type bookingFixture struct {
	repo       *mockBookingRepo
	categories *mockCategoryRepo
	graduates  *mockGraduateRepoForBooking
	users      *mockUserDirectory
	guard      *mockAvailabilityChecker
	matcher    *mockCandidateFinder
	notifier   *mockNotifier
	svc        *BookingService
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		repo:       new(mockBookingRepo),
		categories: new(mockCategoryRepo),
		graduates:  new(mockGraduateRepoForBooking),
		users:      new(mockUserDirectory),
		guard:      new(mockAvailabilityChecker),
		matcher:    new(mockCandidateFinder),
		notifier:   new(mockNotifier),
	}
	f.svc = NewBookingService(f.repo, f.categories, f.graduates, f.users, f.guard, f.matcher, f.notifier, 10)
	return f
}

// verifiedRequester настраивает справочник пользователей на подтверждённого
// заказчика.
func (f *bookingFixture) verifiedRequester(id uuid.UUID) {
	f.users.On("GetByID", mock.Anything, id).Return(&models.User{
		ID:         id,
		Role:       models.RoleClient,
		IsVerified: true,
		IsActive:   true,
	}, nil)
}

func TestBookingService_CreateUrgentBooking_Success(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	requesterID := uuid.New()
	categoryID := uuid.New()
	candidateID := uuid.New()

	f.verifiedRequester(requesterID)
	f.categories.On("GetByID", ctx, categoryID).Return(&models.Category{ID: categoryID, Name: "plumbing"}, nil)
	f.guard.On("CheckRequesterFree", ctx, requesterID).Return(nil)
	f.matcher.On("FindCandidates", ctx, categoryID, 14.6, 120.98, 10.0).
		Return([]models.NearbyGraduate{{UserID: candidateID, DistanceKm: 0.5}}, nil)
	f.repo.On("Create", ctx, mock.AnythingOfType("*models.Booking")).Return(nil)
	f.notifier.On("NotifyUser", candidateID, EventBookingCreated, mock.AnythingOfType("*models.Booking")).Return()

	booking, err := f.svc.CreateUrgentBooking(ctx, requesterID, CreateUrgentInput{
		CategoryID:    categoryID,
		PaymentMethod: models.PaymentMethodCash,
		Latitude:      14.6,
		Longitude:     120.98,
		JobDetails:    "прорвало трубу под раковиной",
	})

	assert.NoError(t, err)
	assert.NotNil(t, booking)
	assert.Equal(t, models.BookingTypeUrgent, booking.Type)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Nil(t, booking.GraduateID)
	f.notifier.AssertNumberOfCalls(t, "NotifyUser", 1)
}

func TestBookingService_CreateUrgentBooking_NoCandidates(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	requesterID := uuid.New()
	categoryID := uuid.New()

	f.verifiedRequester(requesterID)
	f.categories.On("GetByID", ctx, categoryID).Return(&models.Category{ID: categoryID}, nil)
	f.guard.On("CheckRequesterFree", ctx, requesterID).Return(nil)
	f.matcher.On("FindCandidates", ctx, categoryID, 14.6, 120.98, 10.0).
		Return([]models.NearbyGraduate{}, nil)

	_, err := f.svc.CreateUrgentBooking(ctx, requesterID, CreateUrgentInput{
		CategoryID:    categoryID,
		PaymentMethod: models.PaymentMethodGCash,
		Latitude:      14.6,
		Longitude:     120.98,
		JobDetails:    "нужен сантехник срочно",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	f.repo.AssertNotCalled(t, "Create")
}

func TestBookingService_CreateUrgentBooking_InvalidCoordinates(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	requesterID := uuid.New()
	categoryID := uuid.New()
	f.verifiedRequester(requesterID)
	f.categories.On("GetByID", ctx, categoryID).Return(&models.Category{ID: categoryID}, nil)

	_, err := f.svc.CreateUrgentBooking(ctx, requesterID, CreateUrgentInput{
		CategoryID:    categoryID,
		PaymentMethod: models.PaymentMethodCash,
		Latitude:      91,
		Longitude:     120.98,
		JobDetails:    "нужен сантехник срочно",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestBookingService_CreateUrgentBooking_RequesterBusy(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	requesterID := uuid.New()
	categoryID := uuid.New()

	f.verifiedRequester(requesterID)
	f.categories.On("GetByID", ctx, categoryID).Return(&models.Category{ID: categoryID}, nil)
	f.guard.On("CheckRequesterFree", ctx, requesterID).
		Return(apperror.New(apperror.ErrCodeConflict, "у вас уже есть активная заявка"))

	_, err := f.svc.CreateUrgentBooking(ctx, requesterID, CreateUrgentInput{
		CategoryID:    categoryID,
		PaymentMethod: models.PaymentMethodCash,
		Latitude:      14.6,
		Longitude:     120.98,
		JobDetails:    "нужен сантехник срочно",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	f.matcher.AssertNotCalled(t, "FindCandidates")
}

func TestBookingService_CreateCategoryBooking_Success(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	requesterID := uuid.New()
	graduateID := uuid.New()
	categoryID := uuid.New()

	f.verifiedRequester(requesterID)
	f.categories.On("GetByID", ctx, categoryID).Return(&models.Category{ID: categoryID}, nil)
	f.graduates.On("GetByUserID", ctx, graduateID).Return(&models.Graduate{UserID: graduateID}, nil)
	f.graduates.On("HasCategory", ctx, graduateID, categoryID).Return(true, nil)
	f.guard.On("CheckRequesterFree", ctx, requesterID).Return(nil)
	f.guard.On("CheckGraduateFree", ctx, graduateID).Return(nil)
	f.repo.On("Create", ctx, mock.AnythingOfType("*models.Booking")).Return(nil)
	f.notifier.On("NotifyUser", graduateID, EventBookingCreated, mock.AnythingOfType("*models.Booking")).Return()

	booking, err := f.svc.CreateCategoryBooking(ctx, requesterID, CreateCategoryInput{
		CategoryID:    categoryID,
		GraduateID:    graduateID,
		PaymentMethod: models.PaymentMethodCard,
		JobDetails:    "сделать лендинг для кафе",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.BookingTypeCategory, booking.Type)
	assert.NotNil(t, booking.GraduateID)
	assert.Equal(t, graduateID, *booking.GraduateID)
}

func TestBookingService_CreateCategoryBooking_WrongCategory(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	requesterID := uuid.New()
	graduateID := uuid.New()
	categoryID := uuid.New()

	f.verifiedRequester(requesterID)
	f.categories.On("GetByID", ctx, categoryID).Return(&models.Category{ID: categoryID}, nil)
	f.graduates.On("GetByUserID", ctx, graduateID).Return(&models.Graduate{UserID: graduateID}, nil)
	f.graduates.On("HasCategory", ctx, graduateID, categoryID).Return(false, nil)

	_, err := f.svc.CreateCategoryBooking(ctx, requesterID, CreateCategoryInput{
		CategoryID:    categoryID,
		GraduateID:    graduateID,
		PaymentMethod: models.PaymentMethodCash,
		JobDetails:    "сделать лендинг для кафе",
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "не работает в этой категории")
}

func TestBookingService_CreateBooking_BadPaymentMethod(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	requesterID := uuid.New()
	f.verifiedRequester(requesterID)

	_, err := f.svc.CreateUrgentBooking(ctx, requesterID, CreateUrgentInput{
		CategoryID:    uuid.New(),
		PaymentMethod: "crypto",
		Latitude:      14.6,
		Longitude:     120.98,
		JobDetails:    "нужен сантехник срочно",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "способ оплаты")
}

func TestBookingService_CreateUrgentBooking_UnverifiedRequester(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	requesterID := uuid.New()
	f.users.On("GetByID", mock.Anything, requesterID).Return(&models.User{
		ID:         requesterID,
		Role:       models.RoleClient,
		IsVerified: false,
		IsActive:   true,
	}, nil)

	_, err := f.svc.CreateUrgentBooking(ctx, requesterID, CreateUrgentInput{
		CategoryID:    uuid.New(),
		PaymentMethod: models.PaymentMethodCash,
		Latitude:      14.6,
		Longitude:     120.98,
		JobDetails:    "нужен сантехник срочно",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	assert.Contains(t, err.Error(), "подтверждённый")
	f.matcher.AssertNotCalled(t, "FindCandidates")
	f.repo.AssertNotCalled(t, "Create")
}

func TestBookingService_CreateCategoryBooking_UnknownRequester(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	requesterID := uuid.New()
	f.users.On("GetByID", mock.Anything, requesterID).Return(nil, repository.ErrUserNotFound)

	_, err := f.svc.CreateCategoryBooking(ctx, requesterID, CreateCategoryInput{
		CategoryID:    uuid.New(),
		GraduateID:    uuid.New(),
		PaymentMethod: models.PaymentMethodCash,
		JobDetails:    "сделать лендинг для кафе",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	f.repo.AssertNotCalled(t, "Create")
}

func TestBookingService_Accept_Urgent_Success(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	bookingID := uuid.New()
	requesterID := uuid.New()
	graduateID := uuid.New()

	pending := &models.Booking{
		ID:          bookingID,
		RequesterID: requesterID,
		Type:        models.BookingTypeUrgent,
		Status:      models.BookingStatusPending,
	}
	accepted := &models.Booking{
		ID:          bookingID,
		RequesterID: requesterID,
		GraduateID:  &graduateID,
		Type:        models.BookingTypeUrgent,
		Status:      models.BookingStatusAccepted,
	}

	f.repo.On("GetByID", ctx, bookingID).Return(pending, nil)
	f.guard.On("CheckGraduateFree", ctx, graduateID).Return(nil)
	f.repo.On("Accept", ctx, bookingID, graduateID).Return(accepted, nil)
	f.notifier.On("NotifyUser", requesterID, EventBookingAccepted, accepted).Return()

	got, err := f.svc.Accept(ctx, bookingID, graduateID)

	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusAccepted, got.Status)
	assert.Equal(t, graduateID, *got.GraduateID)
}

func TestBookingService_Accept_Urgent_LostRace(t *testing.T) {
	// Два исполнителя приняли одну срочную заявку: guarded UPDATE проигравшего
	// не находит строку, перечитывание объясняет причину как конфликт.
	f := newBookingFixture()
	ctx := context.Background()

	bookingID := uuid.New()
	winnerID := uuid.New()
	loserID := uuid.New()

	pending := &models.Booking{
		ID:     bookingID,
		Type:   models.BookingTypeUrgent,
		Status: models.BookingStatusPending,
	}
	taken := &models.Booking{
		ID:         bookingID,
		GraduateID: &winnerID,
		Type:       models.BookingTypeUrgent,
		Status:     models.BookingStatusAccepted,
	}

	f.repo.On("GetByID", ctx, bookingID).Return(pending, nil).Once()
	f.guard.On("CheckGraduateFree", ctx, loserID).Return(nil)
	f.repo.On("Accept", ctx, bookingID, loserID).Return(nil, repository.ErrStaleTransition)
	f.repo.On("GetByID", ctx, bookingID).Return(taken, nil).Once()

	_, err := f.svc.Accept(ctx, bookingID, loserID)

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err) || apperror.IsConflict(err))
	f.notifier.AssertNotCalled(t, "NotifyUser")
}

func TestBookingService_Accept_Category_WrongGraduate(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	bookingID := uuid.New()
	assignedID := uuid.New()
	strangerID := uuid.New()

	booking := &models.Booking{
		ID:         bookingID,
		GraduateID: &assignedID,
		Type:       models.BookingTypeCategory,
		Status:     models.BookingStatusPending,
	}

	f.repo.On("GetByID", ctx, bookingID).Return(booking, nil)

	_, err := f.svc.Accept(ctx, bookingID, strangerID)

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	f.repo.AssertNotCalled(t, "Accept")
}

func TestBookingService_Accept_GraduateBusy(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	bookingID := uuid.New()
	graduateID := uuid.New()

	booking := &models.Booking{
		ID:     bookingID,
		Type:   models.BookingTypeUrgent,
		Status: models.BookingStatusPending,
	}

	f.repo.On("GetByID", ctx, bookingID).Return(booking, nil)
	f.guard.On("CheckGraduateFree", ctx, graduateID).
		Return(apperror.New(apperror.ErrCodeConflict, "исполнитель уже занят другой заявкой"))

	_, err := f.svc.Accept(ctx, bookingID, graduateID)

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	f.repo.AssertNotCalled(t, "Accept")
}

func TestBookingService_Cancel_Pending_Success(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	bookingID := uuid.New()
	requesterID := uuid.New()

	pending := &models.Booking{
		ID:          bookingID,
		RequesterID: requesterID,
		Type:        models.BookingTypeUrgent,
		Status:      models.BookingStatusPending,
	}
	cancelled := &models.Booking{
		ID:          bookingID,
		RequesterID: requesterID,
		Type:        models.BookingTypeUrgent,
		Status:      models.BookingStatusCancelled,
	}

	f.repo.On("GetByID", ctx, bookingID).Return(pending, nil)
	f.repo.On("UpdateStatus", ctx, bookingID, models.BookingStatusPending, models.BookingStatusCancelled).
		Return(cancelled, nil)

	got, err := f.svc.Cancel(ctx, bookingID, requesterID)

	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, got.Status)
}

func TestBookingService_Cancel_Accepted_Rejected(t *testing.T) {
	// После принятия отмена запрещена: заявка доводится до конца.
	f := newBookingFixture()
	ctx := context.Background()

	bookingID := uuid.New()
	requesterID := uuid.New()
	graduateID := uuid.New()

	accepted := &models.Booking{
		ID:          bookingID,
		RequesterID: requesterID,
		GraduateID:  &graduateID,
		Type:        models.BookingTypeUrgent,
		Status:      models.BookingStatusAccepted,
	}

	f.repo.On("GetByID", ctx, bookingID).Return(accepted, nil)

	_, err := f.svc.Cancel(ctx, bookingID, requesterID)

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
	f.repo.AssertNotCalled(t, "UpdateStatus")
}

func TestBookingService_Cancel_ForeignBooking(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	bookingID := uuid.New()
	booking := &models.Booking{
		ID:          bookingID,
		RequesterID: uuid.New(),
		Type:        models.BookingTypeUrgent,
		Status:      models.BookingStatusPending,
	}

	f.repo.On("GetByID", ctx, bookingID).Return(booking, nil)

	_, err := f.svc.Cancel(ctx, bookingID, uuid.New())

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestBookingService_FullLifecycle(t *testing.T) {
	// pending -> accepted -> in_progress -> worker_completed -> completed,
	// затем подтверждение оплаты.
	f := newBookingFixture()
	ctx := context.Background()

	bookingID := uuid.New()
	requesterID := uuid.New()
	graduateID := uuid.New()
	amount := 1500.0

	stage := func(status models.BookingStatus) *models.Booking {
		return &models.Booking{
			ID:          bookingID,
			RequesterID: requesterID,
			GraduateID:  &graduateID,
			Type:        models.BookingTypeCategory,
			Status:      status,
		}
	}

	f.notifier.On("NotifyUser", mock.Anything, mock.Anything, mock.Anything).Return()

	// Принятие.
	f.repo.On("GetByID", ctx, bookingID).Return(stage(models.BookingStatusPending), nil).Once()
	f.guard.On("CheckGraduateFree", ctx, graduateID).Return(nil)
	f.repo.On("Accept", ctx, bookingID, graduateID).Return(stage(models.BookingStatusAccepted), nil)

	accepted, err := f.svc.Accept(ctx, bookingID, graduateID)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusAccepted, accepted.Status)

	// Заказчик запускает работу.
	f.repo.On("GetByID", ctx, bookingID).Return(stage(models.BookingStatusAccepted), nil).Once()
	f.repo.On("UpdateStatus", ctx, bookingID, models.BookingStatusAccepted, models.BookingStatusInProgress).
		Return(stage(models.BookingStatusInProgress), nil)

	started, err := f.svc.Start(ctx, bookingID, requesterID)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusInProgress, started.Status)

	// Исполнитель завершил.
	f.repo.On("GetByID", ctx, bookingID).Return(stage(models.BookingStatusInProgress), nil).Once()
	f.repo.On("WorkerComplete", ctx, bookingID, &amount).
		Return(stage(models.BookingStatusWorkerCompleted), nil)

	workerDone, err := f.svc.CompleteByGraduate(ctx, bookingID, graduateID, &amount)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusWorkerCompleted, workerDone.Status)

	// Заказчик подтвердил.
	f.repo.On("GetByID", ctx, bookingID).Return(stage(models.BookingStatusWorkerCompleted), nil).Once()
	f.repo.On("UpdateStatus", ctx, bookingID, models.BookingStatusWorkerCompleted, models.BookingStatusCompleted).
		Return(stage(models.BookingStatusCompleted), nil)

	completed, err := f.svc.Complete(ctx, bookingID, requesterID)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, completed.Status)

	// Исполнитель подтвердил оплату.
	confirmed := stage(models.BookingStatusCompleted)
	confirmed.PaymentStatus = models.PaymentConfirmed
	confirmed.Amount = &amount

	f.repo.On("GetByID", ctx, bookingID).Return(stage(models.BookingStatusCompleted), nil).Once()
	f.repo.On("ConfirmPayment", ctx, bookingID, amount).Return(confirmed, nil)

	paid, err := f.svc.ConfirmPayment(ctx, bookingID, graduateID, amount)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentConfirmed, paid.PaymentStatus)
}

func TestBookingService_Reopen_Success(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	bookingID := uuid.New()
	requesterID := uuid.New()
	graduateID := uuid.New()

	workerDone := &models.Booking{
		ID:          bookingID,
		RequesterID: requesterID,
		GraduateID:  &graduateID,
		Type:        models.BookingTypeUrgent,
		Status:      models.BookingStatusWorkerCompleted,
	}
	reopened := &models.Booking{
		ID:          bookingID,
		RequesterID: requesterID,
		GraduateID:  &graduateID,
		Type:        models.BookingTypeUrgent,
		Status:      models.BookingStatusInProgress,
	}

	f.repo.On("GetByID", ctx, bookingID).Return(workerDone, nil)
	f.repo.On("UpdateStatus", ctx, bookingID, models.BookingStatusWorkerCompleted, models.BookingStatusInProgress).
		Return(reopened, nil)
	f.notifier.On("NotifyUser", graduateID, EventBookingReopened, reopened).Return()

	got, err := f.svc.Reopen(ctx, bookingID, requesterID)

	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusInProgress, got.Status)
}

func TestBookingService_Start_Success(t *testing.T) {
	// Работу запускает заказчик, исполнитель получает уведомление.
	f := newBookingFixture()
	ctx := context.Background()

	bookingID := uuid.New()
	requesterID := uuid.New()
	graduateID := uuid.New()

	accepted := &models.Booking{
		ID:          bookingID,
		RequesterID: requesterID,
		GraduateID:  &graduateID,
		Type:        models.BookingTypeUrgent,
		Status:      models.BookingStatusAccepted,
	}
	inProgress := &models.Booking{
		ID:          bookingID,
		RequesterID: requesterID,
		GraduateID:  &graduateID,
		Type:        models.BookingTypeUrgent,
		Status:      models.BookingStatusInProgress,
	}

	f.repo.On("GetByID", ctx, bookingID).Return(accepted, nil)
	f.repo.On("UpdateStatus", ctx, bookingID, models.BookingStatusAccepted, models.BookingStatusInProgress).
		Return(inProgress, nil)
	f.notifier.On("NotifyUser", graduateID, EventBookingStarted, inProgress).Return()

	got, err := f.svc.Start(ctx, bookingID, requesterID)

	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusInProgress, got.Status)
	f.notifier.AssertCalled(t, "NotifyUser", graduateID, EventBookingStarted, inProgress)
}

func TestBookingService_Start_ByGraduate_Forbidden(t *testing.T) {
	// Запуск работы — право заказчика, исполнителю он недоступен.
	f := newBookingFixture()
	ctx := context.Background()

	bookingID := uuid.New()
	requesterID := uuid.New()
	graduateID := uuid.New()

	accepted := &models.Booking{
		ID:          bookingID,
		RequesterID: requesterID,
		GraduateID:  &graduateID,
		Type:        models.BookingTypeUrgent,
		Status:      models.BookingStatusAccepted,
	}

	f.repo.On("GetByID", ctx, bookingID).Return(accepted, nil)

	_, err := f.svc.Start(ctx, bookingID, graduateID)

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	f.repo.AssertNotCalled(t, "UpdateStatus")
}

func TestBookingService_Start_NotAccepted(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	bookingID := uuid.New()
	requesterID := uuid.New()

	booking := &models.Booking{
		ID:          bookingID,
		RequesterID: requesterID,
		Type:        models.BookingTypeUrgent,
		Status:      models.BookingStatusPending,
	}

	f.repo.On("GetByID", ctx, bookingID).Return(booking, nil)

	_, err := f.svc.Start(ctx, bookingID, requesterID)

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestBookingService_ConfirmPayment_AlreadyConfirmed(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	bookingID := uuid.New()
	graduateID := uuid.New()

	booking := &models.Booking{
		ID:            bookingID,
		RequesterID:   uuid.New(),
		GraduateID:    &graduateID,
		Type:          models.BookingTypeUrgent,
		Status:        models.BookingStatusCompleted,
		PaymentStatus: models.PaymentConfirmed,
	}

	f.repo.On("GetByID", ctx, bookingID).Return(booking, nil)

	_, err := f.svc.ConfirmPayment(ctx, bookingID, graduateID, 500)

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
	f.repo.AssertNotCalled(t, "ConfirmPayment")
}

func TestBookingService_ConfirmPayment_ZeroAmount(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	bookingID := uuid.New()
	graduateID := uuid.New()

	booking := &models.Booking{
		ID:            bookingID,
		RequesterID:   uuid.New(),
		GraduateID:    &graduateID,
		Type:          models.BookingTypeUrgent,
		Status:        models.BookingStatusCompleted,
		PaymentStatus: models.PaymentPending,
	}

	f.repo.On("GetByID", ctx, bookingID).Return(booking, nil)

	_, err := f.svc.ConfirmPayment(ctx, bookingID, graduateID, 0)

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestBookingService_GetBooking_NotParticipant(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	bookingID := uuid.New()
	graduateID := uuid.New()

	booking := &models.Booking{
		ID:          bookingID,
		RequesterID: uuid.New(),
		GraduateID:  &graduateID,
		Type:        models.BookingTypeCategory,
		Status:      models.BookingStatusAccepted,
	}

	f.repo.On("GetByID", ctx, bookingID).Return(booking, nil)

	_, err := f.svc.GetBooking(ctx, bookingID, uuid.New())

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestBookingService_GetBooking_NotFound(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	bookingID := uuid.New()
	f.repo.On("GetByID", ctx, bookingID).Return(nil, repository.ErrBookingNotFound)

	_, err := f.svc.GetBooking(ctx, bookingID, uuid.New())

	assert.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestBookingService_ListByRequester_NormalizesLimit(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	requesterID := uuid.New()
	f.repo.On("ListByRequester", ctx, requesterID, 20, 0).Return([]models.Booking{}, nil)

	_, err := f.svc.ListByRequester(ctx, requesterID, 0, 0)

	assert.NoError(t, err)
	f.repo.AssertCalled(t, "ListByRequester", ctx, requesterID, 20, 0)
}
