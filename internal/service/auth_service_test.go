package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/gradlinkph/gradlink-backend/internal/models"
	"github.com/gradlinkph/gradlink-backend/internal/pkg/apperror"
	"github.com/gradlinkph/gradlink-backend/internal/repository"
)

type mockAuthRepo struct {
	mock.Mock
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = uuid.New()
		user.IsActive = true
	}
	return args.Error(0)
}

func (m *mockAuthRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) CreateSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockAuthRepo) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockAuthRepo) DeleteSession(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *mockAuthRepo) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockGraduateRepoForAuth struct {
	mock.Mock
}

func (m *mockGraduateRepoForAuth) Upsert(ctx context.Context, graduate *models.Graduate) error {
	args := m.Called(ctx, graduate)
	return args.Error(0)
}

func testTokenManager() *TokenManager {
	return NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)
}

func TestAuthService_Register_Client(t *testing.T) {
	repo := new(mockAuthRepo)
	graduates := new(mockGraduateRepoForAuth)
	svc := NewAuthService(repo, graduates, testTokenManager())
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "juan@example.com").Return(nil, repository.ErrUserNotFound)
	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)
	repo.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "juan@example.com",
		Password: "Str0ngPass!",
		Role:     models.RoleClient,
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.RoleClient, result.User.Role)
	assert.Equal(t, "juan", result.User.Username)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
	graduates.AssertNotCalled(t, "Upsert")
}

func TestAuthService_Register_GraduateCreatesProfile(t *testing.T) {
	repo := new(mockAuthRepo)
	graduates := new(mockGraduateRepoForAuth)
	svc := NewAuthService(repo, graduates, testTokenManager())
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "maria@example.com").Return(nil, repository.ErrUserNotFound)
	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)
	graduates.On("Upsert", ctx, mock.AnythingOfType("*models.Graduate")).Return(nil)
	repo.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:       "maria@example.com",
		Password:    "Str0ngPass!",
		Role:        models.RoleGraduate,
		DisplayName: "Maria Santos",
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.RoleGraduate, result.User.Role)
	graduates.AssertCalled(t, "Upsert", ctx, mock.AnythingOfType("*models.Graduate"))
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, new(mockGraduateRepoForAuth), testTokenManager())
	ctx := context.Background()

	existing := &models.User{ID: uuid.New(), Email: "juan@example.com"}
	repo.On("GetByEmail", ctx, "juan@example.com").Return(existing, nil)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "juan@example.com",
		Password: "Str0ngPass!",
	}, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, new(mockGraduateRepoForAuth), testTokenManager())
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "juan@example.com").Return(nil, repository.ErrUserNotFound)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "juan@example.com",
		Password: "Str0ngPass!",
		Role:     "admin",
	}, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, new(mockGraduateRepoForAuth), testTokenManager())
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("Str0ngPass!"), bcrypt.MinCost)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "juan@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleClient,
		IsActive:     true,
	}

	repo.On("GetByEmail", ctx, "juan@example.com").Return(user, nil)
	repo.On("UpdateLastLoginAt", ctx, user.ID).Return(nil)
	repo.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	result, err := svc.Login(ctx, LoginInput{Email: "juan@example.com", Password: "Str0ngPass!"}, map[string]string{
		"user_agent": "test-agent",
		"ip":         "127.0.0.1",
	})

	assert.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, new(mockGraduateRepoForAuth), testTokenManager())
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("Str0ngPass!"), bcrypt.MinCost)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "juan@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	repo.On("GetByEmail", ctx, "juan@example.com").Return(user, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "juan@example.com", Password: "wrong"}, nil)

	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeUnauthorized, apperror.CodeOf(err))
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, new(mockGraduateRepoForAuth), testTokenManager())
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Email: "juan@example.com", IsActive: false}
	repo.On("GetByEmail", ctx, "juan@example.com").Return(user, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "juan@example.com", Password: "whatever"}, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestAuthService_Refresh_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	tokens := testTokenManager()
	svc := NewAuthService(repo, new(mockGraduateRepoForAuth), tokens)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Role: models.RoleClient, IsActive: true}
	pair, _, _, err := tokens.GeneratePair(user)
	assert.NoError(t, err)

	repo.On("GetSessionByToken", ctx, pair.RefreshToken).
		Return(&models.Session{UserID: user.ID, RefreshToken: pair.RefreshToken}, nil)
	repo.On("GetByID", ctx, user.ID).Return(user, nil)
	repo.On("DeleteSession", ctx, pair.RefreshToken).Return(nil)
	repo.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	newPair, err := svc.Refresh(ctx, pair.RefreshToken, nil)

	assert.NoError(t, err)
	assert.NotEmpty(t, newPair.AccessToken)
	repo.AssertCalled(t, "DeleteSession", ctx, pair.RefreshToken)
}

func TestAuthService_Refresh_UnknownSession(t *testing.T) {
	repo := new(mockAuthRepo)
	tokens := testTokenManager()
	svc := NewAuthService(repo, new(mockGraduateRepoForAuth), tokens)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Role: models.RoleClient}
	pair, _, _, err := tokens.GeneratePair(user)
	assert.NoError(t, err)

	repo.On("GetSessionByToken", ctx, pair.RefreshToken).Return(nil, repository.ErrSessionNotFound)

	_, err = svc.Refresh(ctx, pair.RefreshToken, nil)

	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeUnauthorized, apperror.CodeOf(err))
}

func TestAuthService_Refresh_GarbageToken(t *testing.T) {
	svc := NewAuthService(new(mockAuthRepo), new(mockGraduateRepoForAuth), testTokenManager())
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "not-a-jwt", nil)

	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeUnauthorized, apperror.CodeOf(err))
}

func TestAuthService_Logout(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, new(mockGraduateRepoForAuth), testTokenManager())
	ctx := context.Background()

	repo.On("DeleteSession", ctx, "live-token").Return(nil)
	assert.NoError(t, svc.Logout(ctx, "live-token"))

	repo.On("DeleteSession", ctx, "dead-token").Return(repository.ErrSessionNotFound)
	err := svc.Logout(ctx, "dead-token")
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeUnauthorized, apperror.CodeOf(err))
}

func TestTokenManager_ParseAccess(t *testing.T) {
	tokens := testTokenManager()
	user := &models.User{ID: uuid.New(), Role: models.RoleGraduate, IsVerified: true}

	pair, _, _, err := tokens.GeneratePair(user)
	assert.NoError(t, err)

	userID, claims, err := tokens.ParseAccess(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, models.RoleGraduate, claims.Role)
	assert.True(t, claims.Verified)
}

func TestTokenManager_ParseAccess_WrongSecret(t *testing.T) {
	tokens := testTokenManager()
	other := NewTokenManager("different-secret", "different-refresh", time.Minute, time.Hour)
	user := &models.User{ID: uuid.New(), Role: models.RoleClient}

	pair, _, _, err := tokens.GeneratePair(user)
	assert.NoError(t, err)

	_, _, err = other.ParseAccess(pair.AccessToken)
	assert.Error(t, err)
}
