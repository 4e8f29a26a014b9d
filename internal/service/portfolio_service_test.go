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

type mockPortfolioRepo struct {
	mock.Mock
}

func (m *mockPortfolioRepo) Create(ctx context.Context, item *models.PortfolioItem) error {
	args := m.Called(ctx, item)
	if args.Error(0) == nil {
		item.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockPortfolioRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PortfolioItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PortfolioItem), args.Error(1)
}

func (m *mockPortfolioRepo) ListByGraduate(ctx context.Context, graduateID uuid.UUID) ([]models.PortfolioItem, error) {
	args := m.Called(ctx, graduateID)
	return args.Get(0).([]models.PortfolioItem), args.Error(1)
}

func (m *mockPortfolioRepo) Update(ctx context.Context, item *models.PortfolioItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockPortfolioRepo) Delete(ctx context.Context, id, graduateID uuid.UUID) error {
	args := m.Called(ctx, id, graduateID)
	return args.Error(0)
}

func TestPortfolioService_Create_Success(t *testing.T) {
	repo := new(mockPortfolioRepo)
	svc := NewPortfolioService(repo)
	ctx := context.Background()

	graduateID := uuid.New()
	repo.On("Create", ctx, mock.AnythingOfType("*models.PortfolioItem")).Return(nil)

	url := "https://example.com/project"
	item, err := svc.CreatePortfolioItem(ctx, graduateID, "Сайт кофейни", nil, &url)

	assert.NoError(t, err)
	assert.Equal(t, graduateID, item.GraduateID)
	assert.NotEqual(t, uuid.Nil, item.ID)
}

func TestPortfolioService_Create_EmptyTitle(t *testing.T) {
	svc := NewPortfolioService(new(mockPortfolioRepo))
	ctx := context.Background()

	_, err := svc.CreatePortfolioItem(ctx, uuid.New(), "", nil, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestPortfolioService_Update_ForeignItem(t *testing.T) {
	repo := new(mockPortfolioRepo)
	svc := NewPortfolioService(repo)
	ctx := context.Background()

	itemID := uuid.New()
	ownerID := uuid.New()
	repo.On("GetByID", ctx, itemID).
		Return(&models.PortfolioItem{ID: itemID, GraduateID: ownerID, Title: "Сайт"}, nil)

	_, err := svc.UpdatePortfolioItem(ctx, itemID, uuid.New(), "Новый заголовок", nil, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "Update")
}

func TestPortfolioService_Delete_NotFound(t *testing.T) {
	repo := new(mockPortfolioRepo)
	svc := NewPortfolioService(repo)
	ctx := context.Background()

	itemID := uuid.New()
	repo.On("GetByID", ctx, itemID).Return(nil, repository.ErrPortfolioItemNotFound)

	err := svc.DeletePortfolioItem(ctx, itemID, uuid.New())

	assert.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestPortfolioService_Delete_Success(t *testing.T) {
	repo := new(mockPortfolioRepo)
	svc := NewPortfolioService(repo)
	ctx := context.Background()

	itemID := uuid.New()
	ownerID := uuid.New()
	repo.On("GetByID", ctx, itemID).
		Return(&models.PortfolioItem{ID: itemID, GraduateID: ownerID}, nil)
	repo.On("Delete", ctx, itemID, ownerID).Return(nil)

	assert.NoError(t, svc.DeletePortfolioItem(ctx, itemID, ownerID))
}
