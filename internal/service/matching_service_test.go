package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/gradlinkph/gradlink-backend/internal/models"
	"github.com/gradlinkph/gradlink-backend/internal/pkg/apperror"
)

type mockUrgentLister struct {
	mock.Mock
}

func (m *mockUrgentLister) ListOpenUrgentByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Booking, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func verifiedUserDirectory(requesterID uuid.UUID) *mockUserDirectory {
	users := new(mockUserDirectory)
	users.On("GetByID", mock.Anything, requesterID).Return(&models.User{
		ID:         requesterID,
		Role:       models.RoleClient,
		IsVerified: true,
		IsActive:   true,
	}, nil)
	return users
}

func TestMatchingService_ProbeUrgentJob_Success(t *testing.T) {
	matcher := new(mockCandidateFinder)
	requesterID := uuid.New()
	svc := NewMatchingService(matcher, new(mockUrgentLister), verifiedUserDirectory(requesterID))
	ctx := context.Background()

	categoryID := uuid.New()
	candidates := []models.NearbyGraduate{
		{UserID: uuid.New(), DistanceKm: 0.4, Stars: 4.2},
		{UserID: uuid.New(), DistanceKm: 1.8, Stars: 4.9},
	}
	matcher.On("FindCandidates", ctx, categoryID, 14.6, 120.98, 10.0).Return(candidates, nil)

	probe, err := svc.ProbeUrgentJob(ctx, requesterID, categoryID, 14.6, 120.98, 10)

	assert.NoError(t, err)
	assert.Equal(t, 2, probe.CandidateCount)
	assert.Len(t, probe.Nearest, 2)
	assert.Equal(t, 4.9, probe.TopRated[0].Stars)
}

func TestMatchingService_ProbeUrgentJob_Empty(t *testing.T) {
	matcher := new(mockCandidateFinder)
	requesterID := uuid.New()
	svc := NewMatchingService(matcher, new(mockUrgentLister), verifiedUserDirectory(requesterID))
	ctx := context.Background()

	categoryID := uuid.New()
	matcher.On("FindCandidates", ctx, categoryID, 14.6, 120.98, 10.0).
		Return([]models.NearbyGraduate{}, nil)

	_, err := svc.ProbeUrgentJob(ctx, requesterID, categoryID, 14.6, 120.98, 10)

	assert.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestMatchingService_ProbeUrgentJob_UnverifiedRequester(t *testing.T) {
	matcher := new(mockCandidateFinder)
	users := new(mockUserDirectory)
	requesterID := uuid.New()
	users.On("GetByID", mock.Anything, requesterID).Return(&models.User{
		ID:       requesterID,
		Role:     models.RoleClient,
		IsActive: true,
	}, nil)
	svc := NewMatchingService(matcher, new(mockUrgentLister), users)
	ctx := context.Background()

	_, err := svc.ProbeUrgentJob(ctx, requesterID, uuid.New(), 14.6, 120.98, 10)

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	matcher.AssertNotCalled(t, "FindCandidates")
}

func TestMatchingService_OpenUrgentJobs(t *testing.T) {
	lister := new(mockUrgentLister)
	svc := NewMatchingService(new(mockCandidateFinder), lister, new(mockUserDirectory))
	ctx := context.Background()

	categoryID := uuid.New()
	expected := []models.Booking{{ID: uuid.New()}, {ID: uuid.New()}}
	lister.On("ListOpenUrgentByCategory", ctx, categoryID).Return(expected, nil)

	jobs, err := svc.OpenUrgentJobs(ctx, categoryID)

	assert.NoError(t, err)
	assert.Len(t, jobs, 2)
}
