package service

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/gradlinkph/gradlink-backend/internal/models"
	"github.com/gradlinkph/gradlink-backend/internal/pkg/apperror"
	"github.com/gradlinkph/gradlink-backend/internal/validation"
)

// earthRadiusKm — средний радиус Земли.
const earthRadiusKm = 6371.0

// topRatedLimit — сколько лучших исполнителей возвращает TopRated.
const topRatedLimit = 5

// GraduateGeoRepository — гео-выборки исполнителей для матчинга.
type GraduateGeoRepository interface {
	FindNearby(ctx context.Context, categoryID uuid.UUID, lat, lon, radiusKm float64, excludeBusy bool) ([]models.NearbyGraduate, error)
}

// GeoMatcher подбирает исполнителей по категории и расстоянию.
type GeoMatcher struct {
	graduates GraduateGeoRepository
}

// NewGeoMatcher создаёт новый матчер.
func NewGeoMatcher(graduates GraduateGeoRepository) *GeoMatcher {
	return &GeoMatcher{graduates: graduates}
}

// DistanceKm возвращает расстояние большого круга между двумя точками в км.
// Аргумент арккосинуса зажимается в [-1, 1]: для совпадающих точек
// накопленная погрешность float64 может вытолкнуть его за единицу.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180

	cosine := math.Cos(rlat1)*math.Cos(rlat2)*math.Cos(dlon) + math.Sin(rlat1)*math.Sin(rlat2)
	cosine = math.Min(1.0, math.Max(-1.0, cosine))

	return earthRadiusKm * math.Acos(cosine)
}

// FindNearby возвращает доступных исполнителей категории в радиусе radiusKm
// от точки, отсортированных по расстоянию.
func (m *GeoMatcher) FindNearby(ctx context.Context, categoryID uuid.UUID, lat, lon, radiusKm float64) ([]models.NearbyGraduate, error) {
	if err := validation.ValidateCoordinates(lat, lon); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateRadiusKm(radiusKm); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	graduates, err := m.graduates.FindNearby(ctx, categoryID, lat, lon, radiusKm, false)
	if err != nil {
		return nil, err
	}
	RankByDistance(graduates)
	return graduates, nil
}

// FindCandidates возвращает исполнителей для рассылки срочной заявки:
// доступных, в радиусе и без активной заявки, ближайшие первыми.
func (m *GeoMatcher) FindCandidates(ctx context.Context, categoryID uuid.UUID, lat, lon, radiusKm float64) ([]models.NearbyGraduate, error) {
	if err := validation.ValidateCoordinates(lat, lon); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateRadiusKm(radiusKm); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	graduates, err := m.graduates.FindNearby(ctx, categoryID, lat, lon, radiusKm, true)
	if err != nil {
		return nil, err
	}
	RankByDistance(graduates)
	return graduates, nil
}

// RankByDistance сортирует выборку по возрастанию расстояния.
// Сортировка стабильная: исполнители на равном расстоянии сохраняют
// порядок выборки.
func RankByDistance(graduates []models.NearbyGraduate) {
	sort.SliceStable(graduates, func(i, j int) bool {
		return graduates[i].DistanceKm < graduates[j].DistanceKm
	})
}

// TopRated возвращает до пяти исполнителей выборки с лучшим рейтингом.
// При равном рейтинге выигрывает большее число оценок.
func TopRated(graduates []models.NearbyGraduate) []models.NearbyGraduate {
	ranked := make([]models.NearbyGraduate, len(graduates))
	copy(ranked, graduates)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Stars != ranked[j].Stars {
			return ranked[i].Stars > ranked[j].Stars
		}
		return ranked[i].RatingCount > ranked[j].RatingCount
	})

	if len(ranked) > topRatedLimit {
		ranked = ranked[:topRatedLimit]
	}
	return ranked
}
