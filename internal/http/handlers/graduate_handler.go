package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gradlinkph/gradlink-backend/internal/dto"
	"github.com/gradlinkph/gradlink-backend/internal/http/handlers/common"
	"github.com/gradlinkph/gradlink-backend/internal/service"
)

// GraduateHandler предоставляет HTTP слой профилей исполнителей и каталога.
type GraduateHandler struct {
	graduates       *service.GraduateService
	guard           *service.AvailabilityGuard
	matcher         *service.GeoMatcher
	defaultRadiusKm float64
}

// NewGraduateHandler создаёт хэндлер.
func NewGraduateHandler(graduates *service.GraduateService, guard *service.AvailabilityGuard, matcher *service.GeoMatcher, defaultRadiusKm float64) *GraduateHandler {
	return &GraduateHandler{
		graduates:       graduates,
		guard:           guard,
		matcher:         matcher,
		defaultRadiusKm: defaultRadiusKm,
	}
}

// GetMe обрабатывает GET /graduates/me.
func (h *GraduateHandler) GetMe(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	graduate, err := h.graduates.GetProfile(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, graduate)
}

// UpdateMe обрабатывает PUT /graduates/me.
func (h *GraduateHandler) UpdateMe(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.UpdateProfileRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	graduate, err := h.graduates.UpdateProfile(c.Request.Context(), userID, service.ProfileInput{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		IsAvailable: req.IsAvailable,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, graduate)
}

// SetAvailability обрабатывает PATCH /graduates/me/availability.
func (h *GraduateHandler) SetAvailability(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.SetAvailabilityRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.guard.SetGraduateAvailability(c.Request.Context(), userID, *req.IsAvailable); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "доступность обновлена", gin.H{"is_available": *req.IsAvailable})
}

// Get обрабатывает GET /graduates/:id — публичный профиль исполнителя.
func (h *GraduateHandler) Get(c *gin.Context) {
	graduateID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	graduate, err := h.graduates.GetProfile(c.Request.Context(), graduateID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, graduate)
}

// ListByCategory обрабатывает GET /graduates?category_id=...
func (h *GraduateHandler) ListByCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Query("category_id"))
	if err != nil {
		common.RespondBadRequest(c, "category_id обязателен и должен быть валидным UUID")
		return
	}

	limit, _ := common.GetPagination(c)

	graduates, err := h.graduates.ListByCategory(c.Request.Context(), categoryID, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"graduates": graduates})
}

// Nearby обрабатывает GET /graduates/nearby — исполнители категории в радиусе.
func (h *GraduateHandler) Nearby(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Query("category_id"))
	if err != nil {
		common.RespondBadRequest(c, "category_id обязателен и должен быть валидным UUID")
		return
	}
	if c.Query("latitude") == "" || c.Query("longitude") == "" {
		common.RespondBadRequest(c, "latitude и longitude обязательны")
		return
	}

	lat := common.ParseFloatQuery(c, "latitude", 0)
	lon := common.ParseFloatQuery(c, "longitude", 0)
	radius := common.ParseFloatQuery(c, "radius_km", h.defaultRadiusKm)

	graduates, err := h.matcher.FindNearby(c.Request.Context(), categoryID, lat, lon, radius)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"graduates": graduates})
}

// TopRated обрабатывает GET /graduates/top — лучшие по рейтингу исполнители
// категории в радиусе, не больше пяти.
func (h *GraduateHandler) TopRated(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Query("category_id"))
	if err != nil {
		common.RespondBadRequest(c, "category_id обязателен и должен быть валидным UUID")
		return
	}
	if c.Query("latitude") == "" || c.Query("longitude") == "" {
		common.RespondBadRequest(c, "latitude и longitude обязательны")
		return
	}

	lat := common.ParseFloatQuery(c, "latitude", 0)
	lon := common.ParseFloatQuery(c, "longitude", 0)
	radius := common.ParseFloatQuery(c, "radius_km", h.defaultRadiusKm)

	graduates, err := h.matcher.FindNearby(c.Request.Context(), categoryID, lat, lon, radius)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"graduates": service.TopRated(graduates)})
}

// ListCategories обрабатывает GET /categories.
func (h *GraduateHandler) ListCategories(c *gin.Context) {
	categories, err := h.graduates.ListCategories(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
