package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gradlinkph/gradlink-backend/internal/http/handlers/common"
	"github.com/gradlinkph/gradlink-backend/internal/service"
)

// MatchingHandler предоставляет HTTP слой матчинга.
type MatchingHandler struct {
	matching        *service.MatchingService
	defaultRadiusKm float64
}

// NewMatchingHandler создаёт хэндлер.
func NewMatchingHandler(matching *service.MatchingService, defaultRadiusKm float64) *MatchingHandler {
	return &MatchingHandler{matching: matching, defaultRadiusKm: defaultRadiusKm}
}

// Probe обрабатывает GET /matching/probe — пробный матчинг до создания заявки.
func (h *MatchingHandler) Probe(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	categoryID, err := uuid.Parse(c.Query("category_id"))
	if err != nil {
		common.RespondBadRequest(c, "category_id обязателен и должен быть валидным UUID")
		return
	}

	lat := common.ParseFloatQuery(c, "latitude", 0)
	lon := common.ParseFloatQuery(c, "longitude", 0)
	if c.Query("latitude") == "" || c.Query("longitude") == "" {
		common.RespondBadRequest(c, "latitude и longitude обязательны")
		return
	}
	radius := common.ParseFloatQuery(c, "radius_km", h.defaultRadiusKm)

	probe, err := h.matching.ProbeUrgentJob(c.Request.Context(), userID, categoryID, lat, lon, radius)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, probe)
}

// OpenUrgentJobs обрабатывает GET /matching/urgent — лента открытых
// срочных заявок категории для исполнителя.
func (h *MatchingHandler) OpenUrgentJobs(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Query("category_id"))
	if err != nil {
		common.RespondBadRequest(c, "category_id обязателен и должен быть валидным UUID")
		return
	}

	bookings, err := h.matching.OpenUrgentJobs(c.Request.Context(), categoryID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
