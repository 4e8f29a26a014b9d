package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradlinkph/gradlink-backend/internal/dto"
	"github.com/gradlinkph/gradlink-backend/internal/http/handlers/common"
	"github.com/gradlinkph/gradlink-backend/internal/service"
)

// RatingHandler предоставляет HTTP слой оценок исполнителей.
type RatingHandler struct {
	ratings *service.RatingService
}

// NewRatingHandler создаёт хэндлер.
func NewRatingHandler(ratings *service.RatingService) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

// Create обрабатывает POST /bookings/:id/rating.
func (h *RatingHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	bookingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ApplyRatingRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	rating, err := h.ratings.ApplyRating(c.Request.Context(), bookingID, userID, req.Value, req.Comment)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, rating)
}

// ListByGraduate обрабатывает GET /graduates/:id/ratings.
func (h *RatingHandler) ListByGraduate(c *gin.Context) {
	graduateID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	ratings, err := h.ratings.ListGraduateRatings(c.Request.Context(), graduateID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}

// Recompute обрабатывает POST /graduates/:id/ratings/recompute — сверочный
// пересчёт рейтинга с нуля.
func (h *RatingHandler) Recompute(c *gin.Context) {
	graduateID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	stars, count, err := h.ratings.RecomputeGraduateRating(c.Request.Context(), graduateID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.RatingSummaryResponse{
		Stars:       stars,
		RatingCount: count,
	})
}
