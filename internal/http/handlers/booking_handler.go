package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gradlinkph/gradlink-backend/internal/dto"
	"github.com/gradlinkph/gradlink-backend/internal/http/handlers/common"
	"github.com/gradlinkph/gradlink-backend/internal/models"
	"github.com/gradlinkph/gradlink-backend/internal/service"
)

// BookingHandler предоставляет HTTP слой жизненного цикла заявок.
type BookingHandler struct {
	bookings *service.BookingService
}

// NewBookingHandler создаёт хэндлер.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// CreateUrgent обрабатывает POST /bookings/urgent.
func (h *BookingHandler) CreateUrgent(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.CreateUrgentBookingRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	booking, err := h.bookings.CreateUrgentBooking(c.Request.Context(), userID, service.CreateUrgentInput{
		CategoryID:    req.CategoryID,
		PaymentMethod: req.PaymentMethod,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		RadiusKm:      req.RadiusKm,
		JobDetails:    req.JobDetails,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// CreateCategory обрабатывает POST /bookings/category.
func (h *BookingHandler) CreateCategory(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.CreateCategoryBookingRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	booking, err := h.bookings.CreateCategoryBooking(c.Request.Context(), userID, service.CreateCategoryInput{
		CategoryID:    req.CategoryID,
		GraduateID:    req.GraduateID,
		PaymentMethod: req.PaymentMethod,
		JobDetails:    req.JobDetails,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// Get обрабатывает GET /bookings/:id.
func (h *BookingHandler) Get(c *gin.Context) {
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

	booking, err := h.bookings.GetBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListMine обрабатывает GET /bookings — заявки текущего пользователя.
// Роль определяет сторону: заказчик видит свои заявки, исполнитель —
// закреплённые за ним.
func (h *BookingHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	role, _ := common.CurrentUserRole(c)

	limit, offset := common.GetPagination(c)

	var bookings []models.Booking
	if role == models.RoleGraduate {
		bookings, err = h.bookings.ListByGraduate(c.Request.Context(), userID, limit, offset)
	} else {
		bookings, err = h.bookings.ListByRequester(c.Request.Context(), userID, limit, offset)
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// Accept обрабатывает POST /bookings/:id/accept.
func (h *BookingHandler) Accept(c *gin.Context) {
	h.transition(c, h.bookings.Accept)
}

// Reject обрабатывает POST /bookings/:id/reject.
func (h *BookingHandler) Reject(c *gin.Context) {
	h.transition(c, h.bookings.Reject)
}

// Cancel обрабатывает POST /bookings/:id/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.bookings.Cancel)
}

// Start обрабатывает POST /bookings/:id/start.
func (h *BookingHandler) Start(c *gin.Context) {
	h.transition(c, h.bookings.Start)
}

// Reopen обрабатывает POST /bookings/:id/reopen.
func (h *BookingHandler) Reopen(c *gin.Context) {
	h.transition(c, h.bookings.Reopen)
}

// Complete обрабатывает POST /bookings/:id/complete — подтверждение заказчика.
func (h *BookingHandler) Complete(c *gin.Context) {
	h.transition(c, h.bookings.Complete)
}

// WorkerComplete обрабатывает POST /bookings/:id/worker-complete.
func (h *BookingHandler) WorkerComplete(c *gin.Context) {
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

	// Тело опционально: исполнитель может не указывать сумму.
	var req dto.CompleteBookingRequest
	if c.Request.ContentLength > 0 {
		if err := common.BindAndValidate(c, &req); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
	}

	booking, err := h.bookings.CompleteByGraduate(c.Request.Context(), bookingID, userID, req.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ConfirmPayment обрабатывает POST /bookings/:id/confirm-payment.
func (h *BookingHandler) ConfirmPayment(c *gin.Context) {
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

	var req dto.ConfirmPaymentRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	booking, err := h.bookings.ConfirmPayment(c.Request.Context(), bookingID, userID, req.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// transition — общий каркас перехода без тела запроса.
func (h *BookingHandler) transition(
	c *gin.Context,
	fn func(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error),
) {
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

	booking, err := fn(c.Request.Context(), bookingID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, booking)
}
