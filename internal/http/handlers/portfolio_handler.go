package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradlinkph/gradlink-backend/internal/dto"
	"github.com/gradlinkph/gradlink-backend/internal/http/handlers/common"
	"github.com/gradlinkph/gradlink-backend/internal/service"
)

// PortfolioHandler предоставляет HTTP слой портфолио исполнителей.
type PortfolioHandler struct {
	portfolio *service.PortfolioService
}

// NewPortfolioHandler создаёт хэндлер.
func NewPortfolioHandler(portfolio *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolio: portfolio}
}

// Create обрабатывает POST /portfolio.
func (h *PortfolioHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.PortfolioItemRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	item, err := h.portfolio.CreatePortfolioItem(c.Request.Context(), userID, req.Title, req.Description, req.ProjectURL)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// Get обрабатывает GET /portfolio/:id.
func (h *PortfolioHandler) Get(c *gin.Context) {
	itemID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	item, err := h.portfolio.GetPortfolioItem(c.Request.Context(), itemID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// ListByGraduate обрабатывает GET /graduates/:id/portfolio.
func (h *PortfolioHandler) ListByGraduate(c *gin.Context) {
	graduateID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	items, err := h.portfolio.ListPortfolioItems(c.Request.Context(), graduateID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Update обрабатывает PUT /portfolio/:id.
func (h *PortfolioHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	itemID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.PortfolioItemRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	item, err := h.portfolio.UpdatePortfolioItem(c.Request.Context(), itemID, userID, req.Title, req.Description, req.ProjectURL)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// Delete обрабатывает DELETE /portfolio/:id.
func (h *PortfolioHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	itemID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.portfolio.DeletePortfolioItem(c.Request.Context(), itemID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "работа удалена", nil)
}
