package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// AdminHandler serves back-office order management.
type AdminHandler struct {
	facade AdminFacade
	logger *slog.Logger
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{facade: facade, logger: logger}
}

// UpdateStatus handles PATCH /api/admin/orders/:id/status.
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		badRequest(c, "invalid order id")
		return
	}
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed status payload")
		return
	}

	order, err := h.facade.UpdateOrderStatus(c.Request.Context(), id, model.OrderStatus(req.Status))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}
