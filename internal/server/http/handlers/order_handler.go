package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
	logger *slog.Logger
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{facade: facade, logger: logger}
}

// Place handles POST /api/orders.
func (h *OrderHandler) Place(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed order payload")
		return
	}
	if !req.TermsAccepted {
		unprocessable(c, "terms_accepted", "terms must be accepted")
		return
	}

	order, err := h.facade.PlaceOrder(c.Request.Context(), CurrentCustomerID(c), req.Cart())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewOrderResponse(order))
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		badRequest(c, "invalid order id")
		return
	}

	order, err := h.facade.CancelOrder(c.Request.Context(), id, CurrentCustomerID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		badRequest(c, "invalid order id")
		return
	}

	order, err := h.facade.Order(c.Request.Context(), id, CurrentCustomerID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	page, err := queryInt(c, "page")
	if err != nil {
		badRequest(c, "invalid page")
		return
	}
	perPage, err := queryInt(c, "per_page")
	if err != nil {
		badRequest(c, "invalid per_page")
		return
	}

	result, err := h.facade.Orders(c.Request.Context(), CurrentCustomerID(c), model.OrderStatus(c.Query("status")), page, perPage)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderPageResponse(result))
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
