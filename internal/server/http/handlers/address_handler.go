package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// AddressHandler serves the customer address book.
type AddressHandler struct {
	facade AddressFacade
	logger *slog.Logger
}

// NewAddressHandler constructs AddressHandler.
func NewAddressHandler(facade AddressFacade, logger *slog.Logger) *AddressHandler {
	return &AddressHandler{facade: facade, logger: logger}
}

// List handles GET /api/addresses.
func (h *AddressHandler) List(c *gin.Context) {
	addresses, err := h.facade.Addresses(c.Request.Context(), CurrentCustomerID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	resp := make([]*dto.AddressResponse, 0, len(addresses))
	for i := range addresses {
		resp = append(resp, dto.NewAddressResponse(&addresses[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Create handles POST /api/addresses.
func (h *AddressHandler) Create(c *gin.Context) {
	var req dto.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed address payload")
		return
	}

	addr, err := h.facade.CreateAddress(c.Request.Context(), CurrentCustomerID(c), req.Fields())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewAddressResponse(addr))
}
