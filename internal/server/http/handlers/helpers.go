package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// CurrentCustomerID extracts authenticated customer identifier from context.
func CurrentCustomerID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.CustomerIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "bad_request", Message: message})
}

func unprocessable(c *gin.Context, field, message string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
		Error:   "validation_error",
		Message: field + ": " + message,
		Field:   field,
	})
}

// statusFor maps a domain error kind onto an HTTP status.
func statusFor(kind domainErrors.Kind) int {
	switch kind {
	case domainErrors.KindValidation:
		return http.StatusUnprocessableEntity
	case domainErrors.KindNotFound:
		return http.StatusNotFound
	case domainErrors.KindBusinessRule, domainErrors.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as a structured error body. Internal failures
// are logged and hidden behind a generic message.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	kind := domainErrors.KindOf(err)
	status := statusFor(kind)

	if status == http.StatusInternalServerError {
		logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
		c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: "internal_error", Message: "internal server error"})
		return
	}

	resp := dto.ErrorResponse{Error: domainErrors.Code(err), Message: err.Error()}

	var verr *domainErrors.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
	}
	var stockErr *domainErrors.StockError
	if errors.As(err, &stockErr) {
		id := stockErr.ProductID
		resp.ProductID = &id
	}

	c.AbortWithStatusJSON(status, resp)
}
