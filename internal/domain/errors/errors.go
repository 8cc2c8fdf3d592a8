package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")

	ErrEmptyCart               = errors.New("cart is empty")
	ErrAddressNotFound         = errors.New("address not found")
	ErrProductNotFound         = errors.New("product not found")
	ErrInvalidVariant          = errors.New("product item does not belong to product")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrInvalidDiscount         = errors.New("discount exceeds order amount")
	ErrDuplicateOrderReference = errors.New("order reference already taken")
	ErrOrderNotFound           = errors.New("order not found")
	ErrOrderNotCancellable     = errors.New("order can no longer be cancelled")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// ValidationError reports a malformed or missing request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StockError names the product whose line could not be satisfied.
type StockError struct {
	ProductID   int64
	VariantID   *int64
	ProductName string
	Requested   int
	Available   int
}

func (e *StockError) Error() string {
	if e.ProductName == "" {
		return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
	}
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// TransitionError carries the rejected status pair.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidStatusTransition }

// Kind groups domain errors into the categories surfaced to clients.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindBusinessRule Kind = "business_rule"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation), errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInvalidCredentials):
		return KindValidation
	case errors.Is(err, ErrAddressNotFound), errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrInvalidVariant), errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrInvalidDiscount),
		errors.Is(err, ErrOrderNotCancellable), errors.Is(err, ErrInvalidStatusTransition):
		return KindBusinessRule
	case errors.Is(err, ErrDuplicateOrderReference), errors.Is(err, ErrAlreadyExists):
		return KindConflict
	default:
		return KindInternal
	}
}

// Code returns a stable machine readable identifier for err.
func Code(err error) string {
	codes := []struct {
		target error
		code   string
	}{
		{ErrEmptyCart, "empty_cart"},
		{ErrValidation, "validation_error"},
		{ErrInvalidCredentials, "invalid_credentials"},
		{ErrAddressNotFound, "address_not_found"},
		{ErrProductNotFound, "product_not_found"},
		{ErrInvalidVariant, "invalid_variant"},
		{ErrOrderNotFound, "order_not_found"},
		{ErrInsufficientStock, "insufficient_stock"},
		{ErrInvalidDiscount, "invalid_discount"},
		{ErrOrderNotCancellable, "order_not_cancellable"},
		{ErrInvalidStatusTransition, "invalid_status_transition"},
		{ErrDuplicateOrderReference, "duplicate_order_reference"},
		{ErrAlreadyExists, "already_exists"},
		{ErrNotFound, "not_found"},
	}
	for _, c := range codes {
		if errors.Is(err, c.target) {
			return c.code
		}
	}
	return "internal_error"
}
