package usecase

import (
	"fmt"
	"net/mail"
	"strings"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
)

const (
	maxNotesLength        = 2000
	maxDiscountCodeLength = 64
	maxShippingMethod     = 64
	maxLineQuantity       = 10000
	minPasswordLength     = 8
)

// ValidateCart rejects malformed checkout payloads before any side effects.
func ValidateCart(cart model.Cart) error {
	if len(cart.Items) == 0 {
		return domainErrors.ErrEmptyCart
	}

	for i, line := range cart.Items {
		field := fmt.Sprintf("items[%d]", i)
		if line.ProductID <= 0 {
			return domainErrors.Invalid(field+".product_id", "is required")
		}
		if line.ProductItemID != nil && *line.ProductItemID <= 0 {
			return domainErrors.Invalid(field+".product_item_id", "must be positive")
		}
		if line.Quantity < 1 {
			return domainErrors.Invalid(field+".quantity", "must be at least 1")
		}
		if line.Quantity > maxLineQuantity {
			return domainErrors.Invalid(field+".quantity", fmt.Sprintf("must be at most %d", maxLineQuantity))
		}
	}

	if err := validateAddressRef("shipping_address", &cart.ShippingAddress); err != nil {
		return err
	}
	if !cart.SameAsShipping && cart.BillingAddress != nil {
		if err := validateAddressRef("billing_address", cart.BillingAddress); err != nil {
			return err
		}
	}

	if !cart.PaymentMethod.Valid() {
		return domainErrors.Invalid("payment_method", "is not supported")
	}
	if len(cart.ShippingMethod) > maxShippingMethod {
		return domainErrors.Invalid("shipping_method", "is too long")
	}
	if cart.ShippingAmount.IsNegative() {
		return domainErrors.Invalid("shipping_amount", "must not be negative")
	}
	if !fitsAmount(cart.ShippingAmount) {
		return domainErrors.Invalid("shipping_amount", "is too large")
	}
	if cart.DiscountAmount.IsNegative() {
		return domainErrors.Invalid("discount_amount", "must not be negative")
	}
	if !fitsAmount(cart.DiscountAmount) {
		return domainErrors.Invalid("discount_amount", "is too large")
	}
	if len(cart.DiscountCode) > maxDiscountCodeLength {
		return domainErrors.Invalid("discount_code", "is too long")
	}
	if len(cart.Notes) > maxNotesLength {
		return domainErrors.Invalid("notes", "is too long")
	}
	return nil
}

func validateAddressRef(field string, ref *model.AddressRef) error {
	switch {
	case ref.ID > 0:
		return nil
	case ref.ID < 0:
		return domainErrors.Invalid(field+".id", "must be positive")
	case ref.Fields == nil:
		return domainErrors.Invalid(field, "id or address fields are required")
	}
	return ValidateAddress(field, *ref.Fields)
}

// ValidateAddress checks the mandatory postal fields.
func ValidateAddress(field string, f model.AddressFields) error {
	required := []struct {
		name  string
		value string
	}{
		{"first_name", f.FirstName},
		{"last_name", f.LastName},
		{"line1", f.Line1},
		{"city", f.City},
		{"postal_code", f.PostalCode},
		{"country", f.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return domainErrors.Invalid(joinField(field, r.name), "is required")
		}
	}
	return nil
}

func validateCredentials(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", domainErrors.ErrInvalidCredentials
	}
	return email, nil
}

func validateRegistration(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "", domainErrors.Invalid("email", "must be a valid address")
	}
	if len(password) < minPasswordLength {
		return "", domainErrors.Invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if len(password) > pkgAuth.MaxPasswordBytes {
		return "", domainErrors.Invalid("password", fmt.Sprintf("must be at most %d bytes", pkgAuth.MaxPasswordBytes))
	}
	return email, nil
}

func joinField(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
