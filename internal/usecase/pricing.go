package usecase

import (
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const moneyPlaces = 2

// maxAmount is the smallest value that no longer fits NUMERIC(12,2).
var maxAmount = decimal.New(1, 10)

func fitsAmount(d decimal.Decimal) bool {
	return d.Round(moneyPlaces).LessThan(maxAmount)
}

// Totals is the monetary breakdown of an order.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Pricing computes order totals with a single tax rate.
type Pricing struct {
	taxRate decimal.Decimal
}

// NewPricing returns a calculator applying rate to the subtotal.
func NewPricing(rate decimal.Decimal) Pricing {
	return Pricing{taxRate: rate}
}

// TaxRate returns the configured rate.
func (p Pricing) TaxRate() decimal.Decimal {
	return p.taxRate
}

// Compute prices items and returns ErrInvalidDiscount when the discount
// would make the total negative. Totals that would not fit the order
// columns are rejected as a validation error.
func (p Pricing) Compute(items []model.OrderItem, shipping, discount decimal.Decimal) (Totals, error) {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	subtotal = subtotal.Round(moneyPlaces)

	t := Totals{
		Subtotal: subtotal,
		Tax:      subtotal.Mul(p.taxRate).Round(moneyPlaces),
		Shipping: shipping.Round(moneyPlaces),
		Discount: discount.Round(moneyPlaces),
	}

	gross := t.Subtotal.Add(t.Tax).Add(t.Shipping)
	if !fitsAmount(gross) {
		return Totals{}, domainErrors.Invalid("items", "order total exceeds the maximum amount")
	}
	if t.Discount.GreaterThan(gross) {
		return Totals{}, domainErrors.ErrInvalidDiscount
	}
	t.Total = gross.Sub(t.Discount)
	return t, nil
}

// Apply copies totals onto o.
func (t Totals) Apply(o *model.Order) {
	o.Subtotal = t.Subtotal
	o.TaxAmount = t.Tax
	o.ShippingAmount = t.Shipping
	o.DiscountAmount = t.Discount
	o.Total = t.Total
}
