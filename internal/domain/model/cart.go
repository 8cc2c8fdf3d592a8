package model

import "github.com/shopspring/decimal"

// Cart is the checkout payload submitted by a customer.
type Cart struct {
	Items           []CartLine
	ShippingAddress AddressRef
	BillingAddress  *AddressRef
	SameAsShipping  bool
	ShippingMethod  string
	ShippingAmount  decimal.Decimal
	PaymentMethod   PaymentMethod
	DiscountCode    string
	DiscountAmount  decimal.Decimal
	Notes           string
}

// CartLine is one requested product or variant.
type CartLine struct {
	ProductID     int64
	ProductItemID *int64
	Quantity      int
	Options       map[string]any
}

// AddressRef points at a saved address or carries inline fields.
type AddressRef struct {
	ID     int64
	Fields *AddressFields
}
