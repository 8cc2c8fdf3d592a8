package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes fulfilment lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusRefunded},
	OrderStatusDelivered:  {OrderStatusRefunded},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether stock may still be returned for the order.
func (s OrderStatus) Cancellable() bool {
	return s.CanTransitionTo(OrderStatusCancelled)
}

// PaymentStatus describes settlement state of an order.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentMethod is one of the accepted checkout payment options.
type PaymentMethod string

const (
	PaymentMethodCreditCard     PaymentMethod = "credit_card"
	PaymentMethodPayPal         PaymentMethod = "paypal"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// Valid reports whether m is accepted at checkout.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodPayPal, PaymentMethodBankTransfer, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

// Order describes one checkout of a customer.
type Order struct {
	ID                int64
	Number            string
	CustomerID        int64
	Status            OrderStatus
	PaymentStatus     PaymentStatus
	Subtotal          decimal.Decimal
	TaxAmount         decimal.Decimal
	ShippingAmount    decimal.Decimal
	DiscountAmount    decimal.Decimal
	Total             decimal.Decimal
	PaymentMethod     PaymentMethod
	ShippingMethod    string
	DiscountCode      string
	Notes             string
	ShippingAddressID int64
	BillingAddressID  int64
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Items           []OrderItem
	ShippingAddress *Address
	BillingAddress  *Address
}

// OrderItem is a purchased line with the price captured at checkout.
type OrderItem struct {
	ID            int64
	OrderID       int64
	ProductID     int64
	ProductItemID *int64
	ProductName   string
	ProductPrice  decimal.Decimal
	Quantity      int
	Options       map[string]any
	ReviewID      *int64
}

// LineTotal returns price multiplied by quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.ProductPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// StockTarget identifies the catalog row whose quantity an item consumed.
func (i OrderItem) StockTarget() StockKey {
	return StockKey{ProductID: i.ProductID, ProductItemID: i.ProductItemID}
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status OrderStatus
	Limit  int
	Offset int
}

// OrderPage is a slice of orders with the unpaged total.
type OrderPage struct {
	Orders  []Order
	Page    int
	PerPage int
	Total   int
}
