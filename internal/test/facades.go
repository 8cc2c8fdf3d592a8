package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// SampleOrder returns a fully populated pending order.
func SampleOrder(id, customerID int64) *model.Order {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	variant := int64(7)
	addr := &model.Address{
		ID:         3,
		CustomerID: customerID,
		AddressFields: model.AddressFields{
			FirstName:  "Ada",
			LastName:   "Lovelace",
			Line1:      "12 St James's Square",
			City:       "London",
			PostalCode: "SW1Y 4JH",
			Country:    "GB",
		},
		CreatedAt: created,
	}
	return &model.Order{
		ID:                id,
		Number:            "ORD-7K2M9QX4PA",
		CustomerID:        customerID,
		Status:            model.OrderStatusPending,
		PaymentStatus:     model.PaymentStatusPending,
		Subtotal:          decimal.RequireFromString("100"),
		TaxAmount:         decimal.RequireFromString("10"),
		ShippingAmount:    decimal.RequireFromString("5"),
		DiscountAmount:    decimal.Zero,
		Total:             decimal.RequireFromString("115"),
		PaymentMethod:     model.PaymentMethodCreditCard,
		ShippingMethod:    "standard",
		ShippingAddressID: addr.ID,
		BillingAddressID:  addr.ID,
		CreatedAt:         created,
		UpdatedAt:         created,
		Items: []model.OrderItem{
			{ID: 1, OrderID: id, ProductID: 1, ProductName: "Mug", ProductPrice: decimal.RequireFromString("50"), Quantity: 1},
			{ID: 2, OrderID: id, ProductID: 2, ProductItemID: &variant, ProductName: "Shirt", ProductPrice: decimal.RequireFromString("25"), Quantity: 2, Options: map[string]any{"size": "M"}},
		},
		ShippingAddress: addr,
		BillingAddress:  addr,
	}
}

// AddressFacadeStub serves the address book endpoints.
type AddressFacadeStub struct {
	AddressesFn func(context.Context, int64) ([]model.Address, error)
	CreateFn    func(context.Context, int64, model.AddressFields) (*model.Address, error)
}

// Addresses returns configured addresses or a single default one.
func (s AddressFacadeStub) Addresses(ctx context.Context, customerID int64) ([]model.Address, error) {
	if s.AddressesFn != nil {
		return s.AddressesFn(ctx, customerID)
	}
	return []model.Address{*SampleOrder(1, customerID).ShippingAddress}, nil
}

// CreateAddress echoes the submitted fields with an identifier assigned.
func (s AddressFacadeStub) CreateAddress(ctx context.Context, customerID int64, fields model.AddressFields) (*model.Address, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, customerID, fields)
	}
	return &model.Address{ID: 1, CustomerID: customerID, AddressFields: fields}, nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	PlaceFn  func(context.Context, int64, model.Cart) (*model.Order, error)
	CancelFn func(context.Context, int64, int64) (*model.Order, error)
	OrderFn  func(context.Context, int64, int64) (*model.Order, error)
	OrdersFn func(ctx context.Context, customerID int64, status model.OrderStatus, page, perPage int) (*model.OrderPage, error)
}

// PlaceOrder delegates to provided function or returns the sample order.
func (s OrderFacadeStub) PlaceOrder(ctx context.Context, customerID int64, cart model.Cart) (*model.Order, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, customerID, cart)
	}
	return SampleOrder(1, customerID), nil
}

// CancelOrder returns the sample order in cancelled state.
func (s OrderFacadeStub) CancelOrder(ctx context.Context, orderID, customerID int64) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, orderID, customerID)
	}
	order := SampleOrder(orderID, customerID)
	order.Status = model.OrderStatusCancelled
	return order, nil
}

// Order returns a single order for the customer.
func (s OrderFacadeStub) Order(ctx context.Context, orderID, customerID int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, orderID, customerID)
	}
	return SampleOrder(orderID, customerID), nil
}

// Orders returns one page holding the sample order.
func (s OrderFacadeStub) Orders(ctx context.Context, customerID int64, status model.OrderStatus, page, perPage int) (*model.OrderPage, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, customerID, status, page, perPage)
	}
	return &model.OrderPage{Orders: []model.Order{*SampleOrder(1, customerID)}, Page: 1, PerPage: 15, Total: 1}, nil
}

// AdminFacadeStub simulates back-office status changes.
type AdminFacadeStub struct {
	UpdateFn func(context.Context, int64, model.OrderStatus) (*model.Order, error)
}

// UpdateOrderStatus returns the sample order moved to status.
func (s AdminFacadeStub) UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, orderID, status)
	}
	order := SampleOrder(orderID, 1)
	order.Status = status
	return order, nil
}

// HealthFacadeStub reports a configurable health result.
type HealthFacadeStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s HealthFacadeStub) HealthCheck(context.Context) error {
	return s.Err
}

// WorkerFacadeStub mimics expiry worker interactions with the storefront facade.
type WorkerFacadeStub struct {
	Batches  [][]model.Order
	StaleFn  func(context.Context, int) ([]model.Order, error)
	ExpireFn func(context.Context, int64) error
	Expired  []int64

	mu        sync.Mutex
	callCount int32
}

// StalePendingOrders returns batches from configured queue.
func (s *WorkerFacadeStub) StalePendingOrders(ctx context.Context, limit int) ([]model.Order, error) {
	if s.StaleFn != nil {
		return s.StaleFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.callCount, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	return nil, nil
}

// ExpireOrder records expiry requests.
func (s *WorkerFacadeStub) ExpireOrder(ctx context.Context, orderID int64) error {
	if s.ExpireFn != nil {
		if err := s.ExpireFn(ctx, orderID); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Expired = append(s.Expired, orderID)
	return nil
}

// ExpiredIDs returns a snapshot of recorded expiries.
func (s *WorkerFacadeStub) ExpiredIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.Expired...)
}
