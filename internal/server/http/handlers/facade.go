package handlers

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, email, name, password string) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	ParseToken(token string) (int64, error)
}

// AddressFacade exposes the customer address book.
type AddressFacade interface {
	Addresses(ctx context.Context, customerID int64) ([]model.Address, error)
	CreateAddress(ctx context.Context, customerID int64, fields model.AddressFields) (*model.Address, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, customerID int64, cart model.Cart) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID, customerID int64) (*model.Order, error)
	Order(ctx context.Context, orderID, customerID int64) (*model.Order, error)
	Orders(ctx context.Context, customerID int64, status model.OrderStatus, page, perPage int) (*model.OrderPage, error)
}

// AdminFacade covers back-office order management.
type AdminFacade interface {
	UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error)
}

// HealthFacade reports readiness of backing services.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	AuthFacade
	AddressFacade
	OrderFacade
	AdminFacade
	HealthFacade
}
