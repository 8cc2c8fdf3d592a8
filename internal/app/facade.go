package app

import (
	"context"
	"time"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

// HealthChecker reports availability of a backing service.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade adapts use cases to the HTTP and worker layers.
type StorefrontFacade struct {
	auth       *usecase.AuthUseCase
	addresses  *usecase.AddressUseCase
	orders     *usecase.OrderUseCase
	health     HealthChecker
	pendingTTL time.Duration
}

func NewStorefrontFacade(auth *usecase.AuthUseCase, addresses *usecase.AddressUseCase, orders *usecase.OrderUseCase, health HealthChecker, cfg *config.Config) *StorefrontFacade {
	return &StorefrontFacade{
		auth:       auth,
		addresses:  addresses,
		orders:     orders,
		health:     health,
		pendingTTL: cfg.PendingOrderTTL,
	}
}

func (f *StorefrontFacade) Register(ctx context.Context, email, name, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, email, name, password)
	return token, err
}

func (f *StorefrontFacade) Authenticate(ctx context.Context, email, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, email, password)
	return token, err
}

func (f *StorefrontFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *StorefrontFacade) Addresses(ctx context.Context, customerID int64) ([]model.Address, error) {
	return f.addresses.List(ctx, customerID)
}

func (f *StorefrontFacade) CreateAddress(ctx context.Context, customerID int64, fields model.AddressFields) (*model.Address, error) {
	return f.addresses.Create(ctx, customerID, fields)
}

func (f *StorefrontFacade) PlaceOrder(ctx context.Context, customerID int64, cart model.Cart) (*model.Order, error) {
	return f.orders.PlaceOrder(ctx, customerID, cart)
}

func (f *StorefrontFacade) CancelOrder(ctx context.Context, orderID, customerID int64) (*model.Order, error) {
	return f.orders.CancelOrder(ctx, orderID, customerID)
}

func (f *StorefrontFacade) Order(ctx context.Context, orderID, customerID int64) (*model.Order, error) {
	return f.orders.Get(ctx, orderID, customerID)
}

func (f *StorefrontFacade) Orders(ctx context.Context, customerID int64, status model.OrderStatus, page, perPage int) (*model.OrderPage, error) {
	return f.orders.List(ctx, customerID, usecase.ListQuery{Status: status, Page: page, PerPage: perPage})
}

func (f *StorefrontFacade) UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error) {
	return f.orders.UpdateStatus(ctx, orderID, status)
}

func (f *StorefrontFacade) HealthCheck(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}

// StalePendingOrders lists unpaid pending orders older than the configured TTL.
func (f *StorefrontFacade) StalePendingOrders(ctx context.Context, limit int) ([]model.Order, error) {
	return f.orders.StalePending(ctx, f.pendingTTL, limit)
}

func (f *StorefrontFacade) ExpireOrder(ctx context.Context, orderID int64) error {
	_, err := f.orders.Expire(ctx, orderID)
	return err
}
