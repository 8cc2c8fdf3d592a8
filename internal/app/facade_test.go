package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/config"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	testhelpers "github.com/polkiloo/storefront/internal/test"
	"github.com/polkiloo/storefront/internal/usecase"
)

type healthStub struct{ err error }

func (h healthStub) HealthCheck(context.Context) error { return h.err }

func newFacade(health HealthChecker) (*StorefrontFacade, *testhelpers.Store) {
	store := testhelpers.NewStore()
	strategy := testhelpers.StrategyStub{ParseFn: func(string) (int64, error) { return 99, nil }}
	authUC := usecase.NewAuthUseCase(store, testhelpers.HasherStub{}, strategy)
	addressUC := usecase.NewAddressUseCase(store)
	orderUC := usecase.NewOrderUseCase(store, store, usecase.OrderOptions{
		Pricing: usecase.NewPricing(decimal.RequireFromString("0.08")),
	})
	cfg := &config.Config{PendingOrderTTL: time.Hour}
	return NewStorefrontFacade(authUC, addressUC, orderUC, health, cfg), store
}

func TestStorefrontFacadeAuth(t *testing.T) {
	facade, store := newFacade(nil)
	ctx := context.Background()

	token, err := facade.Register(ctx, "user@example.com", "User", "password")
	if err != nil || token != "token" {
		t.Fatalf("register: %q %v", token, err)
	}
	if _, err := store.Customers().GetByEmail(ctx, "user@example.com"); err != nil {
		t.Fatalf("customer not stored: %v", err)
	}

	token, err = facade.Authenticate(ctx, "user@example.com", "password")
	if err != nil || token != "token" {
		t.Fatalf("authenticate: %q %v", token, err)
	}
	if _, err := facade.Authenticate(ctx, "user@example.com", "wrong-password"); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	id, err := facade.ParseToken("anything")
	if err != nil || id != 99 {
		t.Fatalf("expected id 99, got %d %v", id, err)
	}
}

func TestStorefrontFacadeOrderFlow(t *testing.T) {
	facade, store := newFacade(nil)
	ctx := context.Background()
	const customerID = int64(5)

	productID := store.AddProduct(model.Product{Name: "Lamp", SKU: "LAMP", Price: decimal.RequireFromString("40"), Quantity: 4})
	addr, err := facade.CreateAddress(ctx, customerID, model.AddressFields{
		FirstName: "Grace", LastName: "Hopper", Line1: "1 Navy Way", City: "Arlington", PostalCode: "22202", Country: "US",
	})
	if err != nil {
		t.Fatalf("create address: %v", err)
	}
	list, err := facade.Addresses(ctx, customerID)
	if err != nil || len(list) != 1 {
		t.Fatalf("addresses: %v %v", list, err)
	}

	order, err := facade.PlaceOrder(ctx, customerID, model.Cart{
		Items:           []model.CartLine{{ProductID: productID, Quantity: 3}},
		ShippingAddress: model.AddressRef{ID: addr.ID},
		PaymentMethod:   model.PaymentMethodBankTransfer,
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if !order.Total.Equal(decimal.RequireFromString("129.6")) {
		t.Fatalf("unexpected total %s", order.Total)
	}
	if store.ProductStock(productID) != 1 {
		t.Fatalf("expected stock 1, got %d", store.ProductStock(productID))
	}

	got, err := facade.Order(ctx, order.ID, customerID)
	if err != nil || got.Number != order.Number {
		t.Fatalf("order: %+v %v", got, err)
	}
	if _, err := facade.Order(ctx, order.ID, customerID+1); !errors.Is(err, domainErrors.ErrOrderNotFound) {
		t.Fatalf("expected not found for foreign order, got %v", err)
	}

	page, err := facade.Orders(ctx, customerID, model.OrderStatusPending, 1, 10)
	if err != nil || page.Total != 1 {
		t.Fatalf("orders: %+v %v", page, err)
	}

	updated, err := facade.UpdateOrderStatus(ctx, order.ID, model.OrderStatusProcessing)
	if err != nil || updated.Status != model.OrderStatusProcessing {
		t.Fatalf("update status: %+v %v", updated, err)
	}

	cancelled, err := facade.CancelOrder(ctx, order.ID, customerID)
	if err != nil || cancelled.Status != model.OrderStatusCancelled {
		t.Fatalf("cancel: %+v %v", cancelled, err)
	}
	if store.ProductStock(productID) != 4 {
		t.Fatalf("expected stock restored to 4, got %d", store.ProductStock(productID))
	}
}

func TestStorefrontFacadeExpiry(t *testing.T) {
	facade, store := newFacade(nil)
	ctx := context.Background()

	productID := store.AddProduct(model.Product{Name: "Lamp", SKU: "LAMP", Price: decimal.RequireFromString("40"), Quantity: 2})
	addrID := store.AddAddress(1, model.AddressFields{FirstName: "A", Line1: "L", City: "C", PostalCode: "P", Country: "US"})
	order, err := facade.PlaceOrder(ctx, 1, model.Cart{
		Items:           []model.CartLine{{ProductID: productID, Quantity: 2}},
		ShippingAddress: model.AddressRef{ID: addrID},
		PaymentMethod:   model.PaymentMethodCashOnDelivery,
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	stale, err := facade.StalePendingOrders(ctx, 10)
	if err != nil || len(stale) != 0 {
		t.Fatalf("expected fresh order to be skipped, got %v %v", stale, err)
	}

	store.SetOrderCreatedAt(order.ID, time.Now().Add(-2*time.Hour))
	stale, err = facade.StalePendingOrders(ctx, 10)
	if err != nil || len(stale) != 1 || stale[0].ID != order.ID {
		t.Fatalf("expected stale order, got %v %v", stale, err)
	}

	if err := facade.ExpireOrder(ctx, order.ID); err != nil {
		t.Fatalf("expire: %v", err)
	}
	if store.ProductStock(productID) != 2 {
		t.Fatalf("expected stock restored, got %d", store.ProductStock(productID))
	}
	if err := facade.ExpireOrder(ctx, order.ID); !errors.Is(err, domainErrors.ErrOrderNotCancellable) {
		t.Fatalf("expected second expiry to be rejected, got %v", err)
	}
}

func TestStorefrontFacadeHealthCheck(t *testing.T) {
	facade, _ := newFacade(nil)
	if err := facade.HealthCheck(context.Background()); err != nil {
		t.Fatalf("expected nil checker to be healthy, got %v", err)
	}

	down := errors.New("pool closed")
	facade, _ = newFacade(healthStub{err: down})
	if err := facade.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected checker error, got %v", err)
	}
}
