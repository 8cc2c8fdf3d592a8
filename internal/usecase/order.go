package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const (
	defaultReferenceAttempts = 5
	defaultPerPage           = 15
	maxPerPage               = 100
	maxPage                  = 1_000_000
)

// Cancellation reasons reported in events and metrics.
const (
	CancelReasonCustomer = "customer"
	CancelReasonAdmin    = "admin"
	CancelReasonExpired  = "expired"
)

var tracer = otel.Tracer("github.com/polkiloo/storefront/internal/usecase")

// OrderOptions carries the collaborators of OrderUseCase. Zero values
// fall back to no-op implementations.
type OrderOptions struct {
	Pricing           Pricing
	References        ReferenceGenerator
	ReferenceAttempts int
	Events            EventPublisher
	Metrics           OrderMetrics
	Logger            *slog.Logger
	Now               func() time.Time
}

// OrderUseCase places, cancels and advances orders.
type OrderUseCase struct {
	tx       repository.Transactor
	repos    repository.Factory
	pricing  Pricing
	refs     ReferenceGenerator
	attempts int
	events   EventPublisher
	metrics  OrderMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(tx repository.Transactor, repos repository.Factory, opts OrderOptions) *OrderUseCase {
	u := &OrderUseCase{
		tx:       tx,
		repos:    repos,
		pricing:  opts.Pricing,
		refs:     opts.References,
		attempts: opts.ReferenceAttempts,
		events:   opts.Events,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if u.refs == nil {
		u.refs = NewRandomReference("ORD-")
	}
	if u.attempts <= 0 {
		u.attempts = defaultReferenceAttempts
	}
	if u.events == nil {
		u.events = nopPublisher{}
	}
	if u.metrics == nil {
		u.metrics = nopMetrics{}
	}
	if u.logger == nil {
		u.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if u.now == nil {
		u.now = time.Now
	}
	return u
}

// PlaceOrder validates cart and, in one transaction, resolves addresses,
// prices every line, persists the order with its items and takes the stock.
func (u *OrderUseCase) PlaceOrder(ctx context.Context, customerID int64, cart model.Cart) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderUseCase.PlaceOrder", trace.WithAttributes(
		attribute.Int64("customer.id", customerID),
		attribute.Int("cart.lines", len(cart.Items)),
	))
	defer span.End()

	if err := ValidateCart(cart); err != nil {
		return nil, u.reject(ctx, span, "place", err)
	}

	var order *model.Order
	err := u.tx.WithinTransaction(ctx, func(f repository.Factory) error {
		var err error
		order, err = u.place(ctx, f, customerID, cart)
		return err
	})
	if err != nil {
		return nil, u.reject(ctx, span, "place", err)
	}

	span.SetAttributes(
		attribute.Int64("order.id", order.ID),
		attribute.String("order.number", order.Number),
		attribute.String("order.total", order.Total.StringFixed(moneyPlaces)),
	)
	u.metrics.OrderPlaced(order.Total, len(order.Items))
	u.logger.InfoContext(ctx, "order placed",
		slog.Int64("order_id", order.ID),
		slog.String("order_number", order.Number),
		slog.Int64("customer_id", customerID),
		slog.String("total", order.Total.StringFixed(moneyPlaces)),
	)
	u.publish(ctx, model.NewOrderEvent(model.OrderEventPlaced, order, "", u.now()))

	return order, nil
}

type pricedLine struct {
	item      model.OrderItem
	available int
}

func (u *OrderUseCase) place(ctx context.Context, f repository.Factory, customerID int64, cart model.Cart) (*model.Order, error) {
	shipping, err := resolveAddress(ctx, f.Addresses(), customerID, cart.ShippingAddress)
	if err != nil {
		return nil, err
	}

	billing := shipping
	if !cart.SameAsShipping && cart.BillingAddress != nil {
		if billing, err = resolveAddress(ctx, f.Addresses(), customerID, *cart.BillingAddress); err != nil {
			return nil, err
		}
	}

	lines := make([]pricedLine, 0, len(cart.Items))
	for _, cl := range cart.Items {
		line, err := priceLine(ctx, f.Catalog(), cl)
		if err != nil {
			return nil, err
		}
		if line.item.Quantity > line.available {
			return nil, stockError(line.item, line.available)
		}
		lines = append(lines, line)
	}

	items := make([]model.OrderItem, len(lines))
	for i, l := range lines {
		items[i] = l.item
	}

	totals, err := u.pricing.Compute(items, cart.ShippingAmount, cart.DiscountAmount)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		CustomerID:        customerID,
		Status:            model.OrderStatusPending,
		PaymentStatus:     model.PaymentStatusPending,
		PaymentMethod:     cart.PaymentMethod,
		ShippingMethod:    cart.ShippingMethod,
		DiscountCode:      cart.DiscountCode,
		Notes:             cart.Notes,
		ShippingAddressID: shipping.ID,
		BillingAddressID:  billing.ID,
		ShippingAddress:   shipping,
		BillingAddress:    billing,
	}
	totals.Apply(order)

	if err := u.createWithReference(ctx, f.Orders(), order); err != nil {
		return nil, err
	}

	for i := range items {
		items[i].OrderID = order.ID
		if err := f.Orders().AddItem(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	for _, it := range model.SortByStockKey(items) {
		if err := f.Catalog().DecrementStock(ctx, it.StockTarget(), it.Quantity); err != nil {
			if errors.Is(err, domainErrors.ErrInsufficientStock) {
				return nil, stockError(it, currentStock(ctx, f.Catalog(), it))
			}
			return nil, err
		}
	}
	order.Items = items

	return order, nil
}

func (u *OrderUseCase) createWithReference(ctx context.Context, orders repository.OrderRepository, order *model.Order) error {
	for attempt := 1; ; attempt++ {
		number, err := u.refs.Next()
		if err != nil {
			return err
		}
		order.Number = number

		err = orders.Create(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domainErrors.ErrDuplicateOrderReference) {
			return err
		}

		u.metrics.ReferenceCollision()
		u.logger.WarnContext(ctx, "order reference collision",
			slog.String("order_number", number),
			slog.Int("attempt", attempt),
		)
		if attempt >= u.attempts {
			return err
		}
	}
}

func resolveAddress(ctx context.Context, addresses repository.AddressRepository, customerID int64, ref model.AddressRef) (*model.Address, error) {
	if ref.ID > 0 {
		return addresses.GetForCustomer(ctx, ref.ID, customerID)
	}
	return addresses.Create(ctx, customerID, *ref.Fields)
}

func priceLine(ctx context.Context, catalog repository.CatalogRepository, cl model.CartLine) (pricedLine, error) {
	product, err := catalog.GetProduct(ctx, cl.ProductID)
	if err != nil {
		return pricedLine{}, err
	}

	line := pricedLine{
		item: model.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductPrice: product.Price,
			Quantity:     cl.Quantity,
			Options:      cl.Options,
		},
		available: product.Quantity,
	}

	if cl.ProductItemID != nil {
		variant, err := catalog.GetProductItem(ctx, product.ID, *cl.ProductItemID)
		if err != nil {
			return pricedLine{}, err
		}
		id := variant.ID
		line.item.ProductItemID = &id
		line.item.ProductPrice = variant.Price
		line.available = variant.Quantity
	}

	return line, nil
}

func currentStock(ctx context.Context, catalog repository.CatalogRepository, it model.OrderItem) int {
	if it.ProductItemID != nil {
		if v, err := catalog.GetProductItem(ctx, it.ProductID, *it.ProductItemID); err == nil {
			return v.Quantity
		}
		return 0
	}
	if p, err := catalog.GetProduct(ctx, it.ProductID); err == nil {
		return p.Quantity
	}
	return 0
}

func stockError(it model.OrderItem, available int) error {
	return &domainErrors.StockError{
		ProductID:   it.ProductID,
		VariantID:   it.ProductItemID,
		ProductName: it.ProductName,
		Requested:   it.Quantity,
		Available:   available,
	}
}

// CancelOrder cancels a pending or processing order owned by customerID
// and returns its stock.
func (u *OrderUseCase) CancelOrder(ctx context.Context, orderID, customerID int64) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderUseCase.CancelOrder", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Int64("customer.id", customerID),
	))
	defer span.End()

	order, previous, err := u.cancel(ctx, orderID, func(o *model.Order) error {
		if o.CustomerID != customerID {
			return domainErrors.ErrOrderNotFound
		}
		return nil
	})
	if err != nil {
		return nil, u.reject(ctx, span, "cancel", err)
	}

	u.afterCancel(ctx, order, previous, CancelReasonCustomer)
	return order, nil
}

// Expire cancels an order that is still pending and unpaid.
func (u *OrderUseCase) Expire(ctx context.Context, orderID int64) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderUseCase.Expire", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	order, previous, err := u.cancel(ctx, orderID, func(o *model.Order) error {
		if o.Status != model.OrderStatusPending || o.PaymentStatus != model.PaymentStatusPending {
			return domainErrors.ErrOrderNotCancellable
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	u.afterCancel(ctx, order, previous, CancelReasonExpired)
	return order, nil
}

// StalePending lists unpaid pending orders placed more than ttl ago.
func (u *OrderUseCase) StalePending(ctx context.Context, ttl time.Duration, limit int) ([]model.Order, error) {
	return u.repos.Orders().ListStalePending(ctx, u.now().Add(-ttl), limit)
}

func (u *OrderUseCase) cancel(ctx context.Context, orderID int64, check func(*model.Order) error) (*model.Order, model.OrderStatus, error) {
	var (
		order    *model.Order
		previous model.OrderStatus
	)
	err := u.tx.WithinTransaction(ctx, func(f repository.Factory) error {
		o, err := f.Orders().Lock(ctx, orderID)
		if err != nil {
			return err
		}
		if err := check(o); err != nil {
			return err
		}
		if !o.Status.Cancellable() {
			return domainErrors.ErrOrderNotCancellable
		}

		items, err := f.Orders().Items(ctx, []int64{o.ID})
		if err != nil {
			return err
		}
		for _, it := range model.SortByStockKey(items[o.ID]) {
			if err := f.Catalog().IncrementStock(ctx, it.StockTarget(), it.Quantity); err != nil {
				return err
			}
		}

		payment := o.PaymentStatus
		if payment == model.PaymentStatusPaid {
			payment = model.PaymentStatusRefunded
		}
		if err := f.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusCancelled, payment); err != nil {
			return err
		}

		previous = o.Status
		o.Status = model.OrderStatusCancelled
		o.PaymentStatus = payment
		o.Items = items[o.ID]
		order = o
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return order, previous, nil
}

func (u *OrderUseCase) afterCancel(ctx context.Context, order *model.Order, previous model.OrderStatus, reason string) {
	u.metrics.OrderCancelled(reason)
	u.metrics.StatusChanged(previous, model.OrderStatusCancelled)
	u.logger.InfoContext(ctx, "order cancelled",
		slog.Int64("order_id", order.ID),
		slog.String("order_number", order.Number),
		slog.String("previous_status", string(previous)),
		slog.String("reason", reason),
	)
	event := model.NewOrderEvent(model.OrderEventCancelled, order, previous, u.now())
	event.Reason = reason
	u.publish(ctx, event)
}

// UpdateStatus moves an order along the status state machine on behalf
// of the back office. Cancelling restores stock like CancelOrder.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderUseCase.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("order.status", string(status)),
	))
	defer span.End()

	if !status.Valid() {
		return nil, u.reject(ctx, span, "update_status", domainErrors.Invalid("status", "is not a known order status"))
	}

	if status == model.OrderStatusCancelled {
		order, previous, err := u.cancel(ctx, orderID, func(o *model.Order) error {
			if !o.Status.CanTransitionTo(status) {
				return &domainErrors.TransitionError{From: string(o.Status), To: string(status)}
			}
			return nil
		})
		if err != nil {
			return nil, u.reject(ctx, span, "update_status", err)
		}
		u.afterCancel(ctx, order, previous, CancelReasonAdmin)
		return order, nil
	}

	var (
		order    *model.Order
		previous model.OrderStatus
	)
	err := u.tx.WithinTransaction(ctx, func(f repository.Factory) error {
		o, err := f.Orders().Lock(ctx, orderID)
		if err != nil {
			return err
		}
		if !o.Status.CanTransitionTo(status) {
			return &domainErrors.TransitionError{From: string(o.Status), To: string(status)}
		}

		payment := o.PaymentStatus
		if status == model.OrderStatusRefunded {
			payment = model.PaymentStatusRefunded
		}
		if err := f.Orders().UpdateStatus(ctx, o.ID, status, payment); err != nil {
			return err
		}

		items, err := f.Orders().Items(ctx, []int64{o.ID})
		if err != nil {
			return err
		}

		previous = o.Status
		o.Status = status
		o.PaymentStatus = payment
		o.Items = items[o.ID]
		order = o
		return nil
	})
	if err != nil {
		return nil, u.reject(ctx, span, "update_status", err)
	}

	u.metrics.StatusChanged(previous, status)
	u.logger.InfoContext(ctx, "order status changed",
		slog.Int64("order_id", order.ID),
		slog.String("from", string(previous)),
		slog.String("to", string(status)),
	)
	u.publish(ctx, model.NewOrderEvent(model.OrderEventStatusChanged, order, previous, u.now()))

	return order, nil
}

// Get returns the order aggregate with items and both addresses.
func (u *OrderUseCase) Get(ctx context.Context, orderID, customerID int64) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderUseCase.Get", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	order, err := u.repos.Orders().Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, domainErrors.ErrOrderNotFound
	}

	items, err := u.repos.Orders().Items(ctx, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]

	if order.ShippingAddress, err = u.repos.Addresses().GetForCustomer(ctx, order.ShippingAddressID, customerID); err != nil {
		return nil, err
	}
	order.BillingAddress = order.ShippingAddress
	if order.BillingAddressID != order.ShippingAddressID {
		if order.BillingAddress, err = u.repos.Addresses().GetForCustomer(ctx, order.BillingAddressID, customerID); err != nil {
			return nil, err
		}
	}

	return order, nil
}

// ListQuery selects a page of a customer's orders.
type ListQuery struct {
	Status  model.OrderStatus
	Page    int
	PerPage int
}

// List returns the customer's orders, newest first, with their items.
func (u *OrderUseCase) List(ctx context.Context, customerID int64, q ListQuery) (*model.OrderPage, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, domainErrors.Invalid("status", "is not a known order status")
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > maxPage {
		return nil, domainErrors.Invalid("page", fmt.Sprintf("must be at most %d", maxPage))
	}
	switch {
	case q.PerPage <= 0:
		q.PerPage = defaultPerPage
	case q.PerPage > maxPerPage:
		q.PerPage = maxPerPage
	}

	page, err := u.repos.Orders().ListByCustomer(ctx, customerID, model.OrderFilter{
		Status: q.Status,
		Limit:  q.PerPage,
		Offset: (q.Page - 1) * q.PerPage,
	})
	if err != nil {
		return nil, err
	}
	page.Page = q.Page
	page.PerPage = q.PerPage

	if len(page.Orders) == 0 {
		return page, nil
	}

	ids := make([]int64, len(page.Orders))
	for i, o := range page.Orders {
		ids[i] = o.ID
	}
	items, err := u.repos.Orders().Items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range page.Orders {
		page.Orders[i].Items = items[page.Orders[i].ID]
	}
	return page, nil
}

func (u *OrderUseCase) reject(ctx context.Context, span trace.Span, op string, err error) error {
	code := domainErrors.Code(err)
	span.RecordError(err)
	span.SetAttributes(attribute.String("error.code", code))

	if domainErrors.KindOf(err) == domainErrors.KindInternal {
		span.SetStatus(codes.Error, err.Error())
		u.logger.ErrorContext(ctx, "order operation failed", slog.String("op", op), slog.Any("error", err))
	} else {
		u.logger.InfoContext(ctx, "order operation rejected", slog.String("op", op), slog.String("code", code), slog.String("reason", err.Error()))
	}

	if op == "place" {
		u.metrics.OrderRejected(code)
	}
	return err
}

func (u *OrderUseCase) publish(ctx context.Context, event model.OrderEvent) {
	if err := u.events.Publish(ctx, event); err != nil {
		u.logger.WarnContext(ctx, "publish order event failed",
			slog.String("type", string(event.Type)),
			slog.Int64("order_id", event.OrderID),
			slog.Any("error", err),
		)
	}
}
