package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

var (
	customerCols = []string{"id", "email", "name", "password_hash", "created_at"}
	addressCols  = []string{"id", "customer_id", "first_name", "last_name", "phone", "line1", "line2", "city", "state", "postal_code", "country", "created_at"}
	orderCols    = []string{"id", "order_number", "customer_id", "status", "payment_status",
		"subtotal", "tax_amount", "shipping_amount", "discount_amount", "total",
		"payment_method", "shipping_method", "discount_code", "notes",
		"shipping_address_id", "billing_address_id", "created_at", "updated_at"}
	orderItemCols = []string{"id", "order_id", "product_id", "product_item_id", "product_name", "product_price", "quantity", "options", "review_id"}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func addOrderRow(rows *pgxmockv3.Rows, id int64, status model.OrderStatus, at time.Time) *pgxmockv3.Rows {
	return rows.AddRow(id, "ORD-ABC", int64(7), status, model.PaymentStatusPending,
		dec("100.00"), dec("10.00"), dec("5.00"), dec("0.00"), dec("115.00"),
		model.PaymentMethodCreditCard, "standard", "", "",
		int64(3), int64(3), at, at)
}

func TestCustomerRepository(t *testing.T) {
	_, mock := newMockStorage(t)
	defer mock.Close()
	repo := &customerRepository{q: mock}

	createdAt := time.Now()
	mock.ExpectQuery("INSERT INTO customers").WithArgs("a@b.c", "Ann", "hash").WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(1), createdAt),
	)
	c, err := repo.Create(context.Background(), "a@b.c", "Ann", "hash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID != 1 || c.Email != "a@b.c" || c.Name != "Ann" {
		t.Fatalf("unexpected customer: %+v", c)
	}

	mock.ExpectQuery("INSERT INTO customers").WithArgs("a@b.c", "Ann", "hash").WillReturnError(&pgconn.PgError{Code: "23505"})
	if _, err := repo.Create(context.Background(), "a@b.c", "Ann", "hash"); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists error, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO customers").WithArgs("a@b.c", "Ann", "hash").WillReturnError(errors.New("other"))
	if _, err := repo.Create(context.Background(), "a@b.c", "Ann", "hash"); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("FROM customers WHERE email=").WithArgs("a@b.c").WillReturnRows(
		pgxmockv3.NewRows(customerCols).AddRow(int64(1), "a@b.c", "Ann", "hash", createdAt))
	if _, err := repo.GetByEmail(context.Background(), "a@b.c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery("FROM customers WHERE email=").WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByEmail(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM customers WHERE id=").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows(customerCols).AddRow(int64(1), "a@b.c", "Ann", "hash", createdAt))
	if got, err := repo.GetByID(context.Background(), 1); err != nil || got.Email != "a@b.c" {
		t.Fatalf("unexpected result: %+v err=%v", got, err)
	}

	mock.ExpectQuery("FROM customers WHERE id=").WithArgs(int64(3)).WillReturnError(errors.New("boom"))
	if _, err := repo.GetByID(context.Background(), 3); err == nil || errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected raw error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestAddressRepository(t *testing.T) {
	_, mock := newMockStorage(t)
	defer mock.Close()
	repo := &addressRepository{q: mock}

	now := time.Now()
	fields := model.AddressFields{FirstName: "Ann", LastName: "Lee", Line1: "1 Main", City: "Oslo", PostalCode: "0150", Country: "NO"}

	mock.ExpectQuery("INSERT INTO addresses").
		WithArgs(int64(7), "Ann", "Lee", "", "1 Main", "", "Oslo", "", "0150", "NO").
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(3), now))
	a, err := repo.Create(context.Background(), 7, fields)
	if err != nil || a.ID != 3 || a.CustomerID != 7 || a.City != "Oslo" {
		t.Fatalf("unexpected address: %+v err=%v", a, err)
	}

	mock.ExpectQuery("FROM addresses WHERE id=").WithArgs(int64(3), int64(7)).WillReturnRows(
		pgxmockv3.NewRows(addressCols).AddRow(int64(3), int64(7), "Ann", "Lee", "", "1 Main", "", "Oslo", "", "0150", "NO", now))
	if got, err := repo.GetForCustomer(context.Background(), 3, 7); err != nil || got.Line1 != "1 Main" {
		t.Fatalf("unexpected address: %+v err=%v", got, err)
	}

	mock.ExpectQuery("FROM addresses WHERE id=").WithArgs(int64(3), int64(8)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetForCustomer(context.Background(), 3, 8); !errors.Is(err, domainErrors.ErrAddressNotFound) {
		t.Fatalf("expected address not found, got %v", err)
	}

	mock.ExpectQuery("FROM addresses WHERE customer_id=").WithArgs(int64(7)).WillReturnRows(
		pgxmockv3.NewRows(addressCols).
			AddRow(int64(4), int64(7), "Ann", "Lee", "", "2 Main", "", "Oslo", "", "0150", "NO", now).
			AddRow(int64(3), int64(7), "Ann", "Lee", "", "1 Main", "", "Oslo", "", "0150", "NO", now))
	list, err := repo.ListByCustomer(context.Background(), 7)
	if err != nil || len(list) != 2 || list[0].ID != 4 {
		t.Fatalf("unexpected list: %+v err=%v", list, err)
	}

	mock.ExpectQuery("FROM addresses WHERE customer_id=").WithArgs(int64(8)).WillReturnError(errors.New("query"))
	if _, err := repo.ListByCustomer(context.Background(), 8); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}

	rowsRepo := &addressRepository{q: &rowsErrorQuerier{rows: &errorRows{err: errors.New("rows err")}}}
	if _, err := rowsRepo.ListByCustomer(context.Background(), 1); err == nil || err.Error() != "rows err" {
		t.Fatalf("expected rows err, got %v", err)
	}
}

func TestCatalogRepositoryLookups(t *testing.T) {
	_, mock := newMockStorage(t)
	defer mock.Close()
	repo := &catalogRepository{q: mock}

	mock.ExpectQuery("FROM products WHERE id=").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "name", "sku", "price", "quantity"}).AddRow(int64(1), "Mug", "MUG", dec("12.50"), 4))
	p, err := repo.GetProduct(context.Background(), 1)
	if err != nil || p.Name != "Mug" || !p.Price.Equal(dec("12.5")) || p.Quantity != 4 {
		t.Fatalf("unexpected product: %+v err=%v", p, err)
	}

	mock.ExpectQuery("FROM products WHERE id=").WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetProduct(context.Background(), 2); !errors.Is(err, domainErrors.ErrProductNotFound) {
		t.Fatalf("expected product not found, got %v", err)
	}

	itemCols := []string{"id", "product_id", "sku", "price", "quantity", "is_default"}
	mock.ExpectQuery("FROM product_items WHERE id=").WithArgs(int64(10)).WillReturnRows(
		pgxmockv3.NewRows(itemCols).AddRow(int64(10), int64(1), "MUG-RED", dec("14.00"), 2, true))
	it, err := repo.GetProductItem(context.Background(), 1, 10)
	if err != nil || it.SKU != "MUG-RED" || !it.IsDefault {
		t.Fatalf("unexpected item: %+v err=%v", it, err)
	}

	mock.ExpectQuery("FROM product_items WHERE id=").WithArgs(int64(10)).WillReturnRows(
		pgxmockv3.NewRows(itemCols).AddRow(int64(10), int64(1), "MUG-RED", dec("14.00"), 2, true))
	if _, err := repo.GetProductItem(context.Background(), 5, 10); !errors.Is(err, domainErrors.ErrInvalidVariant) {
		t.Fatalf("expected invalid variant for foreign item, got %v", err)
	}

	mock.ExpectQuery("FROM product_items WHERE id=").WithArgs(int64(11)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetProductItem(context.Background(), 1, 11); !errors.Is(err, domainErrors.ErrInvalidVariant) {
		t.Fatalf("expected invalid variant, got %v", err)
	}

	mock.ExpectQuery("FROM product_items WHERE id=").WithArgs(int64(12)).WillReturnError(errors.New("down"))
	if _, err := repo.GetProductItem(context.Background(), 1, 12); err == nil || errors.Is(err, domainErrors.ErrInvalidVariant) {
		t.Fatalf("expected raw error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestCatalogRepositoryStock(t *testing.T) {
	_, mock := newMockStorage(t)
	defer mock.Close()
	repo := &catalogRepository{q: mock}
	ctx := context.Background()

	variant := int64(10)
	productKey := model.StockKey{ProductID: 1}
	variantKey := model.StockKey{ProductID: 1, ProductItemID: &variant}

	mock.ExpectExec("UPDATE products SET quantity = quantity -").WithArgs(int64(1), 2).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.DecrementStock(ctx, productKey, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE products SET quantity = quantity -").WithArgs(int64(1), 5).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.DecrementStock(ctx, productKey, 5); !errors.Is(err, domainErrors.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	mock.ExpectExec("UPDATE product_items SET quantity = quantity -").WithArgs(variant, 1, int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.DecrementStock(ctx, variantKey, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE product_items SET quantity = quantity -").WithArgs(variant, 3, int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.DecrementStock(ctx, variantKey, 3); !errors.Is(err, domainErrors.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	mock.ExpectExec("UPDATE products SET quantity = quantity -").WithArgs(int64(1), 1).WillReturnError(errors.New("exec"))
	if err := repo.DecrementStock(ctx, productKey, 1); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectExec("UPDATE products SET quantity = quantity \\+").WithArgs(int64(1), 2).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.IncrementStock(ctx, productKey, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE product_items SET quantity = quantity \\+").WithArgs(variant, 2).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.IncrementStock(ctx, variantKey, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE product_items SET quantity = quantity \\+").WithArgs(variant, 2).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.IncrementStock(ctx, variantKey, 2); !errors.Is(err, domainErrors.ErrProductNotFound) {
		t.Fatalf("expected product not found, got %v", err)
	}

	mock.ExpectExec("UPDATE products SET quantity = quantity \\+").WithArgs(int64(1), 2).WillReturnError(errors.New("exec"))
	if err := repo.IncrementStock(ctx, productKey, 2); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryCreate(t *testing.T) {
	_, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{q: mock}

	now := time.Now()
	order := &model.Order{
		Number:            "ORD-ABC",
		CustomerID:        7,
		Status:            model.OrderStatusPending,
		PaymentStatus:     model.PaymentStatusPending,
		Subtotal:          dec("100"),
		TaxAmount:         dec("10"),
		ShippingAmount:    dec("5"),
		DiscountAmount:    decimal.Zero,
		Total:             dec("115"),
		PaymentMethod:     model.PaymentMethodPayPal,
		ShippingMethod:    "standard",
		ShippingAddressID: 3,
		BillingAddressID:  3,
	}
	args := func() []any {
		return []any{"ORD-ABC", int64(7), model.OrderStatusPending, model.PaymentStatusPending,
			pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(),
			model.PaymentMethodPayPal, "standard", "", "", int64(3), int64(3)}
	}

	mock.ExpectQuery("INSERT INTO orders").WithArgs(args()...).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))
	if err := repo.Create(context.Background(), order); err != nil || order.ID != 42 || !order.CreatedAt.Equal(now) {
		t.Fatalf("unexpected result: %+v err=%v", order, err)
	}

	mock.ExpectQuery("INSERT INTO orders").WithArgs(args()...).WillReturnError(pgx.ErrNoRows)
	if err := repo.Create(context.Background(), order); !errors.Is(err, domainErrors.ErrDuplicateOrderReference) {
		t.Fatalf("expected duplicate reference, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO orders").WithArgs(args()...).WillReturnError(errors.New("insert"))
	if err := repo.Create(context.Background(), order); err == nil || errors.Is(err, domainErrors.ErrDuplicateOrderReference) {
		t.Fatalf("expected raw error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryAddItem(t *testing.T) {
	_, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{q: mock}

	variant := int64(10)
	item := &model.OrderItem{
		OrderID:       42,
		ProductID:     1,
		ProductItemID: &variant,
		ProductName:   "Mug",
		ProductPrice:  dec("14.00"),
		Quantity:      2,
		Options:       map[string]any{"color": "red"},
	}

	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs(int64(42), int64(1), &variant, "Mug", pgxmockv3.AnyArg(), 2, []byte(`{"color":"red"}`)).
		WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(5)))
	if err := repo.AddItem(context.Background(), item); err != nil || item.ID != 5 {
		t.Fatalf("unexpected result: %+v err=%v", item, err)
	}

	bad := &model.OrderItem{OrderID: 42, ProductID: 1, Quantity: 1, Options: map[string]any{"fn": func() {}}}
	if err := repo.AddItem(context.Background(), bad); err == nil {
		t.Fatal("expected options encoding error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryGetAndLock(t *testing.T) {
	_, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{q: mock}

	now := time.Now()
	mock.ExpectQuery("FROM orders WHERE id=").WithArgs(int64(42)).WillReturnRows(
		addOrderRow(pgxmockv3.NewRows(orderCols), 42, model.OrderStatusPending, now))
	o, err := repo.Get(context.Background(), 42)
	if err != nil || o.ID != 42 || o.Number != "ORD-ABC" || !o.Total.Equal(dec("115")) {
		t.Fatalf("unexpected order: %+v err=%v", o, err)
	}

	mock.ExpectQuery("FROM orders WHERE id=.* FOR UPDATE").WithArgs(int64(42)).WillReturnRows(
		addOrderRow(pgxmockv3.NewRows(orderCols), 42, model.OrderStatusProcessing, now))
	o, err = repo.Lock(context.Background(), 42)
	if err != nil || o.Status != model.OrderStatusProcessing {
		t.Fatalf("unexpected order: %+v err=%v", o, err)
	}

	mock.ExpectQuery("FROM orders WHERE id=").WithArgs(int64(43)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.Get(context.Background(), 43); !errors.Is(err, domainErrors.ErrOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}

	mock.ExpectQuery("FROM orders WHERE id=").WithArgs(int64(44)).WillReturnError(errors.New("down"))
	if _, err := repo.Lock(context.Background(), 44); err == nil || errors.Is(err, domainErrors.ErrOrderNotFound) {
		t.Fatalf("expected raw error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryItems(t *testing.T) {
	_, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{q: mock}

	empty, err := repo.Items(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty map, got %v err=%v", empty, err)
	}

	variant := int64(10)
	review := int64(77)
	mock.ExpectQuery("FROM order_items WHERE order_id = ANY").WithArgs([]int64{1, 2}).WillReturnRows(
		pgxmockv3.NewRows(orderItemCols).
			AddRow(int64(1), int64(1), int64(5), &variant, "Mug", dec("14.00"), 2, []byte(`{"color":"red"}`), (*int64)(nil)).
			AddRow(int64(2), int64(1), int64(6), (*int64)(nil), "Cap", dec("9.99"), 1, []byte(nil), (*int64)(nil)).
			AddRow(int64(3), int64(2), int64(5), (*int64)(nil), "Mug", dec("12.00"), 1, []byte(nil), &review))
	items, err := repo.Items(context.Background(), []int64{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items[1]) != 2 || len(items[2]) != 1 {
		t.Fatalf("unexpected grouping: %+v", items)
	}
	if items[1][0].Options["color"] != "red" || items[1][0].ProductItemID == nil || *items[1][0].ProductItemID != 10 {
		t.Fatalf("unexpected first item: %+v", items[1][0])
	}
	if items[2][0].ReviewID == nil || *items[2][0].ReviewID != 77 {
		t.Fatalf("expected review id on item: %+v", items[2][0])
	}

	mock.ExpectQuery("FROM order_items WHERE order_id = ANY").WithArgs([]int64{3}).WillReturnRows(
		pgxmockv3.NewRows(orderItemCols).
			AddRow(int64(4), int64(3), int64(5), (*int64)(nil), "Mug", dec("12.00"), 1, []byte(`{broken`), (*int64)(nil)))
	if _, err := repo.Items(context.Background(), []int64{3}); err == nil {
		t.Fatal("expected options decoding error")
	}

	mock.ExpectQuery("FROM order_items WHERE order_id = ANY").WithArgs([]int64{4}).WillReturnError(errors.New("query"))
	if _, err := repo.Items(context.Background(), []int64{4}); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}

	rowsRepo := &orderRepository{q: &rowsErrorQuerier{rows: &errorRows{err: errors.New("rows err")}}}
	if _, err := rowsRepo.Items(context.Background(), []int64{1}); err == nil || err.Error() != "rows err" {
		t.Fatalf("expected rows err, got %v", err)
	}
}

func TestOrderRepositoryListByCustomer(t *testing.T) {
	_, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{q: mock}

	now := time.Now()
	status := "pending"

	mock.ExpectQuery("SELECT COUNT").WithArgs(int64(7), &status).WillReturnRows(pgxmockv3.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("FROM orders WHERE customer_id=").WithArgs(int64(7), &status, 2, 0).WillReturnRows(
		addOrderRow(addOrderRow(pgxmockv3.NewRows(orderCols), 3, model.OrderStatusPending, now), 2, model.OrderStatusPending, now))
	page, err := repo.ListByCustomer(context.Background(), 7, model.OrderFilter{Status: model.OrderStatusPending, Limit: 2})
	if err != nil || page.Total != 3 || len(page.Orders) != 2 || page.Orders[0].ID != 3 {
		t.Fatalf("unexpected page: %+v err=%v", page, err)
	}

	mock.ExpectQuery("SELECT COUNT").WithArgs(int64(8), (*string)(nil)).WillReturnRows(pgxmockv3.NewRows([]string{"count"}).AddRow(0))
	page, err = repo.ListByCustomer(context.Background(), 8, model.OrderFilter{Limit: 15})
	if err != nil || page.Total != 0 || len(page.Orders) != 0 {
		t.Fatalf("expected empty page, got %+v err=%v", page, err)
	}

	mock.ExpectQuery("SELECT COUNT").WithArgs(int64(9), (*string)(nil)).WillReturnError(errors.New("count"))
	if _, err := repo.ListByCustomer(context.Background(), 9, model.OrderFilter{Limit: 15}); err == nil {
		t.Fatal("expected count error")
	}

	mock.ExpectQuery("SELECT COUNT").WithArgs(int64(10), (*string)(nil)).WillReturnRows(pgxmockv3.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("FROM orders WHERE customer_id=").WithArgs(int64(10), (*string)(nil), 15, 15).WillReturnRows(
		pgxmockv3.NewRows(orderCols).AddRow("bad", "ORD-ABC", int64(7), model.OrderStatusPending, model.PaymentStatusPending,
			dec("1"), dec("0"), dec("0"), dec("0"), dec("1"),
			model.PaymentMethodPayPal, "", "", "", int64(3), int64(3), now, now))
	if _, err := repo.ListByCustomer(context.Background(), 10, model.OrderFilter{Limit: 15, Offset: 15}); err == nil {
		t.Fatal("expected scan error")
	}

	mock.ExpectQuery("SELECT COUNT").WithArgs(int64(11), (*string)(nil)).WillReturnRows(pgxmockv3.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("FROM orders WHERE customer_id=").WithArgs(int64(11), (*string)(nil), 15, 0).WillReturnRows(
		addOrderRow(addOrderRow(pgxmockv3.NewRows(orderCols), 1, model.OrderStatusPending, now), 2, model.OrderStatusPending, now).
			RowError(1, errors.New("row err")))
	if _, err := repo.ListByCustomer(context.Background(), 11, model.OrderFilter{Limit: 15}); err == nil || err.Error() != "row err" {
		t.Fatalf("expected row err, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListStalePending(t *testing.T) {
	_, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{q: mock}

	cutoff := time.Now().Add(-time.Hour)
	mock.ExpectQuery("WHERE status='pending' AND payment_status='pending'").WithArgs(cutoff, 5).WillReturnRows(
		addOrderRow(pgxmockv3.NewRows(orderCols), 1, model.OrderStatusPending, cutoff.Add(-time.Minute)))
	orders, err := repo.ListStalePending(context.Background(), cutoff, 5)
	if err != nil || len(orders) != 1 {
		t.Fatalf("unexpected result: %+v err=%v", orders, err)
	}

	mock.ExpectQuery("WHERE status='pending' AND payment_status='pending'").WithArgs(cutoff, 5).WillReturnError(errors.New("query"))
	if _, err := repo.ListStalePending(context.Background(), cutoff, 5); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}

	rowsRepo := &orderRepository{q: &rowsErrorQuerier{rows: &errorRows{err: errors.New("rows err")}}}
	if _, err := rowsRepo.ListStalePending(context.Background(), cutoff, 5); err == nil || err.Error() != "rows err" {
		t.Fatalf("expected rows err, got %v", err)
	}
}

func TestOrderRepositoryUpdateStatus(t *testing.T) {
	_, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{q: mock}

	mock.ExpectExec("UPDATE orders SET status=").WithArgs(model.OrderStatusShipped, model.PaymentStatusPaid, int64(1)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.UpdateStatus(context.Background(), 1, model.OrderStatusShipped, model.PaymentStatusPaid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE orders SET status=").WithArgs(model.OrderStatusShipped, model.PaymentStatusPaid, int64(2)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.UpdateStatus(context.Background(), 2, model.OrderStatusShipped, model.PaymentStatusPaid); !errors.Is(err, domainErrors.ErrOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}

	mock.ExpectExec("UPDATE orders SET status=").WithArgs(model.OrderStatusShipped, model.PaymentStatusPaid, int64(3)).
		WillReturnError(errors.New("update"))
	if err := repo.UpdateStatus(context.Background(), 3, model.OrderStatusShipped, model.PaymentStatusPaid); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
