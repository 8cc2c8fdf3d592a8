package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type orderRepository struct {
	q querier
}

const orderColumns = `id, order_number, customer_id, status, payment_status,
       subtotal, tax_amount, shipping_amount, discount_amount, total,
       payment_method, shipping_method, discount_code, notes,
       shipping_address_id, billing_address_id, created_at, updated_at`

const orderItemColumns = `id, order_id, product_id, product_item_id, product_name, product_price, quantity, options, review_id`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.Number, &o.CustomerID, &o.Status, &o.PaymentStatus,
		&o.Subtotal, &o.TaxAmount, &o.ShippingAmount, &o.DiscountAmount, &o.Total,
		&o.PaymentMethod, &o.ShippingMethod, &o.DiscountCode, &o.Notes,
		&o.ShippingAddressID, &o.BillingAddressID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	const query = `INSERT INTO orders (order_number, customer_id, status, payment_status,
                       subtotal, tax_amount, shipping_amount, discount_amount, total,
                       payment_method, shipping_method, discount_code, notes,
                       shipping_address_id, billing_address_id)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
                   ON CONFLICT (order_number) DO NOTHING
                   RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, o.Number, o.CustomerID, o.Status, o.PaymentStatus,
		o.Subtotal, o.TaxAmount, o.ShippingAmount, o.DiscountAmount, o.Total,
		o.PaymentMethod, o.ShippingMethod, o.DiscountCode, o.Notes,
		o.ShippingAddressID, o.BillingAddressID).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrDuplicateOrderReference
		}
		return err
	}
	return nil
}

func (r *orderRepository) AddItem(ctx context.Context, it *model.OrderItem) error {
	const query = `INSERT INTO order_items (order_id, product_id, product_item_id, product_name, product_price, quantity, options)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   RETURNING id`
	var options []byte
	if len(it.Options) > 0 {
		raw, err := json.Marshal(it.Options)
		if err != nil {
			return fmt.Errorf("encode item options: %w", err)
		}
		options = raw
	}
	return r.q.QueryRow(ctx, query, it.OrderID, it.ProductID, it.ProductItemID,
		it.ProductName, it.ProductPrice, it.Quantity, options).Scan(&it.ID)
}

func (r *orderRepository) Get(ctx context.Context, id int64) (*model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
}

func (r *orderRepository) Lock(ctx context.Context, id int64) (*model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id)
}

func (r *orderRepository) getOne(ctx context.Context, query string, id int64) (*model.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) Items(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	result := make(map[int64][]model.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	const query = `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, id`
	rows, err := r.q.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it      model.OrderItem
			options []byte
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductItemID, &it.ProductName,
			&it.ProductPrice, &it.Quantity, &options, &it.ReviewID); err != nil {
			return nil, err
		}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &it.Options); err != nil {
				return nil, fmt.Errorf("decode item options: %w", err)
			}
		}
		result[it.OrderID] = append(result[it.OrderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID int64, f model.OrderFilter) (*model.OrderPage, error) {
	var status *string
	if f.Status != "" {
		s := string(f.Status)
		status = &s
	}

	const countQuery = `SELECT COUNT(*) FROM orders WHERE customer_id=$1 AND ($2::text IS NULL OR status=$2)`
	page := &model.OrderPage{}
	if err := r.q.QueryRow(ctx, countQuery, customerID, status).Scan(&page.Total); err != nil {
		return nil, err
	}
	if page.Total == 0 {
		return page, nil
	}

	const listQuery = `SELECT ` + orderColumns + ` FROM orders
                       WHERE customer_id=$1 AND ($2::text IS NULL OR status=$2)
                       ORDER BY created_at DESC, id DESC
                       LIMIT $3 OFFSET $4`
	orders, err := r.list(ctx, listQuery, customerID, status, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	page.Orders = orders
	return page, nil
}

func (r *orderRepository) ListStalePending(ctx context.Context, placedBefore time.Time, limit int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE status='pending' AND payment_status='pending' AND created_at < $1
                   ORDER BY created_at
                   LIMIT $2`
	return r.list(ctx, query, placedBefore, limit)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus, payment model.PaymentStatus) error {
	const query = `UPDATE orders SET status=$1, payment_status=$2, updated_at=NOW() WHERE id=$3`
	tag, err := r.q.Exec(ctx, query, status, payment, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrOrderNotFound
	}
	return nil
}
