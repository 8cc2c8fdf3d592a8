package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type catalogRepository struct {
	q querier
}

func (r *catalogRepository) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	const query = `SELECT id, name, sku, price, quantity FROM products WHERE id=$1`
	var p model.Product
	if err := r.q.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.Quantity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *catalogRepository) GetProductItem(ctx context.Context, productID, itemID int64) (*model.ProductItem, error) {
	const query = `SELECT id, product_id, sku, price, quantity, is_default FROM product_items WHERE id=$1`
	var it model.ProductItem
	err := r.q.QueryRow(ctx, query, itemID).Scan(&it.ID, &it.ProductID, &it.SKU, &it.Price, &it.Quantity, &it.IsDefault)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrInvalidVariant
		}
		return nil, err
	}
	if it.ProductID != productID {
		return nil, domainErrors.ErrInvalidVariant
	}
	return &it, nil
}

// DecrementStock relies on the row lock taken by UPDATE, so concurrent
// checkouts of the last units serialize and only one of them succeeds.
func (r *catalogRepository) DecrementStock(ctx context.Context, key model.StockKey, quantity int) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if key.ProductItemID != nil {
		const query = `UPDATE product_items SET quantity = quantity - $2, updated_at = NOW()
                       WHERE id=$1 AND product_id=$3 AND quantity >= $2`
		tag, err = r.q.Exec(ctx, query, *key.ProductItemID, quantity, key.ProductID)
	} else {
		const query = `UPDATE products SET quantity = quantity - $2, updated_at = NOW()
                       WHERE id=$1 AND quantity >= $2`
		tag, err = r.q.Exec(ctx, query, key.ProductID, quantity)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrInsufficientStock
	}
	return nil
}

func (r *catalogRepository) IncrementStock(ctx context.Context, key model.StockKey, quantity int) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if key.ProductItemID != nil {
		const query = `UPDATE product_items SET quantity = quantity + $2, updated_at = NOW() WHERE id=$1`
		tag, err = r.q.Exec(ctx, query, *key.ProductItemID, quantity)
	} else {
		const query = `UPDATE products SET quantity = quantity + $2, updated_at = NOW() WHERE id=$1`
		tag, err = r.q.Exec(ctx, query, key.ProductID, quantity)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrProductNotFound
	}
	return nil
}
