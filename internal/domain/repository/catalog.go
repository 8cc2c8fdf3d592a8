package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CatalogRepository exposes product prices and stock.
type CatalogRepository interface {
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	// GetProductItem returns ErrInvalidVariant unless the item belongs to productID.
	GetProductItem(ctx context.Context, productID, itemID int64) (*model.ProductItem, error)
	// DecrementStock subtracts quantity only if enough is available,
	// returning ErrInsufficientStock otherwise.
	DecrementStock(ctx context.Context, key model.StockKey, quantity int) error
	IncrementStock(ctx context.Context, key model.StockKey, quantity int) error
}
