package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Quantity applies when no variant is chosen.
type Product struct {
	ID       int64
	Name     string
	SKU      string
	Price    decimal.Decimal
	Quantity int
}

// ProductItem is a purchasable variant of a product.
type ProductItem struct {
	ID        int64
	ProductID int64
	SKU       string
	Price     decimal.Decimal
	Quantity  int
	IsDefault bool
}

// StockKey addresses either a variant or, when ProductItemID is nil, the product itself.
type StockKey struct {
	ProductID     int64
	ProductItemID *int64
}

// Less orders keys by product id, then variant id, with the product row
// itself first. Stock rows are always updated in this order.
func (k StockKey) Less(o StockKey) bool {
	if k.ProductID != o.ProductID {
		return k.ProductID < o.ProductID
	}
	switch {
	case k.ProductItemID == nil:
		return o.ProductItemID != nil
	case o.ProductItemID == nil:
		return false
	default:
		return *k.ProductItemID < *o.ProductItemID
	}
}

// SortByStockKey returns the items reordered by StockKey.Less. The input is not modified.
func SortByStockKey(items []OrderItem) []OrderItem {
	sorted := append([]OrderItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StockTarget().Less(sorted[j].StockTarget())
	})
	return sorted
}
