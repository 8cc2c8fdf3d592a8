package repository

import (
	"context"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create inserts the order header and fills ID and timestamps.
	// It returns ErrDuplicateOrderReference when the number is taken.
	Create(ctx context.Context, order *model.Order) error
	AddItem(ctx context.Context, item *model.OrderItem) error
	Get(ctx context.Context, id int64) (*model.Order, error)
	// Lock reads the order and holds a row lock until the transaction ends.
	Lock(ctx context.Context, id int64) (*model.Order, error)
	Items(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error)
	ListByCustomer(ctx context.Context, customerID int64, filter model.OrderFilter) (*model.OrderPage, error)
	ListStalePending(ctx context.Context, placedBefore time.Time, limit int) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus, payment model.PaymentStatus) error
}
