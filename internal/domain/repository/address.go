package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// AddressRepository is the customer address book.
type AddressRepository interface {
	GetForCustomer(ctx context.Context, id, customerID int64) (*model.Address, error)
	Create(ctx context.Context, customerID int64, fields model.AddressFields) (*model.Address, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]model.Address, error)
}
