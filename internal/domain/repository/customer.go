package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CustomerRepository describes persistence operations for customers.
type CustomerRepository interface {
	Create(ctx context.Context, email, name, passwordHash string) (*model.Customer, error)
	GetByEmail(ctx context.Context, email string) (*model.Customer, error)
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
}
