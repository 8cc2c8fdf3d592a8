package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type customerRepository struct {
	q querier
}

const customerColumns = `id, email, name, password_hash, created_at`

func (r *customerRepository) Create(ctx context.Context, email, name, passwordHash string) (*model.Customer, error) {
	const query = `INSERT INTO customers (email, name, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at`
	c := model.Customer{Email: email, Name: name, PasswordHash: passwordHash}
	if err := r.q.QueryRow(ctx, query, email, name, passwordHash).Scan(&c.ID, &c.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	return r.get(ctx, `SELECT `+customerColumns+` FROM customers WHERE email=$1`, email)
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	return r.get(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=$1`, id)
}

func (r *customerRepository) get(ctx context.Context, query string, arg any) (*model.Customer, error) {
	var c model.Customer
	err := r.q.QueryRow(ctx, query, arg).Scan(&c.ID, &c.Email, &c.Name, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
