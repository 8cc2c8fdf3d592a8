package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type addressRepository struct {
	q querier
}

const addressColumns = `id, customer_id, first_name, last_name, phone, line1, line2, city, state, postal_code, country, created_at`

func scanAddress(row pgx.Row) (*model.Address, error) {
	var a model.Address
	err := row.Scan(&a.ID, &a.CustomerID, &a.FirstName, &a.LastName, &a.Phone,
		&a.Line1, &a.Line2, &a.City, &a.State, &a.PostalCode, &a.Country, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *addressRepository) GetForCustomer(ctx context.Context, id, customerID int64) (*model.Address, error) {
	const query = `SELECT ` + addressColumns + ` FROM addresses WHERE id=$1 AND customer_id=$2`
	a, err := scanAddress(r.q.QueryRow(ctx, query, id, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrAddressNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *addressRepository) Create(ctx context.Context, customerID int64, f model.AddressFields) (*model.Address, error) {
	const query = `INSERT INTO addresses (customer_id, first_name, last_name, phone, line1, line2, city, state, postal_code, country)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
                   RETURNING id, created_at`
	a := model.Address{CustomerID: customerID, AddressFields: f}
	err := r.q.QueryRow(ctx, query, customerID, f.FirstName, f.LastName, f.Phone,
		f.Line1, f.Line2, f.City, f.State, f.PostalCode, f.Country).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *addressRepository) ListByCustomer(ctx context.Context, customerID int64) ([]model.Address, error) {
	const query = `SELECT ` + addressColumns + ` FROM addresses WHERE customer_id=$1 ORDER BY id DESC`
	rows, err := r.q.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
