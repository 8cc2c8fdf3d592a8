package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polkiloo/storefront/internal/domain/repository"
)

const uniqueViolation = "23505"

// querier is the statement surface shared by the pool and transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxPool interface {
	querier
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

var (
	_ repository.Factory    = (*Storage)(nil)
	_ repository.Transactor = (*Storage)(nil)
)

// New connects to the database and verifies the connection.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.HealthCheck(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Customers returns a repository outside of any transaction.
func (s *Storage) Customers() repository.CustomerRepository {
	return &customerRepository{q: s.pool}
}

func (s *Storage) Catalog() repository.CatalogRepository {
	return &catalogRepository{q: s.pool}
}

func (s *Storage) Addresses() repository.AddressRepository {
	return &addressRepository{q: s.pool}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{q: s.pool}
}

// txFactory binds every repository to one transaction.
type txFactory struct {
	tx pgx.Tx
}

func (f txFactory) Customers() repository.CustomerRepository {
	return &customerRepository{q: f.tx}
}

func (f txFactory) Catalog() repository.CatalogRepository {
	return &catalogRepository{q: f.tx}
}

func (f txFactory) Addresses() repository.AddressRepository {
	return &addressRepository{q: f.tx}
}

func (f txFactory) Orders() repository.OrderRepository {
	return &orderRepository{q: f.tx}
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(repository.Factory) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error("rollback failed", slog.Any("error", rbErr))
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(txFactory{tx: tx})
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
