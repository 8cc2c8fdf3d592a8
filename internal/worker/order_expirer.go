package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// ExpiryFacade exposes the subset of application functionality required by the worker.
type ExpiryFacade interface {
	StalePendingOrders(ctx context.Context, limit int) ([]model.Order, error)
	ExpireOrder(ctx context.Context, orderID int64) error
}

// OrderExpirer periodically cancels unpaid pending orders and returns their stock.
type OrderExpirer struct {
	facade       ExpiryFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewOrderExpirer constructs the expiry worker pool.
func NewOrderExpirer(facade ExpiryFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *OrderExpirer {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &OrderExpirer{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
	}
}

// Start launches background processing. Calling Start on a running worker is a no-op.
func (p *OrderExpirer) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.jobs = make(chan model.Order, p.batchSize)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop signals workers to finish and waits for them.
func (p *OrderExpirer) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *OrderExpirer) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *OrderExpirer) fetchAndDispatch(ctx context.Context) {
	orders, err := p.facade.StalePendingOrders(ctx, p.batchSize)
	if err != nil {
		p.logger.ErrorContext(ctx, "fetch stale pending orders failed", slog.Any("error", err))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- order:
		}
	}
}

func (p *OrderExpirer) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handleOrder(ctx, order)
		}
	}
}

func (p *OrderExpirer) handleOrder(ctx context.Context, order model.Order) {
	err := p.facade.ExpireOrder(ctx, order.ID)
	switch {
	case err == nil:
		p.logger.InfoContext(ctx, "pending order expired",
			slog.Int64("order_id", order.ID),
			slog.String("order_number", order.Number),
		)
	case errors.Is(err, domainErrors.ErrOrderNotCancellable), errors.Is(err, domainErrors.ErrOrderNotFound):
		// paid or cancelled since the batch was read
		p.logger.DebugContext(ctx, "skip order expiry", slog.Int64("order_id", order.ID), slog.Any("reason", err))
	case errors.Is(err, context.Canceled):
	default:
		p.logger.ErrorContext(ctx, "expire order failed",
			slog.Int64("order_id", order.ID),
			slog.String("order_number", order.Number),
			slog.Any("error", err),
		)
	}
}
