package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	NewAddressUseCase,
	newOrderUseCase,
)

type orderParams struct {
	fx.In

	Config     *config.Config
	Transactor repository.Transactor
	Repos      repository.Factory
	Logger     *slog.Logger
	Events     EventPublisher `optional:"true"`
	Metrics    OrderMetrics   `optional:"true"`
}

func newOrderUseCase(p orderParams) *OrderUseCase {
	return NewOrderUseCase(p.Transactor, p.Repos, OrderOptions{
		Pricing:           NewPricing(p.Config.TaxRate),
		References:        NewRandomReference(p.Config.OrderPrefix),
		ReferenceAttempts: p.Config.OrderNumberAttempts,
		Events:            p.Events,
		Metrics:           p.Metrics,
		Logger:            p.Logger,
	})
}
