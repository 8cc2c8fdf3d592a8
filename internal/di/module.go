package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/app"
	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/events"
	"github.com/polkiloo/storefront/internal/logger"
	"github.com/polkiloo/storefront/internal/metrics"
	"github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/server/http/router"
	"github.com/polkiloo/storefront/internal/storage/postgres"
	"github.com/polkiloo/storefront/internal/telemetry"
	"github.com/polkiloo/storefront/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		telemetry.Module,
		auth.Module,
		postgres.Module,
		events.Module,
		usecase.Module,
		fx.Provide(
			func(m *metrics.OrderMetrics) usecase.OrderMetrics { return m },
			func(s *postgres.Storage) app.HealthChecker { return s },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
