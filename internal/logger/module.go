package logger

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module wires the service logger for dependency injection.
var Module = fx.Provide(newServiceLogger)

func newServiceLogger(cfg *config.Config) *slog.Logger {
	return New().With(
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
	)
}
