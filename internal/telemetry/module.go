package telemetry

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/polkiloo/storefront/internal/config"
)

// Module installs tracing and metrics providers for the application lifetime.
var Module = fx.Options(
	fx.Provide(newProviders),
	fx.Invoke(func(*sdktrace.TracerProvider, *sdkmetric.MeterProvider) {}),
)

type providerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Registry  *prometheus.Registry
	Logger    *slog.Logger
}

func newProviders(p providerParams) (*sdktrace.TracerProvider, *sdkmetric.MeterProvider, error) {
	opts := Options{
		ServiceName:    p.Config.ServiceName,
		ServiceVersion: p.Config.ServiceVersion,
		OTLPEndpoint:   p.Config.OTLPEndpoint,
	}

	tp, err := NewTracerProvider(context.Background(), opts)
	if err != nil {
		return nil, nil, err
	}
	mp, err := NewMeterProvider(p.Registry, opts)
	if err != nil {
		_ = tp.Shutdown(context.Background())
		return nil, nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			err := errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
			if err != nil {
				p.Logger.Warn("telemetry shutdown failed", slog.Any("error", err))
			}
			return err
		},
	})
	return tp, mp, nil
}
