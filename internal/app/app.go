package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/worker"
)

const readHeaderTimeout = 5 * time.Second

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewStorefrontFacade,
		func(f *StorefrontFacade) handlers.StorefrontFacade { return f },
		newHTTPServer,
		newOrderExpirer,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config         *config.Config
	Router         *gin.Engine
	TracerProvider *sdktrace.TracerProvider `optional:"true"`
	MeterProvider  *sdkmetric.MeterProvider `optional:"true"`
}

func newHTTPServer(p serverParams) *http.Server {
	var opts []otelhttp.Option
	if p.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(p.TracerProvider))
	}
	if p.MeterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(p.MeterProvider))
	}
	opts = append(opts, otelhttp.WithFilter(func(r *http.Request) bool {
		return r.URL.Path != "/metrics" && r.URL.Path != "/healthz"
	}))

	return &http.Server{
		Addr:              p.Config.RunAddress,
		Handler:           otelhttp.NewHandler(p.Router, p.Config.ServiceName, opts...),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

type workerParams struct {
	fx.In

	Facade *StorefrontFacade
	Config *config.Config
	Logger *slog.Logger
}

func newOrderExpirer(p workerParams) *worker.OrderExpirer {
	return worker.NewOrderExpirer(
		p.Facade,
		p.Config.ExpiryPollInterval,
		p.Config.ExpiryBatchSize,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.OrderExpirer
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting storefront", slog.String("addr", p.Server.Addr))
			if p.Config.PendingOrderTTL > 0 {
				p.Worker.Start(context.WithoutCancel(ctx))
				p.Logger.Info("pending order expiry enabled", slog.Duration("ttl", p.Config.PendingOrderTTL))
			}
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			err := p.Server.Shutdown(shutdownCtx)
			p.Worker.Stop()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("storefront stopped")
			return nil
		},
	})
}
