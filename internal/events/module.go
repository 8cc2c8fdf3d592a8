package events

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/usecase"
)

// Module provides the order event publisher.
var Module = fx.Provide(newEventPublisher)

type publisherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newEventPublisher(p publisherParams) usecase.EventPublisher {
	if len(p.Config.KafkaBrokers) == 0 {
		p.Logger.Info("order events disabled, no kafka brokers configured")
		return Discard{}
	}

	pub := NewPublisher(p.Config.KafkaBrokers, p.Config.KafkaTopic, p.Config.KafkaWriteTimeout)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	})
	p.Logger.Info("publishing order events",
		slog.Any("brokers", p.Config.KafkaBrokers),
		slog.String("topic", p.Config.KafkaTopic),
		slog.Duration("write_timeout", p.Config.KafkaWriteTimeout),
	)
	return pub
}
