package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// EventPublisher announces committed order changes.
type EventPublisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
}

// OrderMetrics records order flow outcomes.
type OrderMetrics interface {
	OrderPlaced(total decimal.Decimal, lines int)
	OrderRejected(code string)
	OrderCancelled(reason string)
	StatusChanged(from, to model.OrderStatus)
	ReferenceCollision()
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, model.OrderEvent) error { return nil }

type nopMetrics struct{}

func (nopMetrics) OrderPlaced(decimal.Decimal, int)                  {}
func (nopMetrics) OrderRejected(string)                              {}
func (nopMetrics) OrderCancelled(string)                             {}
func (nopMetrics) StatusChanged(model.OrderStatus, model.OrderStatus) {}
func (nopMetrics) ReferenceCollision()                               {}
