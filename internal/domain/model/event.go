package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderEventType names a lifecycle change published after commit.
type OrderEventType string

const (
	OrderEventPlaced        OrderEventType = "order.placed"
	OrderEventCancelled     OrderEventType = "order.cancelled"
	OrderEventStatusChanged OrderEventType = "order.status_changed"
)

// OrderEvent is the payload announced to downstream consumers.
type OrderEvent struct {
	Type           OrderEventType  `json:"type"`
	OrderID        int64           `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	CustomerID     int64           `json:"customer_id"`
	Status         OrderStatus     `json:"status"`
	PreviousStatus OrderStatus     `json:"previous_status,omitempty"`
	Total          decimal.Decimal `json:"total"`
	Reason         string          `json:"reason,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// NewOrderEvent snapshots order into an event of type t.
func NewOrderEvent(t OrderEventType, o *Order, previous OrderStatus, at time.Time) OrderEvent {
	return OrderEvent{
		Type:           t,
		OrderID:        o.ID,
		OrderNumber:    o.Number,
		CustomerID:     o.CustomerID,
		Status:         o.Status,
		PreviousStatus: previous,
		Total:          o.Total,
		OccurredAt:     at.UTC(),
	}
}
