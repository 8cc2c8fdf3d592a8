package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/polkiloo/storefront/internal/domain/model"
)

const eventTypeHeader = "event-type"

var tracer = otel.Tracer("github.com/polkiloo/storefront/internal/events")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const writeAttempts = 3

// Publisher writes order events to a Kafka topic keyed by order number,
// so every event of one order lands on the same partition.
type Publisher struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
}

// NewPublisher creates a publisher for brokers. Each Publish call gives up
// after timeout.
func NewPublisher(brokers []string, topic string, timeout time.Duration) *Publisher {
	return &Publisher{
		topic:   topic,
		timeout: timeout,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			MaxAttempts:            writeAttempts,
			WriteTimeout:           timeout,
		},
	}
}

// Publish encodes event as JSON and sends it with trace context headers.
// The write outlives cancellation of ctx but not the publisher timeout.
func (p *Publisher) Publish(ctx context.Context, event model.OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}

	msg := kafka.Message{
		Key:     []byte(event.OrderNumber),
		Value:   data,
		Time:    event.OccurredAt,
		Headers: []kafka.Header{{Key: eventTypeHeader, Value: []byte(event.Type)}},
	}

	ctx, span := tracer.Start(ctx, "send "+p.topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationName("send"),
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(p.topic),
			semconv.MessagingKafkaMessageKey(event.OrderNumber),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{msg: &msg})

	ctx = context.WithoutCancel(ctx)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Close flushes pending messages.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Discard drops every event. It stands in when no brokers are configured.
type Discard struct{}

func (Discard) Publish(context.Context, model.OrderEvent) error { return nil }
