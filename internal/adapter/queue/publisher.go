package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"github.com/beratbay/broadcast-engage/pkg/tracing"
)

// PrepareToSendMessage starts the fan-out for one sent broadcast.
type PrepareToSendMessage struct {
	NotificationID string            `json:"notification_id"`
	Carrier        map[string]string `json:"carrier,omitempty"`
}

// DataQueueMessage is the completion-side work item. The force-complete
// variant carries its deadline as data: NotBefore is the earliest epoch-ms at
// which a consumer may act on it, which makes the delay survive restarts on
// both sides of the queue.
type DataQueueMessage struct {
	NotificationID string            `json:"notification_id"`
	ForceComplete  bool              `json:"force_complete"`
	NotBefore      int64             `json:"not_before,omitempty"`
	Carrier        map[string]string `json:"carrier,omitempty"`
}

type Producer struct {
	writer       *kafka.Writer
	prepareTopic string
	dataTopic    string
}

func NewProducer(brokers []string, prepareTopic, dataTopic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
		prepareTopic: prepareTopic,
		dataTopic:    dataTopic,
	}
}

func (p *Producer) PublishPrepareToSend(ctx context.Context, broadcastID string) error {
	ctx, span := tracing.Tracer().Start(ctx, "kafka.publish_prepare")
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination.name", p.prepareTopic),
		attribute.String("messaging.operation.type", "publish"),
		attribute.String("broadcast.id", broadcastID),
	)

	payload := PrepareToSendMessage{
		NotificationID: broadcastID,
		Carrier:        propagateTraceContext(ctx),
	}

	value, err := json.Marshal(payload)
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.prepareTopic,
		Key:   []byte(broadcastID),
		Value: value,
	}); err != nil {
		tracing.RecordError(span, err)
		return err
	}

	return nil
}

func (p *Producer) PublishForceComplete(ctx context.Context, broadcastID string, delay time.Duration) error {
	ctx, span := tracing.Tracer().Start(ctx, "kafka.publish_force_complete")
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination.name", p.dataTopic),
		attribute.String("messaging.operation.type", "publish"),
		attribute.String("broadcast.id", broadcastID),
		attribute.Int64("broadcast.force_complete_delay_ms", delay.Milliseconds()),
	)

	payload := newForceCompleteMessage(broadcastID, delay, time.Now().UTC())
	payload.Carrier = propagateTraceContext(ctx)

	value, err := json.Marshal(payload)
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.dataTopic,
		Key:   []byte(broadcastID),
		Value: value,
	}); err != nil {
		tracing.RecordError(span, err)
		return err
	}

	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func newForceCompleteMessage(broadcastID string, delay time.Duration, now time.Time) DataQueueMessage {
	return DataQueueMessage{
		NotificationID: broadcastID,
		ForceComplete:  true,
		NotBefore:      now.Add(delay).UnixMilli(),
	}
}

func propagateTraceContext(ctx context.Context) map[string]string {
	carrier := make(map[string]string)
	propagation.TraceContext{}.Inject(ctx, propagation.MapCarrier(carrier))
	return carrier
}
