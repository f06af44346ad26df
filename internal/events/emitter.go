package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Emitter publishes domain events after the owning transaction commits.
// Publication is best effort; the database stays the source of truth.
type Emitter interface {
	Emit(ctx context.Context, topic, eventType string, correlationID uuid.UUID, payload any)
}

// Publisher is the transport half, satisfied by the kafka producer.
type Publisher interface {
	Publish(topic string, key, value []byte)
}

type emitter struct {
	pub      Publisher
	producer string
}

func NewEmitter(pub Publisher, producer string) Emitter {
	return &emitter{pub: pub, producer: producer}
}

func (e *emitter) Emit(ctx context.Context, topic, eventType string, correlationID uuid.UUID, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal event payload", "event_type", eventType, "error", err.Error())
		return
	}

	env := Envelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      e.producer,
		CorrelationID: correlationID.String(),
		Payload:       body,
	}
	if traceID, ok := ctx.Value(traceIDKey{}).(string); ok {
		env.TraceID = traceID
	}

	value, err := json.Marshal(env)
	if err != nil {
		slog.Error("failed to marshal event envelope", "event_type", eventType, "error", err.Error())
		return
	}
	e.pub.Publish(topic, PartitionKey(correlationID), value)
}

type traceIDKey struct{}

// WithTraceID stamps the request's trace id so emitted events carry it.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// NopEmitter drops everything. Used in tests and when the broker is disabled.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, string, uuid.UUID, any) {}
