//go:build unit

package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMessage struct {
	topic string
	key   []byte
	value []byte
}

type capturePublisher struct {
	messages []capturedMessage
}

func (p *capturePublisher) Publish(topic string, key, value []byte) {
	p.messages = append(p.messages, capturedMessage{topic: topic, key: key, value: value})
}

func TestEmit_WrapsPayloadInEnvelope(t *testing.T) {
	pub := &capturePublisher{}
	em := NewEmitter(pub, "pasarlink-api")

	orderID := uuid.New()
	payload := OrderStatusChangedPayload{
		OrderID: orderID.String(),
		From:    "pending",
		To:      "confirmed",
		Actor:   "seller",
	}
	em.Emit(context.Background(), TopicOrderStatusChanged, EventOrderStatusChanged, orderID, payload)

	require.Len(t, pub.messages, 1)
	msg := pub.messages[0]
	assert.Equal(t, TopicOrderStatusChanged, msg.topic)
	assert.Equal(t, PartitionKey(orderID), msg.key)

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.value, &env))

	want := Envelope{
		EventType:     EventOrderStatusChanged,
		EventVersion:  1,
		Producer:      "pasarlink-api",
		CorrelationID: orderID.String(),
	}
	ignore := cmpopts.IgnoreFields(Envelope{}, "EventID", "OccurredAt", "Payload")
	if diff := cmp.Diff(want, env, ignore); diff != "" {
		t.Errorf("envelope mismatch (-want +got):\n%s", diff)
	}
	assert.NotEmpty(t, env.EventID)
	assert.False(t, env.OccurredAt.IsZero())

	var got OrderStatusChangedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &got))
	if diff := cmp.Diff(payload, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestEmit_CarriesTraceID(t *testing.T) {
	pub := &capturePublisher{}
	em := NewEmitter(pub, "pasarlink-api")

	ctx := WithTraceID(context.Background(), "trace-123")
	em.Emit(ctx, TopicOfferCreated, EventOfferCreated, uuid.New(), OfferCreatedPayload{})

	require.Len(t, pub.messages, 1)
	var env Envelope
	require.NoError(t, json.Unmarshal(pub.messages[0].value, &env))
	assert.Equal(t, "trace-123", env.TraceID)
}

func TestEmit_UnmarshalablePayloadIsDropped(t *testing.T) {
	pub := &capturePublisher{}
	em := NewEmitter(pub, "pasarlink-api")

	em.Emit(context.Background(), TopicOrderCreated, EventOrderCreated, uuid.New(), func() {})

	assert.Empty(t, pub.messages)
}

func TestPartitionKey_StableForOrder(t *testing.T) {
	orderID := uuid.New()
	assert.Equal(t, PartitionKey(orderID), PartitionKey(orderID))
	assert.Equal(t, []byte(orderID.String()), PartitionKey(orderID))
}
