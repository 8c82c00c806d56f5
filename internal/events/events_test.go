package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestKafkaPublisher_Publish(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "request")
	defer span.End()

	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	var captured *sarama.ProducerMessage
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		captured = msg
		return nil
	})

	pub := NewKafkaPublisherWithProducer(producer, "dishswap.events")
	evt := New(TypeRecipeCreated, "u-1", "r-1", map[string]any{"title": "Pho"})
	require.NoError(t, pub.Publish(ctx, evt))
	require.NoError(t, pub.Close())

	require.NotNil(t, captured)
	assert.Equal(t, "dishswap.events", captured.Topic)

	key, err := captured.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "r-1", string(key))

	raw, err := captured.Value.Encode()
	require.NoError(t, err)
	var decoded Event
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, evt.EventID, decoded.EventID)
	assert.Equal(t, TypeRecipeCreated, decoded.EventType)
	assert.Equal(t, "Pho", decoded.Payload["title"])

	headers := map[string]string{}
	for _, h := range captured.Headers {
		headers[string(h.Key)] = string(h.Value)
	}
	assert.Equal(t, TypeRecipeCreated, headers["event_type"])
	assert.Contains(t, headers["traceparent"], span.SpanContext().TraceID().String())
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewKafkaPublisherWithProducer(producer, "dishswap.events")
	err := pub.Publish(context.Background(), New(TypeUserRegistered, "u-1", "", nil))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, Event) error {
	f.calls++
	return errors.New("broker down")
}

func (f *failingPublisher) Close() error { return nil }

func TestEmitSwallowsErrors(t *testing.T) {
	p := &failingPublisher{}
	assert.NotPanics(t, func() {
		Emit(context.Background(), p, New(TypeFavoriteAdded, "u-1", "r-1", nil))
		Emit(context.Background(), nil, New(TypeFavoriteAdded, "u-1", "r-1", nil))
	})
	assert.Equal(t, 1, p.calls)
}

func TestEventKey(t *testing.T) {
	assert.Equal(t, "r-1", New(TypeRecipeReacted, "u-1", "r-1", nil).Key())
	assert.Equal(t, "u-1", New(TypeUserRegistered, "u-1", "", nil).Key())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())
}
