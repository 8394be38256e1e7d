package observability

import (
	"context"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
)

func TestTracingPublisherDecorator_propagates_trace(t *testing.T) {
	otel.SetTracerProvider(tracesdk.NewTracerProvider())
	otel.SetTextMapPropagator(propagation.TraceContext{})

	pubSub := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	messages, err := pubSub.Subscribe(context.Background(), "topic")
	require.NoError(t, err)

	ctx, span := otel.Tracer("").Start(context.Background(), "publish")
	defer span.End()

	msg := message.NewMessage(watermill.NewUUID(), []byte("{}"))
	msg.SetContext(ctx)

	err = TracingPublisherDecorator{Publisher: pubSub}.Publish("topic", msg)
	require.NoError(t, err)

	received := <-messages
	received.Ack()

	assert.Contains(t, received.Metadata.Get("traceparent"), span.SpanContext().TraceID().String())
}
