package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dukex/warden/pkg/channels/gochannel"
	"github.com/dukex/warden/pkg/events"
	"github.com/dukex/warden/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan *events.WorkflowEvent, 1)

	require.NoError(t, bus.Handle(events.WorkflowCompletedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.WorkflowEvent)

		return nil
	}))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	published := events.NewCompletionEvent("orchestrator", "wf-1", models.WorkflowTypeGuidedAssessment,
		map[string]any{"status": "completed"})
	require.NoError(t, bus.Publish(ctx, "wf-1", published))

	select {
	case event := <-received:
		assert.Equal(t, published.ID, event.ID)
		assert.Equal(t, "wf-1", event.WorkflowID)
		assert.Equal(t, models.WorkflowStatusCompleted, event.Status)
		assert.Equal(t, "completed", event.Result["status"])
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBus_UnhandledTypesAreSkipped(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan events.EventType, 2)

	require.NoError(t, bus.Handle(events.WorkflowFailedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.WorkflowEvent).Type

		return nil
	}))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "wf-1", events.NewInitializationEvent("orchestrator", "wf-1", models.WorkflowTypeGuidedAssessment)))
	require.NoError(t, bus.Publish(ctx, "wf-1", events.NewFailureEvent("orchestrator", "wf-1", models.WorkflowTypeGuidedAssessment, 0, "boom")))

	select {
	case eventType := <-received:
		assert.Equal(t, events.WorkflowFailedEvent, eventType)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBus_PublishNil(t *testing.T) {
	bus := newTestBus(t)

	assert.ErrorIs(t, bus.Publish(t.Context(), "wf-1", nil), ErrNilEvent)
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	assert.NotEqual(t, bus.GenerateID(), bus.GenerateID())
}

func TestWatermillEventBus_MalformedMessagesAreDropped(t *testing.T) {
	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub)
	defer bus.Close()

	received := make(chan string, 2)

	require.NoError(t, bus.Handle(events.WorkflowRunningEvent, func(_ context.Context, event any) error {
		received <- event.(*events.WorkflowEvent).WorkflowID

		return nil
	}))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	malformed := message.NewMessage(watermill.NewULID(), []byte("{not json"))
	malformed.Metadata.Set(events.EventTypeMetadataKey, string(events.WorkflowRunningEvent))
	require.NoError(t, pub.Publish(events.Topic, malformed))

	running := events.NewWorkflowEvent(events.WorkflowRunningEvent, "orchestrator", "wf-2",
		models.WorkflowTypeGuidedAssessment, models.WorkflowStatusRunning, 0, nil, "")
	require.NoError(t, bus.Publish(ctx, "wf-2", running))

	select {
	case workflowID := <-received:
		assert.Equal(t, "wf-2", workflowID)
	case <-time.After(5 * time.Second):
		t.Fatal("event after a malformed message was not delivered")
	}
}
