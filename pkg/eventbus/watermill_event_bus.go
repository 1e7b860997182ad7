package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dukex/warden/pkg/events"
)

// ErrNilEvent is returned when Publish is called without an event.
var ErrNilEvent = errors.New("event cannot be nil")

// WatermillEventBus carries workflow events over a watermill publisher/subscriber pair.
// Every event goes to events.Topic; the message key is the workflow id so a partitioned
// transport keeps the events of one workflow in order.
type WatermillEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger

	mu       sync.RWMutex
	handlers map[events.EventType]EventHandler
}

type Option func(*WatermillEventBus)

// WithLogger sets the logger used to report messages that cannot be delivered.
func WithLogger(logger *slog.Logger) Option {
	return func(eb *WatermillEventBus) {
		eb.logger = logger.With("module", "event_bus")
	}
}

func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber, opts ...Option) EventBus {
	eb := &WatermillEventBus{
		publisher:  pub,
		subscriber: sub,
		logger:     slog.New(slog.DiscardHandler),
		handlers:   make(map[events.EventType]EventHandler),
	}

	for _, opt := range opts {
		opt(eb)
	}

	return eb
}

func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

func (eb *WatermillEventBus) Publish(ctx context.Context, key string, event Event) error {
	if event == nil {
		return ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(events.EventMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))

	return eb.publisher.Publish(events.Topic, msg)
}

// Subscribe starts delivering messages to the registered handlers until ctx is done.
// Messages without a handler are acknowledged and skipped. Messages that cannot be decoded
// are dropped, a handler error asks the transport to redeliver.
func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			eb.deliver(ctx, msg)
		}
	}()

	return nil
}

func (eb *WatermillEventBus) deliver(ctx context.Context, msg *message.Message) {
	eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))
	logger := eb.logger.With("message_id", msg.UUID, "event_type", eventType)

	eb.mu.RLock()
	handler, exists := eb.handlers[eventType]
	eb.mu.RUnlock()

	if !exists {
		msg.Ack()

		return
	}

	if !slices.Contains(events.EventTypes(), eventType) {
		logger.WarnContext(ctx, "Dropping message of unknown event type")
		msg.Ack()

		return
	}

	var event events.WorkflowEvent

	err := json.Unmarshal(msg.Payload, &event)
	if err != nil {
		logger.WarnContext(ctx, "Dropping malformed event", "error", err)
		msg.Ack()

		return
	}

	err = handler(ctx, &event)
	if err != nil {
		logger.ErrorContext(ctx, "Event handler failed", "error", err, "workflow_id", event.WorkflowID)
		msg.Nack()

		return
	}

	msg.Ack()
}

func (eb *WatermillEventBus) Handle(eventType events.EventType, handler EventHandler) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = handler

	return nil
}

func (eb *WatermillEventBus) Close() error {
	return errors.Join(eb.publisher.Close(), eb.subscriber.Close())
}
