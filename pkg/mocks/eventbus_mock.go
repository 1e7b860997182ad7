package mocks

import (
	"context"

	"github.com/dukex/warden/pkg/eventbus"
	"github.com/dukex/warden/pkg/events"
	"github.com/stretchr/testify/mock"
)

// MockEventBus is a mock implementation of eventbus.EventBus interface.
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, key string, event eventbus.Event) error {
	args := m.Called(ctx, key, event)

	return args.Error(0)
}

func (m *MockEventBus) Handle(eventType events.EventType, handler eventbus.EventHandler) error {
	args := m.Called(eventType, handler)

	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()

	return args.Error(0)
}

func (m *MockEventBus) GenerateID() string {
	args := m.Called()

	return args.String(0)
}

// PublishedEvents returns the workflow events passed to Publish, in call order.
func (m *MockEventBus) PublishedEvents() []events.WorkflowEvent {
	published := make([]events.WorkflowEvent, 0)

	for _, call := range m.Calls {
		if call.Method != "Publish" {
			continue
		}

		if event, ok := call.Arguments.Get(2).(events.WorkflowEvent); ok {
			published = append(published, event)
		}
	}

	return published
}

var _ eventbus.EventBus = (*MockEventBus)(nil)
