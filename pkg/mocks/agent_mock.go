package mocks

import (
	"context"
	"log/slog"

	"github.com/dukex/warden/pkg/protocol"
	"github.com/stretchr/testify/mock"
)

// MockAgent is a mock implementation of protocol.Agent interface.
type MockAgent struct {
	mock.Mock
}

func (m *MockAgent) ID() string {
	args := m.Called()

	return args.String(0)
}

func (m *MockAgent) ExecuteStage(ctx context.Context, input protocol.StageInput, logger *slog.Logger) (*protocol.StageOutput, error) {
	args := m.Called(ctx, input, logger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*protocol.StageOutput), args.Error(1)
}

// MockStrategy is a mock implementation of protocol.Strategy interface.
type MockStrategy struct {
	mock.Mock
}

func (m *MockStrategy) Name() string {
	args := m.Called()

	return args.String(0)
}

func (m *MockStrategy) Run(ctx context.Context, input protocol.StageInput, agents []protocol.Agent, logger *slog.Logger) (*protocol.StageOutput, error) {
	args := m.Called(ctx, input, agents, logger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*protocol.StageOutput), args.Error(1)
}

var (
	_ protocol.Agent    = (*MockAgent)(nil)
	_ protocol.Strategy = (*MockStrategy)(nil)
)
