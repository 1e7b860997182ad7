package workflow

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/dukex/warden/pkg/mocks"
	"github.com/dukex/warden/pkg/models"
	"github.com/dukex/warden/pkg/protocol"
	"github.com/dukex/warden/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStageExecutor_SingleAgent(t *testing.T) {
	logger := testLogger()
	reg := registry.NewRegistry(logger)

	agent := &mocks.MockAgent{}
	agent.On("ID").Return("a1")
	agent.On("ExecuteStage", mock.Anything, mock.MatchedBy(func(input protocol.StageInput) bool {
		return input.Stage.Name == "recon" && input.TargetID == "repo-1"
	}), mock.Anything).Return(&protocol.StageOutput{Result: map[string]any{"ok": true}}, nil)
	reg.RegisterAgent(agent)

	output, err := NewStageExecutor(reg).Execute(t.Context(), protocol.StageInput{
		TargetID: "repo-1",
		Stage:    models.Stage{Name: "recon", Description: "Map", Agent: "a1"},
	}, logger)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"ok": true}, output.Result)
	agent.AssertExpectations(t)
}

func TestStageExecutor_NilOutputBecomesEmpty(t *testing.T) {
	logger := testLogger()
	reg := registry.NewRegistry(logger)
	reg.RegisterAgent(protocol.AgentFunc{
		AgentID: "a1",
		Fn: func(context.Context, protocol.StageInput, *slog.Logger) (*protocol.StageOutput, error) {
			return nil, nil
		},
	})

	output, err := NewStageExecutor(reg).Execute(t.Context(), protocol.StageInput{
		Stage: models.Stage{Name: "recon", Description: "Map", Agent: "a1"},
	}, logger)
	require.NoError(t, err)
	assert.NotNil(t, output)
}

func TestStageExecutor_Errors(t *testing.T) {
	logger := testLogger()
	agentErr := errors.New("model refused")

	reg := registry.NewRegistry(logger)
	reg.RegisterAgent(failingAgent("broken", agentErr))
	reg.RegisterAgent(resultAgent("a1", nil, nil))
	reg.RegisterAgent(resultAgent("a2", nil, nil))

	tests := []struct {
		name  string
		stage models.Stage
		err   error
	}{
		{
			name:  "agent error",
			stage: models.Stage{Name: "s", Description: "s", Agent: "broken"},
			err:   agentErr,
		},
		{
			name:  "unregistered agent",
			stage: models.Stage{Name: "s", Description: "s", Agent: "ghost"},
			err:   registry.ErrAgentNotRegistered,
		},
		{
			name:  "unregistered communication pattern",
			stage: models.Stage{Name: "s", Description: "s", Agents: []string{"a1", "a2"}, CommunicationPattern: "telepathy"},
			err:   registry.ErrStrategyNotRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := NewStageExecutor(reg).Execute(t.Context(), protocol.StageInput{Stage: tt.stage}, logger)

			assert.Nil(t, output)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestStageExecutor_RecoversStrategyPanic(t *testing.T) {
	logger := testLogger()
	reg := registry.NewRegistry(logger)
	reg.RegisterAgent(resultAgent("a1", nil, nil))
	reg.RegisterAgent(resultAgent("a2", nil, nil))

	strategy := &mocks.MockStrategy{}
	strategy.On("Name").Return(PatternParallelExploration)
	strategy.On("Run", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { panic("index out of range") }).
		Return(nil, nil)
	reg.RegisterStrategy(strategy)

	output, err := NewStageExecutor(reg).Execute(t.Context(), protocol.StageInput{
		Stage: models.Stage{
			Name: "explore", Description: "explore", Agents: []string{"a1", "a2"},
			CommunicationPattern: PatternParallelExploration,
		},
	}, logger)

	assert.Nil(t, output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index out of range")
}
