package strategies

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"

	"github.com/dukex/warden/pkg/models"
	"github.com/dukex/warden/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func testInput() protocol.StageInput {
	return protocol.StageInput{
		WorkflowID: "wf-1",
		TargetID:   "repo-1",
		Stage: models.Stage{
			Name:                 "debate",
			Description:          "Debate the findings",
			Agents:               []string{"attacker", "defender"},
			CommunicationPattern: "structured_debate",
		},
		PriorResults: map[string]map[string]any{"recon": {"summary": "mapped"}},
		Artifacts:    map[string]any{models.ArtifactFindings: []any{"F-0"}},
	}
}

func TestDefaults(t *testing.T) {
	names := make([]string, 0)
	for _, strategy := range Defaults() {
		names = append(names, strategy.Name())
	}

	assert.ElementsMatch(t, []string{"chain_of_thought", "iterative_feedback", "structured_debate", "parallel_exploration"}, names)
}

func TestSequential_PassesResultsAlong(t *testing.T) {
	var seen []string

	agent := func(id string) protocol.Agent {
		return protocol.AgentFunc{
			AgentID: id,
			Fn: func(_ context.Context, input protocol.StageInput, _ *slog.Logger) (*protocol.StageOutput, error) {
				previous, _ := input.PriorResults["debate"]["position"].(string)
				seen = append(seen, id+"<"+previous)

				assert.Equal(t, "mapped", input.PriorResults["recon"]["summary"])

				return &protocol.StageOutput{
					Result:    map[string]any{"position": id},
					Artifacts: map[string]any{models.ArtifactFindings: []any{"F-" + id}},
				}, nil
			},
		}
	}

	input := testInput()
	output, err := NewSequential("structured_debate", 2).Run(t.Context(), input,
		[]protocol.Agent{agent("attacker"), agent("defender")}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"attacker<", "defender<attacker", "attacker<defender", "defender<attacker"}, seen)
	assert.Equal(t, "defender", output.Result["position"])
	assert.Equal(t, map[string]any{
		"attacker": map[string]any{"position": "attacker"},
		"defender": map[string]any{"position": "defender"},
	}, output.Result[ContributionsKey])
	assert.Equal(t, []any{"F-attacker", "F-defender", "F-attacker", "F-defender"}, output.Artifacts[models.ArtifactFindings])

	// The caller's input is left untouched
	assert.NotContains(t, input.PriorResults, "debate")
	assert.Equal(t, []any{"F-0"}, input.Artifacts[models.ArtifactFindings])
}

func TestSequential_StopsOnError(t *testing.T) {
	var calls atomic.Int32

	failing := protocol.AgentFunc{
		AgentID: "attacker",
		Fn: func(context.Context, protocol.StageInput, *slog.Logger) (*protocol.StageOutput, error) {
			calls.Add(1)

			return nil, errors.New("rate limited")
		},
	}
	never := protocol.AgentFunc{
		AgentID: "defender",
		Fn: func(context.Context, protocol.StageInput, *slog.Logger) (*protocol.StageOutput, error) {
			calls.Add(1)

			return &protocol.StageOutput{}, nil
		},
	}

	_, err := NewSequential("chain_of_thought", 1).Run(t.Context(), testInput(), []protocol.Agent{failing, never}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent attacker failed in round 1")
	assert.Equal(t, int32(1), calls.Load())
}

func TestParallel_CombinesContributions(t *testing.T) {
	agent := func(id string) protocol.Agent {
		return protocol.AgentFunc{
			AgentID: id,
			Fn: func(_ context.Context, input protocol.StageInput, _ *slog.Logger) (*protocol.StageOutput, error) {
				assert.Equal(t, []any{"F-0"}, input.Artifacts[models.ArtifactFindings])

				return &protocol.StageOutput{
					Result:    map[string]any{"explored": id},
					Artifacts: map[string]any{models.ArtifactFindings: []any{"F-" + id}},
				}, nil
			},
		}
	}

	output, err := NewParallel("parallel_exploration").Run(t.Context(), testInput(),
		[]protocol.Agent{agent("a1"), agent("a2"), agent("a3")}, testLogger())
	require.NoError(t, err)

	contributions, ok := output.Result[ContributionsKey].(map[string]any)
	require.True(t, ok)
	assert.Len(t, contributions, 3)
	assert.Equal(t, map[string]any{"explored": "a2"}, contributions["a2"])
	assert.Equal(t, []any{"F-a1", "F-a2", "F-a3"}, output.Artifacts[models.ArtifactFindings])
}

func TestParallel_FailsOnAnyAgentError(t *testing.T) {
	ok := protocol.AgentFunc{
		AgentID: "a1",
		Fn: func(context.Context, protocol.StageInput, *slog.Logger) (*protocol.StageOutput, error) {
			return &protocol.StageOutput{}, nil
		},
	}
	broken := protocol.AgentFunc{
		AgentID: "a2",
		Fn: func(context.Context, protocol.StageInput, *slog.Logger) (*protocol.StageOutput, error) {
			return nil, errors.New("timeout")
		},
	}

	output, err := NewParallel("parallel_exploration").Run(t.Context(), testInput(), []protocol.Agent{ok, broken}, testLogger())
	assert.Nil(t, output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent a2 failed: timeout")
}

func TestStrategies_RequireAgents(t *testing.T) {
	_, err := NewSequential("chain_of_thought", 0).Run(t.Context(), testInput(), nil, testLogger())
	assert.ErrorIs(t, err, ErrNoAgents)

	_, err = NewParallel("parallel_exploration").Run(t.Context(), testInput(), nil, testLogger())
	assert.ErrorIs(t, err, ErrNoAgents)
}
