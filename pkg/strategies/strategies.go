// Package strategies provides generic interaction strategies for multi-agent stages.
package strategies

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/warden/pkg/models"
	"github.com/dukex/warden/pkg/protocol"
	"github.com/dukex/warden/pkg/workflow"
	"golang.org/x/sync/errgroup"
)

// ContributionsKey holds the per-agent results inside a combined stage result.
const ContributionsKey = "contributions"

// ErrNoAgents is returned when a strategy is run without agents.
var ErrNoAgents = errors.New("strategy requires at least one agent")

// Defaults returns the strategies serving the built-in communication patterns.
func Defaults() []protocol.Strategy {
	return []protocol.Strategy{
		NewSequential(workflow.PatternChainOfThought, 1),
		NewSequential(workflow.PatternIterativeFeedback, 2),
		NewSequential(workflow.PatternStructuredDebate, 2),
		NewParallel(workflow.PatternParallelExploration),
	}
}

// Sequential passes the stage through the agents one after another, for the given number of
// rounds. Every agent sees the previous agent's result as the stage's prior result, so later
// agents refine, critique or rebut earlier ones. The last result is the stage result.
type Sequential struct {
	name   string
	rounds int
}

func NewSequential(name string, rounds int) *Sequential {
	if rounds < 1 {
		rounds = 1
	}

	return &Sequential{name: name, rounds: rounds}
}

func (s *Sequential) Name() string {
	return s.name
}

func (s *Sequential) Run(ctx context.Context, input protocol.StageInput, agents []protocol.Agent, logger *slog.Logger) (*protocol.StageOutput, error) {
	if len(agents) == 0 {
		return nil, ErrNoAgents
	}

	contributions := make(map[string]any, len(agents))
	artifacts := make(map[string]any)

	var last map[string]any

	for round := range s.rounds {
		for _, agent := range agents {
			agentInput := withArtifacts(input, artifacts)
			if last != nil {
				agentInput.PriorResults[input.Stage.Name] = last
			}

			logger.DebugContext(ctx, "Running agent", "agent", agent.ID(), "round", round+1)

			output, err := agent.ExecuteStage(ctx, agentInput, logger.With("agent", agent.ID()))
			if err != nil {
				return nil, fmt.Errorf("agent %s failed in round %d: %w", agent.ID(), round+1, err)
			}

			if output == nil {
				output = &protocol.StageOutput{}
			}

			last = output.Result
			contributions[agent.ID()] = output.Result
			mergeArtifacts(artifacts, output.Artifacts)
		}
	}

	result := make(map[string]any, len(last)+1)
	for k, v := range last {
		result[k] = v
	}

	result[ContributionsKey] = contributions

	return &protocol.StageOutput{Result: result, Artifacts: artifacts}, nil
}

// Parallel runs every agent on the same input concurrently. The stage fails with the first
// agent error; artifacts are merged in agent declaration order.
type Parallel struct {
	name string
}

func NewParallel(name string) *Parallel {
	return &Parallel{name: name}
}

func (p *Parallel) Name() string {
	return p.name
}

func (p *Parallel) Run(ctx context.Context, input protocol.StageInput, agents []protocol.Agent, logger *slog.Logger) (*protocol.StageOutput, error) {
	if len(agents) == 0 {
		return nil, ErrNoAgents
	}

	outputs := make([]*protocol.StageOutput, len(agents))

	g, gCtx := errgroup.WithContext(ctx)

	for i, agent := range agents {
		agentInput := withArtifacts(input, nil)

		g.Go(func() error {
			logger.DebugContext(gCtx, "Running agent", "agent", agent.ID())

			output, err := agent.ExecuteStage(gCtx, agentInput, logger.With("agent", agent.ID()))
			if err != nil {
				return fmt.Errorf("agent %s failed: %w", agent.ID(), err)
			}

			if output == nil {
				output = &protocol.StageOutput{}
			}

			outputs[i] = output

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	contributions := make(map[string]any, len(agents))
	artifacts := make(map[string]any)

	for i, output := range outputs {
		contributions[agents[i].ID()] = output.Result
		mergeArtifacts(artifacts, output.Artifacts)
	}

	return &protocol.StageOutput{
		Result:    map[string]any{ContributionsKey: contributions},
		Artifacts: artifacts,
	}, nil
}

// withArtifacts copies the input so concurrent or successive agents never share its maps.
func withArtifacts(input protocol.StageInput, artifacts map[string]any) protocol.StageInput {
	prior := make(map[string]map[string]any, len(input.PriorResults)+1)
	for k, v := range input.PriorResults {
		prior[k] = v
	}

	snapshot := make(map[string]any, len(input.Artifacts)+len(artifacts))
	for k, v := range input.Artifacts {
		snapshot[k] = v
	}

	mergeArtifacts(snapshot, artifacts)

	input.PriorResults = prior
	input.Artifacts = snapshot

	return input
}

func mergeArtifacts(into map[string]any, from map[string]any) {
	for key, value := range from {
		items, isList := models.AsList(value)
		if !isList {
			into[key] = value

			continue
		}

		existing, _ := models.AsList(into[key])
		merged := make([]any, 0, len(existing)+len(items))
		merged = append(merged, existing...)
		merged = append(merged, items...)
		into[key] = merged
	}
}
