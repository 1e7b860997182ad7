package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/warden/pkg/protocol"
)

// Resolver looks up the collaborators a stage is bound to. registry.Registry implements it.
type Resolver interface {
	Agent(id string) (protocol.Agent, error)
	Strategy(name string) (protocol.Strategy, error)
}

// StageExecutor drives one stage to a result by delegating to its agents.
type StageExecutor struct {
	resolver Resolver
}

func NewStageExecutor(resolver Resolver) *StageExecutor {
	return &StageExecutor{resolver: resolver}
}

// Execute runs the stage described by input. A single-agent stage calls the agent directly;
// a multi-agent stage runs its communication pattern over the bound agents. A panic raised by
// a collaborator is returned as an error.
func (s *StageExecutor) Execute(ctx context.Context, input protocol.StageInput, logger *slog.Logger) (output *protocol.StageOutput, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			output = nil
			err = fmt.Errorf("stage panicked: %v", recovered)
		}
	}()

	agentIDs := input.Stage.AgentIDs()
	if len(agentIDs) == 0 {
		return nil, fmt.Errorf("stage %q has no agents", input.Stage.Name)
	}

	agents := make([]protocol.Agent, 0, len(agentIDs))
	for _, agentID := range agentIDs {
		agent, err := s.resolver.Agent(agentID)
		if err != nil {
			return nil, err
		}

		agents = append(agents, agent)
	}

	if input.Stage.IsMultiAgent() {
		output, err = s.runStrategy(ctx, input, agents, logger)
	} else {
		logger.DebugContext(ctx, "Executing single-agent stage", "agent", agents[0].ID())

		output, err = agents[0].ExecuteStage(ctx, input, logger.With("agent", agents[0].ID()))
	}

	if err != nil {
		return nil, err
	}

	if output == nil {
		output = &protocol.StageOutput{}
	}

	return output, nil
}

func (s *StageExecutor) runStrategy(
	ctx context.Context,
	input protocol.StageInput,
	agents []protocol.Agent,
	logger *slog.Logger,
) (*protocol.StageOutput, error) {
	strategy, err := s.resolver.Strategy(input.Stage.CommunicationPattern)
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "Executing multi-agent stage",
		"agents", input.Stage.AgentIDs(),
		"communication_pattern", strategy.Name(),
	)

	return strategy.Run(ctx, input, agents, logger.With("communication_pattern", strategy.Name()))
}
