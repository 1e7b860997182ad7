package protocol

import (
	"context"
	"log/slog"
)

// Strategy is a named protocol that lets several agents jointly produce one stage result.
type Strategy interface {
	// Name returns the communication pattern identifier definitions refer to
	Name() string

	// Run drives the interaction between agents (in the stage's declaration order) and
	// returns the combined output
	Run(ctx context.Context, input StageInput, agents []Agent, logger *slog.Logger) (*StageOutput, error)
}
