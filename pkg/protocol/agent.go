// Package protocol defines the contracts between the orchestrator and its pluggable collaborators.
package protocol

import (
	"context"
	"log/slog"

	"github.com/dukex/warden/pkg/models"
)

// StageInput is everything a collaborator receives to execute one stage.
type StageInput struct {
	WorkflowID   string              `json:"workflow_id"`
	WorkflowType models.WorkflowType `json:"workflow_type"`
	TargetID     string              `json:"target_id"`
	TargetType   string              `json:"target_type"`
	Parameters   map[string]any      `json:"parameters"`
	Stage        models.Stage        `json:"stage"`
	StageIndex   int                 `json:"stage_index"`
	TotalStages  int                 `json:"total_stages"`

	// PriorResults holds the results of the stages executed before this one, keyed by stage name.
	PriorResults map[string]map[string]any `json:"prior_results"`

	// Artifacts is a snapshot of the artifacts accumulated so far.
	Artifacts map[string]any `json:"artifacts"`
}

// StageOutput is what a collaborator produces for a stage. Artifacts are folded into the
// execution's artifact mapping (lists accumulate across stages).
type StageOutput struct {
	Result    map[string]any `json:"result"`
	Artifacts map[string]any `json:"artifacts,omitempty"`
}

// Agent is a collaborator able to execute one stage.
type Agent interface {
	// ID returns the agent identifier stages refer to
	ID() string

	// ExecuteStage runs the stage and returns its output, or a collaborator-specific error
	ExecuteStage(ctx context.Context, input StageInput, logger *slog.Logger) (*StageOutput, error)
}

// AgentFunc adapts a function to the Agent interface.
type AgentFunc struct {
	AgentID string
	Fn      func(ctx context.Context, input StageInput, logger *slog.Logger) (*StageOutput, error)
}

func (a AgentFunc) ID() string {
	return a.AgentID
}

func (a AgentFunc) ExecuteStage(ctx context.Context, input StageInput, logger *slog.Logger) (*StageOutput, error) {
	return a.Fn(ctx, input, logger)
}
