package models

import (
	"errors"
	"fmt"
	"reflect"
	"time"
)

// WorkflowStatus represents the lifecycle state of a workflow execution.
type WorkflowStatus string

const (
	WorkflowStatusInitializing WorkflowStatus = "initializing"
	WorkflowStatusRunning      WorkflowStatus = "running"
	WorkflowStatusPaused       WorkflowStatus = "paused"    // Declared, no operation drives it
	WorkflowStatusCompleted    WorkflowStatus = "completed" // Terminal
	WorkflowStatusFailed       WorkflowStatus = "failed"    // Terminal
	WorkflowStatusCancelled    WorkflowStatus = "cancelled" // Declared, no operation drives it
)

// ErrInvalidTransition is returned when a status change is not allowed by the state machine.
var ErrInvalidTransition = errors.New("invalid workflow status transition")

func (s WorkflowStatus) String() string {
	return string(s)
}

// IsValid reports whether s is one of the declared statuses.
func (s WorkflowStatus) IsValid() bool {
	switch s {
	case WorkflowStatusInitializing, WorkflowStatusRunning, WorkflowStatusPaused,
		WorkflowStatusCompleted, WorkflowStatusFailed, WorkflowStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition can leave s.
func (s WorkflowStatus) IsTerminal() bool {
	return s == WorkflowStatusCompleted || s == WorkflowStatusFailed || s == WorkflowStatusCancelled
}

// CanTransitionTo reports whether the execution state machine allows moving from s to next.
// Only the transitions driven by the orchestrator are reachable.
func (s WorkflowStatus) CanTransitionTo(next WorkflowStatus) bool {
	switch s {
	case WorkflowStatusInitializing:
		return next == WorkflowStatusRunning || next == WorkflowStatusFailed
	case WorkflowStatusRunning:
		return next == WorkflowStatusCompleted || next == WorkflowStatusFailed
	default:
		return false
	}
}

// WorkflowExecution is the mutable runtime record of one run of a workflow definition.
type WorkflowExecution struct {
	WorkflowID   string                 `json:"workflow_id"`
	Definition   *WorkflowDefinition    `json:"-"`
	Status       WorkflowStatus         `json:"status"`
	CurrentStage int                    `json:"current_stage"`
	Progress     float64                `json:"progress"`
	StartedAt    time.Time              `json:"started_at"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
	Error        string                 `json:"error,omitempty"`
	StageResults map[int]map[string]any `json:"stage_results"`
	Artifacts    map[string]any         `json:"artifacts"`
}

// NewWorkflowExecution creates an execution record in the initializing state.
func NewWorkflowExecution(definition *WorkflowDefinition, startedAt time.Time) *WorkflowExecution {
	return &WorkflowExecution{
		WorkflowID:   definition.ID,
		Definition:   definition,
		Status:       WorkflowStatusInitializing,
		StartedAt:    startedAt,
		StageResults: make(map[int]map[string]any),
		Artifacts:    make(map[string]any),
	}
}

// Transition moves the execution to next if the state machine allows it.
func (e *WorkflowExecution) Transition(next WorkflowStatus) error {
	if !e.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.Status, next)
	}

	e.Status = next

	return nil
}

// SetStage records the stage about to run and recomputes progress as index/total.
// Progress never decreases.
func (e *WorkflowExecution) SetStage(index, total int) {
	e.CurrentStage = index

	if total <= 0 {
		return
	}

	progress := float64(index) / float64(total)
	if progress > e.Progress {
		e.Progress = progress
	}
}

// RecordStageResult stores the result of the stage at index. Entries are never removed.
func (e *WorkflowExecution) RecordStageResult(index int, result map[string]any) {
	if e.StageResults == nil {
		e.StageResults = make(map[int]map[string]any)
	}

	if result == nil {
		result = map[string]any{}
	}

	e.StageResults[index] = result
}

// MergeArtifacts folds stage artifacts into the execution. List values are appended to
// whatever the key already holds, other values replace the previous one. Keys are never deleted.
func (e *WorkflowExecution) MergeArtifacts(artifacts map[string]any) {
	if e.Artifacts == nil {
		e.Artifacts = make(map[string]any)
	}

	for key, value := range artifacts {
		items, isList := AsList(value)
		if !isList {
			e.Artifacts[key] = value

			continue
		}

		existing, _ := AsList(e.Artifacts[key])
		merged := make([]any, 0, len(existing)+len(items))
		merged = append(merged, existing...)
		merged = append(merged, items...)
		e.Artifacts[key] = merged
	}
}

// MarkCompleted finishes the execution successfully.
func (e *WorkflowExecution) MarkCompleted(at time.Time) error {
	err := e.Transition(WorkflowStatusCompleted)
	if err != nil {
		return err
	}

	e.Progress = 1.0
	e.CompletedAt = &at

	return nil
}

// MarkFailed finishes the execution with the given error message. Progress is left untouched.
// Marking an already failed execution only refreshes the message.
func (e *WorkflowExecution) MarkFailed(message string, at time.Time) error {
	if e.Status != WorkflowStatusFailed {
		err := e.Transition(WorkflowStatusFailed)
		if err != nil {
			return err
		}
	}

	e.Error = message
	e.CompletedAt = &at

	return nil
}

// Elapsed returns the run duration; for unfinished executions it is measured against now.
func (e *WorkflowExecution) Elapsed(now time.Time) time.Duration {
	if e.CompletedAt != nil {
		return e.CompletedAt.Sub(e.StartedAt)
	}

	return now.Sub(e.StartedAt)
}

// AsList normalizes slice values so artifacts produced in Go ([]map[string]any, []string, ...)
// and artifacts decoded from JSON ([]any) accumulate the same way.
func AsList(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case []any:
		return v, true
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}

		return out, true
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out, true
}
