package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDefinition is the root of every workflow definition error.
	ErrInvalidDefinition = errors.New("invalid workflow definition")

	// ErrUnknownWorkflowType is returned when no components exist for a workflow type.
	ErrUnknownWorkflowType = errors.New("unknown workflow type")
)

// DefinitionError describes why a workflow definition was rejected.
type DefinitionError struct {
	Field      string // Offending field (json name)
	StageIndex int    // Index of the offending stage, -1 for workflow-level fields
	StageName  string // Name of the offending stage, if known
	Reason     string // Human-readable reason
	Err        error  // Underlying cause, if any
}

func (e *DefinitionError) Error() string {
	if e.StageIndex >= 0 {
		if e.StageName != "" {
			return fmt.Sprintf("%v: stage %d (%q): %s", ErrInvalidDefinition, e.StageIndex, e.StageName, e.Reason)
		}

		return fmt.Sprintf("%v: stage %d: %s", ErrInvalidDefinition, e.StageIndex, e.Reason)
	}

	return fmt.Sprintf("%v: %s", ErrInvalidDefinition, e.Reason)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

func (e *DefinitionError) Is(target error) bool {
	return target == ErrInvalidDefinition || (e.Err != nil && errors.Is(e.Err, target))
}

func definitionError(field, reason string) *DefinitionError {
	return &DefinitionError{Field: field, StageIndex: -1, Reason: reason}
}

func stageError(index int, name, field, reason string) *DefinitionError {
	return &DefinitionError{Field: field, StageIndex: index, StageName: name, Reason: reason}
}

// IsInvalidDefinition checks if an error indicates a rejected workflow definition.
func IsInvalidDefinition(err error) bool {
	return errors.Is(err, ErrInvalidDefinition)
}
