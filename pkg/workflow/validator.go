// Package workflow implements the workflow orchestration engine: definition validation,
// component generation, stage execution, status events and result compilation.
package workflow

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/dukex/warden/pkg/models"
	"github.com/go-playground/validator/v10"
)

// Validator checks workflow definitions for structural correctness.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}

		return name
	})

	// The tag name is a constant, registration cannot fail.
	_ = validate.RegisterValidation("workflow_type", func(fl validator.FieldLevel) bool {
		return models.WorkflowType(fl.Field().String()).IsValid()
	})

	return &Validator{validate: validate}
}

// Validate checks the definition and returns the first violation as a *DefinitionError.
// Checks run in order: required fields, agents, stages (each stage in sequence) and finally
// communication patterns.
func (v *Validator) Validate(definition *models.WorkflowDefinition) error {
	if definition == nil {
		return definitionError("", "definition cannot be nil")
	}

	err := v.validateRequiredFields(definition)
	if err != nil {
		return err
	}

	if len(definition.Agents) == 0 {
		return definitionError("agents", "agents list cannot be empty")
	}

	if len(definition.Stages) == 0 {
		return definitionError("stages", "stages list cannot be empty")
	}

	seen := make(map[string]struct{}, len(definition.Stages))

	for i, stage := range definition.Stages {
		err := validateStage(definition, i, stage, seen)
		if err != nil {
			return err
		}

		seen[stage.Name] = struct{}{}
	}

	if len(definition.CommunicationPatterns) == 0 {
		return definitionError("communication_patterns", "communication_patterns list cannot be empty")
	}

	return nil
}

func (v *Validator) validateRequiredFields(definition *models.WorkflowDefinition) error {
	err := v.validate.Struct(definition)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return &DefinitionError{StageIndex: -1, Reason: err.Error(), Err: err}
	}

	first := validationErrors[0]

	reason := first.Field() + " is required"
	if first.Tag() == "workflow_type" {
		reason = fmt.Sprintf("unknown workflow type %q", first.Value())
	}

	return &DefinitionError{Field: first.Field(), StageIndex: -1, Reason: reason, Err: ErrInvalidDefinition}
}

// validateStage checks one stage; preceding holds the names of the stages declared before it.
func validateStage(definition *models.WorkflowDefinition, index int, stage models.Stage, preceding map[string]struct{}) error {
	if stage.Name == "" {
		return stageError(index, "", "name", "name is required")
	}

	if _, duplicate := preceding[stage.Name]; duplicate {
		return stageError(index, stage.Name, "name", "stage name is not unique")
	}

	if stage.Description == "" {
		return stageError(index, stage.Name, "description", "description is required")
	}

	hasSingle := stage.Agent != ""
	hasList := len(stage.Agents) > 0

	if hasSingle == hasList {
		return stageError(index, stage.Name, "agent", "exactly one of agent or agents must be set")
	}

	for _, agentID := range stage.AgentIDs() {
		if !slices.Contains(definition.Agents, agentID) {
			return stageError(index, stage.Name, "agents", fmt.Sprintf("agent %q is not declared in the workflow agents", agentID))
		}
	}

	if stage.IsMultiAgent() {
		if stage.CommunicationPattern == "" {
			return stageError(index, stage.Name, "communication_pattern", "stage has multiple agents but no communication_pattern")
		}

		if !slices.Contains(definition.CommunicationPatterns, stage.CommunicationPattern) {
			return stageError(index, stage.Name, "communication_pattern",
				fmt.Sprintf("communication_pattern %q is not declared in the workflow communication patterns", stage.CommunicationPattern))
		}
	}

	for _, dependency := range stage.Dependencies {
		if _, ok := preceding[dependency]; !ok {
			return stageError(index, stage.Name, "dependencies",
				fmt.Sprintf("dependency %q does not name an earlier stage", dependency))
		}
	}

	return nil
}
