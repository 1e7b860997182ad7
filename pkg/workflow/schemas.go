package workflow

import (
	"fmt"
	"strings"

	"github.com/dukex/warden/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// DefaultParameters are used when a workflow is created without parameters.
func DefaultParameters() map[string]any {
	return map[string]any{"depth": "standard"}
}

// ParameterSchema returns the JSON schema the parameters of a workflow type must satisfy.
// Unknown keys are allowed and passed through to the agents.
func ParameterSchema(workflowType models.WorkflowType) map[string]any {
	properties := map[string]any{
		"depth": map[string]any{
			"type":        "string",
			"enum":        []any{"quick", "standard", "deep"},
			"description": "How thoroughly agents explore the target",
		},
		"focus": map[string]any{
			"type":        "string",
			"description": "Area of the target the analysis concentrates on",
		},
		"severity_threshold": map[string]any{
			"type":        "string",
			"enum":        []any{"info", "low", "medium", "high", "critical"},
			"description": "Findings below this severity are not reported",
		},
	}

	switch workflowType {
	case models.WorkflowTypePolicyCompliance, models.WorkflowTypeComprehensive:
		properties["policies"] = map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Identifiers of the policies to evaluate",
		}
	case models.WorkflowTypeExploitationVerification, models.WorkflowTypeRemediationPlanning:
		properties["finding_ids"] = map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Findings the workflow is restricted to",
		}
	}

	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": true,
	}
}

// ValidateParameters checks parameters against the schema of the workflow type.
func ValidateParameters(workflowType models.WorkflowType, parameters map[string]any) error {
	if parameters == nil {
		parameters = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(ParameterSchema(workflowType))
	dataLoader := gojsonschema.NewGoLoader(parameters)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return &DefinitionError{Field: "parameters", StageIndex: -1, Reason: err.Error(), Err: err}
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, resultErr := range result.Errors() {
			messages = append(messages, resultErr.String())
		}

		return definitionError("parameters", fmt.Sprintf("parameters do not match schema: %s", strings.Join(messages, "; ")))
	}

	return nil
}
