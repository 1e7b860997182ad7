package workflow

import (
	"testing"

	"github.com/dukex/warden/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stageNames(stages []models.Stage) []string {
	names := make([]string, 0, len(stages))
	for _, stage := range stages {
		names = append(names, stage.Name)
	}

	return names
}

func TestDefaultGenerator_StagesPerType(t *testing.T) {
	tests := []struct {
		workflowType models.WorkflowType
		stages       []string
	}{
		{
			models.WorkflowTypeGuidedAssessment,
			[]string{"reconnaissance", "vulnerability_discovery", "exploit_verification", "remediation_planning"},
		},
		{models.WorkflowTypeTargetedAnalysis, []string{"scope_analysis", "targeted_analysis"}},
		{models.WorkflowTypeExploitationVerification, []string{"finding_review", "exploit_verification"}},
		{models.WorkflowTypeRemediationPlanning, []string{"impact_analysis", "remediation_planning"}},
		{models.WorkflowTypePolicyCompliance, []string{"policy_discovery", "policy_evaluation"}},
		{
			models.WorkflowTypeComprehensive,
			[]string{
				"reconnaissance", "vulnerability_discovery", "exploit_verification", "remediation_planning",
				"policy_discovery", "policy_evaluation",
			},
		},
	}

	generator := NewDefaultGenerator()

	for _, tt := range tests {
		t.Run(string(tt.workflowType), func(t *testing.T) {
			components, err := generator.Generate(tt.workflowType, "repository", nil)
			require.NoError(t, err)

			assert.Equal(t, tt.stages, stageNames(components.Stages))
			assert.NotEmpty(t, components.Agents)
			assert.NotEmpty(t, components.CommunicationPatterns)
		})
	}
}

func TestDefaultGenerator_DescriptionsMentionTarget(t *testing.T) {
	components, err := NewDefaultGenerator().Generate(models.WorkflowTypeTargetedAnalysis, "container_image",
		map[string]any{"focus": "authentication"})
	require.NoError(t, err)

	assert.Contains(t, components.Stages[0].Description, "container_image")
	assert.Contains(t, components.Stages[1].Description, "authentication")
}

func TestDefaultGenerator_UnknownType(t *testing.T) {
	_, err := NewDefaultGenerator().Generate("port_scan", "repository", nil)

	assert.ErrorIs(t, err, ErrUnknownWorkflowType)
}

func TestMergeComponents(t *testing.T) {
	base := models.Components{
		Agents: []string{"a1", "a2"},
		Stages: []models.Stage{
			{Name: "one", Description: "base one", Agent: "a1"},
			{Name: "two", Description: "base two", Agent: "a2"},
		},
		CommunicationPatterns: []string{PatternChainOfThought},
	}
	override := models.Components{
		Agents: []string{"a2", "a3"},
		Stages: []models.Stage{
			{Name: "two", Description: "override two", Agents: []string{"a2", "a3"}, CommunicationPattern: PatternStructuredDebate},
			{Name: "three", Description: "override three", Agent: "a3"},
		},
		CommunicationPatterns: []string{PatternStructuredDebate, PatternChainOfThought},
	}

	merged := MergeComponents(base, override)

	assert.Equal(t, []string{"a1", "a2", "a3"}, merged.Agents)
	assert.Equal(t, []string{PatternChainOfThought, PatternStructuredDebate}, merged.CommunicationPatterns)
	assert.Equal(t, []string{"one", "two", "three"}, stageNames(merged.Stages))

	// Stages present in both take the override's version
	assert.Equal(t, override.Stages[0], merged.Stages[1])
	assert.Equal(t, base.Stages[0], merged.Stages[0])
	assert.Equal(t, override.Stages[1], merged.Stages[2])
}

func TestMergeComponents_DoesNotModifyInputs(t *testing.T) {
	base := models.Components{
		Agents: []string{"a1"},
		Stages: []models.Stage{{Name: "one", Description: "one", Agents: []string{"a1"}}},
	}
	override := models.Components{Agents: []string{"a1", "a2"}}

	merged := MergeComponents(base, override)
	merged.Agents[0] = "changed"
	merged.Stages[0].Agents[0] = "changed"

	assert.Equal(t, []string{"a1"}, base.Agents)
	assert.Equal(t, []string{"a1"}, base.Stages[0].Agents)
}

func TestMergeComponents_Empty(t *testing.T) {
	merged := MergeComponents(models.Components{}, models.Components{})

	assert.Empty(t, merged.Agents)
	assert.Empty(t, merged.Stages)
	assert.Empty(t, merged.CommunicationPatterns)
}

func TestParameterSchema_ValidParameters(t *testing.T) {
	err := ValidateParameters(models.WorkflowTypePolicyCompliance, map[string]any{
		"depth":              "deep",
		"severity_threshold": "high",
		"policies":           []string{"owasp-top-10"},
		"custom":             42,
	})

	assert.NoError(t, err)
	assert.NoError(t, ValidateParameters(models.WorkflowTypeGuidedAssessment, nil))
	assert.NoError(t, ValidateParameters(models.WorkflowTypeGuidedAssessment, DefaultParameters()))
}

func TestParameterSchema_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		parameters map[string]any
	}{
		{"unknown depth", map[string]any{"depth": "extreme"}},
		{"depth not a string", map[string]any{"depth": 3}},
		{"unknown severity", map[string]any{"severity_threshold": "urgent"}},
		{"policies not a list", map[string]any{"policies": "owasp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParameters(models.WorkflowTypePolicyCompliance, tt.parameters)

			definitionErr := requireDefinitionError(t, err)
			assert.Equal(t, "parameters", definitionErr.Field)
		})
	}
}
