package workflow

import (
	"fmt"

	"github.com/dukex/warden/pkg/models"
)

// Agent identifiers used by the default components.
const (
	AgentCodeAnalyzer         = "code_analyzer"
	AgentVulnerabilityScanner = "vulnerability_scanner"
	AgentExploitVerifier      = "exploit_verifier"
	AgentRemediationPlanner   = "remediation_planner"
	AgentPolicyEvaluator      = "policy_evaluator"
)

// Communication patterns used by the default components.
const (
	PatternStructuredDebate    = "structured_debate"
	PatternChainOfThought      = "chain_of_thought"
	PatternIterativeFeedback   = "iterative_feedback"
	PatternParallelExploration = "parallel_exploration"
)

// ComponentGenerator produces the agents, stages and communication patterns of a workflow.
type ComponentGenerator interface {
	Generate(workflowType models.WorkflowType, targetType string, parameters map[string]any) (models.Components, error)
}

// DefaultGenerator derives components from the workflow type. The target type and the
// optional "focus" parameter only shape stage descriptions.
type DefaultGenerator struct{}

// NewDefaultGenerator creates the built-in component generator.
func NewDefaultGenerator() *DefaultGenerator {
	return &DefaultGenerator{}
}

func (g *DefaultGenerator) Generate(workflowType models.WorkflowType, targetType string, parameters map[string]any) (models.Components, error) {
	if targetType == "" {
		targetType = "target"
	}

	focus, _ := parameters["focus"].(string)

	switch workflowType {
	case models.WorkflowTypeGuidedAssessment:
		return guidedAssessment(targetType), nil
	case models.WorkflowTypeTargetedAnalysis:
		return targetedAnalysis(targetType, focus), nil
	case models.WorkflowTypeExploitationVerification:
		return exploitationVerification(targetType), nil
	case models.WorkflowTypeRemediationPlanning:
		return remediationPlanning(targetType), nil
	case models.WorkflowTypePolicyCompliance:
		return policyCompliance(targetType), nil
	case models.WorkflowTypeComprehensive:
		return MergeComponents(guidedAssessment(targetType), policyCompliance(targetType)), nil
	default:
		return models.Components{}, fmt.Errorf("%w: %q", ErrUnknownWorkflowType, workflowType)
	}
}

func guidedAssessment(targetType string) models.Components {
	return models.Components{
		Agents: []string{AgentCodeAnalyzer, AgentVulnerabilityScanner, AgentExploitVerifier, AgentRemediationPlanner},
		Stages: []models.Stage{
			{
				Name:        "reconnaissance",
				Description: fmt.Sprintf("Map the structure, entry points and attack surface of the %s", targetType),
				Agent:       AgentCodeAnalyzer,
			},
			{
				Name:                 "vulnerability_discovery",
				Description:          fmt.Sprintf("Explore the %s for vulnerabilities from several angles", targetType),
				Agents:               []string{AgentCodeAnalyzer, AgentVulnerabilityScanner},
				CommunicationPattern: PatternParallelExploration,
				Dependencies:         []string{"reconnaissance"},
			},
			{
				Name:                 "exploit_verification",
				Description:          "Debate whether each finding is exploitable",
				Agents:               []string{AgentExploitVerifier, AgentVulnerabilityScanner},
				CommunicationPattern: PatternStructuredDebate,
				Dependencies:         []string{"vulnerability_discovery"},
			},
			{
				Name:         "remediation_planning",
				Description:  "Plan remediations for the verified findings",
				Agent:        AgentRemediationPlanner,
				Dependencies: []string{"exploit_verification"},
			},
		},
		CommunicationPatterns: []string{PatternParallelExploration, PatternStructuredDebate},
	}
}

func targetedAnalysis(targetType, focus string) models.Components {
	description := fmt.Sprintf("Analyze the %s in depth", targetType)
	if focus != "" {
		description = fmt.Sprintf("Analyze the %s in depth, focusing on %s", targetType, focus)
	}

	return models.Components{
		Agents: []string{AgentCodeAnalyzer, AgentVulnerabilityScanner},
		Stages: []models.Stage{
			{
				Name:        "scope_analysis",
				Description: fmt.Sprintf("Identify the parts of the %s relevant to the analysis", targetType),
				Agent:       AgentCodeAnalyzer,
			},
			{
				Name:                 "targeted_analysis",
				Description:          description,
				Agents:               []string{AgentCodeAnalyzer, AgentVulnerabilityScanner},
				CommunicationPattern: PatternChainOfThought,
				Dependencies:         []string{"scope_analysis"},
			},
		},
		CommunicationPatterns: []string{PatternChainOfThought},
	}
}

func exploitationVerification(targetType string) models.Components {
	return models.Components{
		Agents: []string{AgentVulnerabilityScanner, AgentExploitVerifier},
		Stages: []models.Stage{
			{
				Name:        "finding_review",
				Description: fmt.Sprintf("Collect and review known findings for the %s", targetType),
				Agent:       AgentVulnerabilityScanner,
			},
			{
				Name:                 "exploit_verification",
				Description:          "Debate whether each finding is exploitable",
				Agents:               []string{AgentExploitVerifier, AgentVulnerabilityScanner},
				CommunicationPattern: PatternStructuredDebate,
				Dependencies:         []string{"finding_review"},
			},
		},
		CommunicationPatterns: []string{PatternStructuredDebate},
	}
}

func remediationPlanning(targetType string) models.Components {
	return models.Components{
		Agents: []string{AgentCodeAnalyzer, AgentRemediationPlanner},
		Stages: []models.Stage{
			{
				Name:        "impact_analysis",
				Description: fmt.Sprintf("Assess the impact of known findings on the %s", targetType),
				Agent:       AgentCodeAnalyzer,
			},
			{
				Name:                 "remediation_planning",
				Description:          "Iterate on remediation plans until the analyzer accepts them",
				Agents:               []string{AgentRemediationPlanner, AgentCodeAnalyzer},
				CommunicationPattern: PatternIterativeFeedback,
				Dependencies:         []string{"impact_analysis"},
			},
		},
		CommunicationPatterns: []string{PatternIterativeFeedback},
	}
}

func policyCompliance(targetType string) models.Components {
	return models.Components{
		Agents: []string{AgentCodeAnalyzer, AgentPolicyEvaluator},
		Stages: []models.Stage{
			{
				Name:        "policy_discovery",
				Description: fmt.Sprintf("Collect the facts about the %s the policies are evaluated against", targetType),
				Agent:       AgentCodeAnalyzer,
			},
			{
				Name:         "policy_evaluation",
				Description:  "Evaluate the configured policies",
				Agent:        AgentPolicyEvaluator,
				Dependencies: []string{"policy_discovery"},
			},
		},
		CommunicationPatterns: []string{PatternChainOfThought},
	}
}

// MergeComponents combines two component sets. Agents and communication patterns are unioned
// without duplicates, keeping first-seen order. Stages are merged by name: an override stage
// replaces the base stage of the same name in place, other override stages are appended.
// Neither input is modified.
func MergeComponents(base, override models.Components) models.Components {
	merged := models.Components{
		Agents:                unionStrings(base.Agents, override.Agents),
		CommunicationPatterns: unionStrings(base.CommunicationPatterns, override.CommunicationPatterns),
		Stages:                make([]models.Stage, 0, len(base.Stages)+len(override.Stages)),
	}

	positions := make(map[string]int, len(base.Stages)+len(override.Stages))

	for _, stages := range [][]models.Stage{base.Stages, override.Stages} {
		for _, stage := range stages {
			stage = copyStage(stage)

			if i, ok := positions[stage.Name]; ok {
				merged.Stages[i] = stage

				continue
			}

			positions[stage.Name] = len(merged.Stages)
			merged.Stages = append(merged.Stages, stage)
		}
	}

	return merged
}

func unionStrings(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)

	for _, list := range lists {
		for _, item := range list {
			if _, ok := seen[item]; ok {
				continue
			}

			seen[item] = struct{}{}
			out = append(out, item)
		}
	}

	return out
}

func copyStage(stage models.Stage) models.Stage {
	if stage.Agents != nil {
		stage.Agents = append([]string(nil), stage.Agents...)
	}

	if stage.Dependencies != nil {
		stage.Dependencies = append([]string(nil), stage.Dependencies...)
	}

	return stage
}
