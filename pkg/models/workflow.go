// Package models defines the core domain models for multi-agent workflow orchestration
package models

import "time"

// WorkflowType represents the category of task a workflow performs against its target.
type WorkflowType string

const (
	WorkflowTypeGuidedAssessment         WorkflowType = "guided_assessment"
	WorkflowTypeTargetedAnalysis         WorkflowType = "targeted_analysis"
	WorkflowTypeExploitationVerification WorkflowType = "exploitation_verification"
	WorkflowTypeRemediationPlanning      WorkflowType = "remediation_planning"
	WorkflowTypePolicyCompliance         WorkflowType = "policy_compliance"
	WorkflowTypeComprehensive            WorkflowType = "comprehensive"
)

// WorkflowTypes lists every known workflow type in declaration order.
func WorkflowTypes() []WorkflowType {
	return []WorkflowType{
		WorkflowTypeGuidedAssessment,
		WorkflowTypeTargetedAnalysis,
		WorkflowTypeExploitationVerification,
		WorkflowTypeRemediationPlanning,
		WorkflowTypePolicyCompliance,
		WorkflowTypeComprehensive,
	}
}

func (t WorkflowType) String() string {
	return string(t)
}

// IsValid reports whether t is one of the known workflow types.
func (t WorkflowType) IsValid() bool {
	switch t {
	case WorkflowTypeGuidedAssessment, WorkflowTypeTargetedAnalysis, WorkflowTypeExploitationVerification,
		WorkflowTypeRemediationPlanning, WorkflowTypePolicyCompliance, WorkflowTypeComprehensive:
		return true
	default:
		return false
	}
}

// DisplayName returns a human readable name, used when a workflow is created without one.
func (t WorkflowType) DisplayName() string {
	switch t {
	case WorkflowTypeGuidedAssessment:
		return "Guided Assessment"
	case WorkflowTypeTargetedAnalysis:
		return "Targeted Analysis"
	case WorkflowTypeExploitationVerification:
		return "Exploitation Verification"
	case WorkflowTypeRemediationPlanning:
		return "Remediation Planning"
	case WorkflowTypePolicyCompliance:
		return "Policy Compliance"
	case WorkflowTypeComprehensive:
		return "Comprehensive Assessment"
	default:
		return string(t)
	}
}

// ParseWorkflowType converts a raw string into a known WorkflowType.
func ParseWorkflowType(raw string) (WorkflowType, bool) {
	t := WorkflowType(raw)

	return t, t.IsValid()
}

// Stage is one ordered step of a workflow. A stage is bound either to a single agent (Agent)
// or to a list of agents (Agents); a stage with more than one agent names the communication
// pattern the agents use to produce a combined result.
type Stage struct {
	Name                 string   `json:"name"                            yaml:"name"`
	Description          string   `json:"description"                     yaml:"description"`
	Agent                string   `json:"agent,omitempty"                 yaml:"agent,omitempty"`
	Agents               []string `json:"agents,omitempty"                yaml:"agents,omitempty"`
	CommunicationPattern string   `json:"communication_pattern,omitempty" yaml:"communication_pattern,omitempty"`
	Dependencies         []string `json:"dependencies,omitempty"          yaml:"dependencies,omitempty"`
}

// AgentIDs returns the agents bound to the stage, in declaration order.
func (s Stage) AgentIDs() []string {
	if len(s.Agents) > 0 {
		return append([]string(nil), s.Agents...)
	}

	if s.Agent != "" {
		return []string{s.Agent}
	}

	return nil
}

// IsMultiAgent reports whether the stage is driven by more than one agent.
func (s Stage) IsMultiAgent() bool {
	return len(s.Agents) > 1
}

func (s Stage) clone() Stage {
	c := s
	c.Agents = cloneStrings(s.Agents)
	c.Dependencies = cloneStrings(s.Dependencies)

	return c
}

// Components is the set of agents, stages and communication patterns a workflow is built from.
type Components struct {
	Agents                []string `json:"agents"                 yaml:"agents"`
	Stages                []Stage  `json:"stages"                 yaml:"stages"`
	CommunicationPatterns []string `json:"communication_patterns" yaml:"communication_patterns"`
}

// WorkflowDefinition is the validated, immutable declaration of a workflow.
type WorkflowDefinition struct {
	ID                    string         `json:"id"                     yaml:"id"                     validate:"required"`
	Type                  WorkflowType   `json:"type"                   yaml:"type"                   validate:"required,workflow_type"`
	Name                  string         `json:"name"                   yaml:"name"                   validate:"required"`
	Description           string         `json:"description"            yaml:"description"`
	TargetID              string         `json:"target_id"              yaml:"target_id"              validate:"required"`
	TargetType            string         `json:"target_type"            yaml:"target_type"            validate:"required"`
	Parameters            map[string]any `json:"parameters"             yaml:"parameters"`
	Agents                []string       `json:"agents"                 yaml:"agents"`
	Stages                []Stage        `json:"stages"                 yaml:"stages"`
	CommunicationPatterns []string       `json:"communication_patterns" yaml:"communication_patterns"`
	CreatedAt             time.Time      `json:"created_at"             yaml:"created_at"`
	Metadata              map[string]any `json:"metadata,omitempty"     yaml:"metadata,omitempty"`
}

// StageIndex returns the position of the named stage, or -1.
func (d *WorkflowDefinition) StageIndex(name string) int {
	for i, stage := range d.Stages {
		if stage.Name == name {
			return i
		}
	}

	return -1
}

// Clone copies the definition so the stored value cannot be changed through the copy.
// Parameter and metadata values are copied one level deep.
func (d *WorkflowDefinition) Clone() *WorkflowDefinition {
	if d == nil {
		return nil
	}

	c := *d
	c.Parameters = cloneMap(d.Parameters)
	c.Metadata = cloneMap(d.Metadata)
	c.Agents = cloneStrings(d.Agents)
	c.CommunicationPatterns = cloneStrings(d.CommunicationPatterns)

	if d.Stages != nil {
		c.Stages = make([]Stage, len(d.Stages))
		for i, stage := range d.Stages {
			c.Stages[i] = stage.clone()
		}
	}

	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}

	return append([]string(nil), in...)
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}

	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}
