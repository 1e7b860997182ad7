package models

import "time"

// Artifact keys with a derived summary in the compiled result.
const (
	ArtifactFindings         = "findings"
	ArtifactVerifications    = "verifications"
	ArtifactRemediationPlans = "remediation_plans"
	ArtifactPolicyEvaluation = "policy_evaluation"
)

// StageStatusNotExecuted marks stages that have no recorded result.
const StageStatusNotExecuted = "not_executed"

// Verification statuses counted in VerificationSummary.
const (
	VerificationExploitable            = "exploitable"
	VerificationPotentiallyExploitable = "potentially_exploitable"
	VerificationNotExploitable         = "not_exploitable"
	VerificationUndetermined           = "undetermined"
)

// WorkflowResult is the compiled view of a workflow definition and its execution.
type WorkflowResult struct {
	WorkflowID     string                    `json:"workflow_id"`
	WorkflowType   WorkflowType              `json:"workflow_type"`
	Name           string                    `json:"name"`
	Description    string                    `json:"description"`
	TargetID       string                    `json:"target_id"`
	TargetType     string                    `json:"target_type"`
	Status         WorkflowStatus            `json:"status"`
	Progress       float64                   `json:"progress"`
	CurrentStage   int                       `json:"current_stage"`
	StartedAt      *time.Time                `json:"started_at,omitempty"`
	CompletedAt    *time.Time                `json:"completed_at,omitempty"`
	ElapsedSeconds float64                   `json:"elapsed_seconds"`
	Error          string                    `json:"error,omitempty"`
	StageResults   map[string]map[string]any `json:"stage_results,omitempty"`

	Findings         []any                `json:"findings,omitempty"`
	SeverityCounts   map[string]int       `json:"severity_counts,omitempty"`
	Verifications    *VerificationSummary `json:"verification_summary,omitempty"`
	Remediation      *RemediationSummary  `json:"remediation_summary,omitempty"`
	PolicyEvaluation any                  `json:"policy_evaluation,omitempty"`
	Artifacts        map[string]any       `json:"artifacts"`
}

// Succeeded reports whether the workflow finished without error.
func (r *WorkflowResult) Succeeded() bool {
	return r.Status == WorkflowStatusCompleted
}

// VerificationSummary counts verification outcomes by exploitability.
type VerificationSummary struct {
	Total                  int `json:"total"`
	Exploitable            int `json:"exploitable"`
	PotentiallyExploitable int `json:"potentially_exploitable"`
	NotExploitable         int `json:"not_exploitable"`
	Undetermined           int `json:"undetermined"`
}

// RemediationSummary counts remediation plans by priority and by complexity.
type RemediationSummary struct {
	Total        int            `json:"total"`
	ByPriority   map[string]int `json:"by_priority"`
	ByComplexity map[string]int `json:"by_complexity"`
}
