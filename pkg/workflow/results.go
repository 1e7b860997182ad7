package workflow

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dukex/warden/pkg/models"
)

const unknownValue = "unknown"

// compile builds the result view of an execution. It only reads its inputs, and the elapsed time
// of a finished execution depends on its own timestamps, so repeated calls give equal results.
func compile(definition *models.WorkflowDefinition, execution *models.WorkflowExecution, now time.Time) *models.WorkflowResult {
	startedAt := execution.StartedAt

	result := &models.WorkflowResult{
		WorkflowID:     definition.ID,
		WorkflowType:   definition.Type,
		Name:           definition.Name,
		Description:    definition.Description,
		TargetID:       definition.TargetID,
		TargetType:     definition.TargetType,
		Status:         execution.Status,
		Progress:       execution.Progress,
		CurrentStage:   execution.CurrentStage,
		StartedAt:      &startedAt,
		ElapsedSeconds: execution.Elapsed(now).Seconds(),
		Error:          execution.Error,
		StageResults:   make(map[string]map[string]any, len(definition.Stages)),
		Artifacts:      make(map[string]any, len(execution.Artifacts)),
	}

	if execution.CompletedAt != nil {
		completedAt := *execution.CompletedAt
		result.CompletedAt = &completedAt
	}

	for i, stage := range definition.Stages {
		stageResult, ok := execution.StageResults[i]
		if !ok {
			result.StageResults[stage.Name] = map[string]any{"status": models.StageStatusNotExecuted}

			continue
		}

		copied := make(map[string]any, len(stageResult))
		for k, v := range stageResult {
			copied[k] = v
		}

		result.StageResults[stage.Name] = copied
	}

	for key, value := range execution.Artifacts {
		if items, ok := models.AsList(value); ok {
			value = append([]any(nil), items...)
		}

		result.Artifacts[key] = value
	}

	if findings, ok := models.AsList(execution.Artifacts[models.ArtifactFindings]); ok {
		result.Findings = append([]any{}, findings...)
		result.SeverityCounts = countBy(findings, "severity")
	}

	if verifications, ok := models.AsList(execution.Artifacts[models.ArtifactVerifications]); ok {
		result.Verifications = summarizeVerifications(verifications)
	}

	if plans, ok := models.AsList(execution.Artifacts[models.ArtifactRemediationPlans]); ok {
		result.Remediation = &models.RemediationSummary{
			Total:        len(plans),
			ByPriority:   countBy(plans, "priority"),
			ByComplexity: countBy(plans, "complexity"),
		}
	}

	if evaluation, ok := execution.Artifacts[models.ArtifactPolicyEvaluation]; ok {
		result.PolicyEvaluation = evaluation
	}

	return result
}

func summarizeVerifications(verifications []any) *models.VerificationSummary {
	summary := &models.VerificationSummary{Total: len(verifications)}

	for _, item := range verifications {
		status := field(item, "status")
		if status == unknownValue {
			status = field(item, "exploitability")
		}

		switch status {
		case models.VerificationExploitable:
			summary.Exploitable++
		case models.VerificationPotentiallyExploitable:
			summary.PotentiallyExploitable++
		case models.VerificationNotExploitable:
			summary.NotExploitable++
		default:
			summary.Undetermined++
		}
	}

	return summary
}

func countBy(items []any, key string) map[string]int {
	counts := make(map[string]int)

	for _, item := range items {
		counts[field(item, key)]++
	}

	return counts
}

// field reads a string attribute of an artifact item, normalized to lower case.
func field(item any, key string) string {
	entry, ok := item.(map[string]any)
	if !ok {
		return unknownValue
	}

	value, ok := entry[key]
	if !ok || value == nil {
		return unknownValue
	}

	normalized := strings.ToLower(strings.TrimSpace(fmt.Sprint(value)))
	if normalized == "" {
		return unknownValue
	}

	return normalized
}

// ResultToMap converts a compiled result into the generic mapping carried by events.
func ResultToMap(result *models.WorkflowResult) (map[string]any, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow result: %w", err)
	}

	var out map[string]any

	err = json.Unmarshal(data, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow result: %w", err)
	}

	return out, nil
}
