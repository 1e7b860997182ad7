package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecution() *WorkflowExecution {
	definition := &WorkflowDefinition{ID: "wf-1", Type: WorkflowTypeGuidedAssessment}

	return NewWorkflowExecution(definition, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
}

func TestWorkflowStatus_CanTransitionTo(t *testing.T) {
	allowed := map[WorkflowStatus][]WorkflowStatus{
		WorkflowStatusInitializing: {WorkflowStatusRunning, WorkflowStatusFailed},
		WorkflowStatusRunning:      {WorkflowStatusCompleted, WorkflowStatusFailed},
	}

	statuses := []WorkflowStatus{
		WorkflowStatusInitializing, WorkflowStatusRunning, WorkflowStatusPaused,
		WorkflowStatusCompleted, WorkflowStatusFailed, WorkflowStatusCancelled,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			expected := false

			for _, next := range allowed[from] {
				if next == to {
					expected = true
				}
			}

			assert.Equal(t, expected, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestWorkflowStatus_IsTerminal(t *testing.T) {
	assert.True(t, WorkflowStatusCompleted.IsTerminal())
	assert.True(t, WorkflowStatusFailed.IsTerminal())
	assert.False(t, WorkflowStatusRunning.IsTerminal())
	assert.False(t, WorkflowStatus("bogus").IsValid())
}

func TestWorkflowExecution_Lifecycle(t *testing.T) {
	execution := newTestExecution()

	assert.Equal(t, WorkflowStatusInitializing, execution.Status)
	require.NoError(t, execution.Transition(WorkflowStatusRunning))

	execution.SetStage(1, 4)
	assert.InDelta(t, 0.25, execution.Progress, 1e-9)
	assert.Equal(t, 1, execution.CurrentStage)

	execution.SetStage(0, 4)
	assert.InDelta(t, 0.25, execution.Progress, 1e-9, "progress never decreases")

	completedAt := execution.StartedAt.Add(90 * time.Second)
	require.NoError(t, execution.MarkCompleted(completedAt))

	assert.Equal(t, WorkflowStatusCompleted, execution.Status)
	assert.InDelta(t, 1.0, execution.Progress, 0)
	assert.Equal(t, 90*time.Second, execution.Elapsed(completedAt.Add(time.Hour)))

	assert.ErrorIs(t, execution.Transition(WorkflowStatusRunning), ErrInvalidTransition)
	assert.ErrorIs(t, execution.MarkFailed("late", completedAt), ErrInvalidTransition)
}

func TestWorkflowExecution_MarkFailed(t *testing.T) {
	execution := newTestExecution()

	require.NoError(t, execution.MarkFailed("Workflow execution failed: boom", execution.StartedAt))
	assert.Equal(t, WorkflowStatusFailed, execution.Status)
	assert.Equal(t, "Workflow execution failed: boom", execution.Error)

	require.NoError(t, execution.MarkFailed("again", execution.StartedAt))
	assert.Equal(t, "again", execution.Error)

	assert.ErrorIs(t, newTestExecution().MarkCompleted(time.Now()), ErrInvalidTransition)
}

func TestWorkflowExecution_ElapsedWhileRunning(t *testing.T) {
	execution := newTestExecution()

	assert.Equal(t, time.Minute, execution.Elapsed(execution.StartedAt.Add(time.Minute)))
}

func TestWorkflowExecution_MergeArtifacts(t *testing.T) {
	execution := newTestExecution()

	execution.MergeArtifacts(map[string]any{
		"findings": []map[string]any{{"id": "f1"}},
		"summary":  "first",
	})
	execution.MergeArtifacts(map[string]any{
		"findings": []any{map[string]any{"id": "f2"}},
		"summary":  "second",
		"tags":     []string{"auth"},
	})

	assert.Equal(t, []any{map[string]any{"id": "f1"}, map[string]any{"id": "f2"}}, execution.Artifacts["findings"])
	assert.Equal(t, "second", execution.Artifacts["summary"])
	assert.Equal(t, []any{"auth"}, execution.Artifacts["tags"])
}

func TestWorkflowExecution_RecordStageResult(t *testing.T) {
	execution := newTestExecution()

	execution.RecordStageResult(0, nil)
	execution.RecordStageResult(1, map[string]any{"ok": true})

	assert.Equal(t, map[string]any{}, execution.StageResults[0])
	assert.Equal(t, true, execution.StageResults[1]["ok"])
}

func TestAsList(t *testing.T) {
	items, ok := AsList([]string{"a", "b"})
	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, items)

	_, ok = AsList([]byte("raw"))
	assert.False(t, ok)

	_, ok = AsList("text")
	assert.False(t, ok)

	_, ok = AsList(nil)
	assert.False(t, ok)
}

func TestWorkflowDefinition_Clone(t *testing.T) {
	original := &WorkflowDefinition{
		ID:         "wf-1",
		Type:       WorkflowTypeTargetedAnalysis,
		Parameters: map[string]any{"depth": "deep"},
		Agents:     []string{"a1", "a2"},
		Stages: []Stage{
			{Name: "debate", Agents: []string{"a1", "a2"}, Dependencies: []string{"recon"}},
		},
	}

	clone := original.Clone()
	clone.Parameters["depth"] = "quick"
	clone.Agents[0] = "changed"
	clone.Stages[0].Agents[0] = "changed"
	clone.Stages[0].Dependencies[0] = "changed"

	assert.Equal(t, "deep", original.Parameters["depth"])
	assert.Equal(t, "a1", original.Agents[0])
	assert.Equal(t, "a1", original.Stages[0].Agents[0])
	assert.Equal(t, "recon", original.Stages[0].Dependencies[0])
	assert.Equal(t, 0, original.StageIndex("debate"))
	assert.Equal(t, -1, original.StageIndex("missing"))

	var nilDefinition *WorkflowDefinition
	assert.Nil(t, nilDefinition.Clone())
}

func TestStage_Agents(t *testing.T) {
	single := Stage{Agent: "a1"}
	assert.Equal(t, []string{"a1"}, single.AgentIDs())
	assert.False(t, single.IsMultiAgent())

	multi := Stage{Agents: []string{"a1", "a2"}}
	assert.Equal(t, []string{"a1", "a2"}, multi.AgentIDs())
	assert.True(t, multi.IsMultiAgent())

	assert.False(t, Stage{Agents: []string{"a1"}}.IsMultiAgent())
	assert.Nil(t, Stage{}.AgentIDs())
}

func TestWorkflowType(t *testing.T) {
	workflowType, ok := ParseWorkflowType("policy_compliance")
	assert.True(t, ok)
	assert.Equal(t, WorkflowTypePolicyCompliance, workflowType)
	assert.Equal(t, "Policy Compliance", workflowType.DisplayName())

	_, ok = ParseWorkflowType("port_scan")
	assert.False(t, ok)
	assert.Len(t, WorkflowTypes(), 6)
}
