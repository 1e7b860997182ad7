package events

import (
	"encoding/json"
	"testing"

	"github.com/dukex/warden/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitializationEvent(t *testing.T) {
	event := NewInitializationEvent("orchestrator", "wf-1", models.WorkflowTypeGuidedAssessment)

	assert.Equal(t, WorkflowInitializingEvent, event.GetType())
	assert.Equal(t, "orchestrator", event.SenderID)
	assert.Equal(t, "wf-1", event.WorkflowID)
	assert.Equal(t, models.WorkflowStatusInitializing, event.Status)
	assert.InDelta(t, 0.0, event.Progress, 0)
	assert.Equal(t, "Workflow initialized", event.Result["message"])
	assert.True(t, event.IsBroadcast())
	assert.NotEmpty(t, event.ID)
}

func TestNewCompletionEvent(t *testing.T) {
	result := map[string]any{"status": "completed"}

	event := NewCompletionEvent("orchestrator", "wf-1", models.WorkflowTypeTargetedAnalysis, result)

	assert.Equal(t, WorkflowCompletedEvent, event.GetType())
	assert.Equal(t, models.WorkflowStatusCompleted, event.Status)
	assert.InDelta(t, 1.0, event.Progress, 0)
	assert.Equal(t, result, event.Result)
}

func TestNewFailureEvent(t *testing.T) {
	event := NewFailureEvent("orchestrator", "wf-1", models.WorkflowTypeComprehensive, 0.5, "Error in stage recon: boom")

	assert.Equal(t, WorkflowFailedEvent, event.GetType())
	assert.Equal(t, models.WorkflowStatusFailed, event.Status)
	assert.InDelta(t, 0.5, event.Progress, 0)
	assert.Equal(t, "Error in stage recon: boom", event.Result["error"])
}

func TestWorkflowEvent_IsBroadcast(t *testing.T) {
	event := NewWorkflowEvent(StageStartedEvent, "orchestrator", "wf-1", models.WorkflowTypeGuidedAssessment,
		models.WorkflowStatusRunning, 0.25, nil, "agent-1")

	assert.False(t, event.IsBroadcast())
}

func TestWorkflowEvent_JSONSerialization(t *testing.T) {
	original := NewWorkflowEvent(StageCompletedEvent, "orchestrator", "wf-1", models.WorkflowTypeGuidedAssessment,
		models.WorkflowStatusRunning, 0.25, map[string]any{"stage": "reconnaissance"}, "")

	jsonData, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"type":"workflow.stage.completed"`)
	assert.Contains(t, string(jsonData), `"workflow_type":"guided_assessment"`)
	assert.NotContains(t, string(jsonData), `"target_id"`)

	var deserialized WorkflowEvent

	err = json.Unmarshal(jsonData, &deserialized)
	require.NoError(t, err)

	assert.Equal(t, original.ID, deserialized.ID)
	assert.Equal(t, original.Type, deserialized.Type)
	assert.Equal(t, original.Status, deserialized.Status)
	assert.InDelta(t, original.Progress, deserialized.Progress, 0)
	assert.Equal(t, "reconnaissance", deserialized.Result["stage"])
	assert.True(t, original.Timestamp.Equal(deserialized.Timestamp))
}

func TestEventTypes(t *testing.T) {
	types := EventTypes()

	assert.Len(t, types, 6)
	assert.Contains(t, types, WorkflowRunningEvent)
	assert.Contains(t, types, StageStartedEvent)
}
