// Package events defines event types and structures for workflow lifecycle notifications.
package events

import (
	"time"

	"github.com/dukex/warden/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Kafka topic.
const Topic = "warden.workflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowInitializingEvent EventType = "workflow.initializing"
	WorkflowRunningEvent      EventType = "workflow.running"
	WorkflowCompletedEvent    EventType = "workflow.completed"
	WorkflowFailedEvent       EventType = "workflow.failed"

	StageStartedEvent   EventType = "workflow.stage.started"
	StageCompletedEvent EventType = "workflow.stage.completed"
)

// EventTypes lists every event type carried on Topic.
func EventTypes() []EventType {
	return []EventType{
		WorkflowInitializingEvent,
		WorkflowRunningEvent,
		WorkflowCompletedEvent,
		WorkflowFailedEvent,
		StageStartedEvent,
		StageCompletedEvent,
	}
}

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// WorkflowEvent broadcasts a status change of a workflow execution.
// An empty TargetID means the event is addressed to every subscriber.
type WorkflowEvent struct {
	BaseEvent

	SenderID     string                `json:"sender_id"`
	WorkflowType models.WorkflowType   `json:"workflow_type"`
	Status       models.WorkflowStatus `json:"status"`
	Progress     float64               `json:"progress"`
	Result       map[string]any        `json:"result,omitempty"`
	TargetID     string                `json:"target_id,omitempty"`
}

func (w WorkflowEvent) GetType() EventType {
	return w.Type
}

// IsBroadcast reports whether the event has no specific recipient.
func (w WorkflowEvent) IsBroadcast() bool {
	return w.TargetID == ""
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		Metadata:   make(map[string]any),
	}
}

// NewWorkflowEvent builds a workflow event of the given type.
func NewWorkflowEvent(
	eventType EventType,
	senderID string,
	workflowID string,
	workflowType models.WorkflowType,
	status models.WorkflowStatus,
	progress float64,
	result map[string]any,
	targetID string,
) WorkflowEvent {
	return WorkflowEvent{
		BaseEvent:    NewBaseEvent(eventType, workflowID),
		SenderID:     senderID,
		WorkflowType: workflowType,
		Status:       status,
		Progress:     progress,
		Result:       result,
		TargetID:     targetID,
	}
}

// NewInitializationEvent announces a fresh execution.
func NewInitializationEvent(senderID, workflowID string, workflowType models.WorkflowType) WorkflowEvent {
	return NewWorkflowEvent(
		WorkflowInitializingEvent,
		senderID,
		workflowID,
		workflowType,
		models.WorkflowStatusInitializing,
		0.0,
		map[string]any{"message": "Workflow initialized"},
		"",
	)
}

// NewCompletionEvent announces a successful execution carrying its final result.
func NewCompletionEvent(senderID, workflowID string, workflowType models.WorkflowType, result map[string]any) WorkflowEvent {
	return NewWorkflowEvent(
		WorkflowCompletedEvent,
		senderID,
		workflowID,
		workflowType,
		models.WorkflowStatusCompleted,
		1.0,
		result,
		"",
	)
}

// NewFailureEvent announces a failed execution. Progress is reported as it was when the failure occurred.
func NewFailureEvent(senderID, workflowID string, workflowType models.WorkflowType, progress float64, errMessage string) WorkflowEvent {
	return NewWorkflowEvent(
		WorkflowFailedEvent,
		senderID,
		workflowID,
		workflowType,
		models.WorkflowStatusFailed,
		progress,
		map[string]any{"error": errMessage},
		"",
	)
}
