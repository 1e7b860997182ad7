package workflow

import (
	"context"
	"log/slog"

	"github.com/dukex/warden/pkg/eventbus"
	"github.com/dukex/warden/pkg/events"
	"github.com/dukex/warden/pkg/models"
)

// Emitter broadcasts workflow events on the event bus. Publishing is fire-and-forget:
// failures are logged and never reach the execution loop.
type Emitter struct {
	publisher eventbus.EventPublisher
	senderID  string
	logger    *slog.Logger
}

// NewEmitter creates an Emitter. A nil publisher disables publishing.
func NewEmitter(publisher eventbus.EventPublisher, senderID string, logger *slog.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		senderID:  senderID,
		logger:    logger.With("module", "workflow_emitter"),
	}
}

// Emit builds a workflow event and publishes it. An empty target broadcasts the event.
func (e *Emitter) Emit(
	ctx context.Context,
	eventType events.EventType,
	workflowID string,
	workflowType models.WorkflowType,
	status models.WorkflowStatus,
	progress float64,
	result map[string]any,
	targetID string,
) {
	e.publish(ctx, events.NewWorkflowEvent(eventType, e.senderID, workflowID, workflowType, status, progress, result, targetID))
}

func (e *Emitter) EmitInitialized(ctx context.Context, workflowID string, workflowType models.WorkflowType) {
	e.publish(ctx, events.NewInitializationEvent(e.senderID, workflowID, workflowType))
}

func (e *Emitter) EmitCompleted(ctx context.Context, workflowID string, workflowType models.WorkflowType, result map[string]any) {
	e.publish(ctx, events.NewCompletionEvent(e.senderID, workflowID, workflowType, result))
}

func (e *Emitter) EmitFailed(ctx context.Context, workflowID string, workflowType models.WorkflowType, progress float64, errMessage string) {
	e.publish(ctx, events.NewFailureEvent(e.senderID, workflowID, workflowType, progress, errMessage))
}

func (e *Emitter) publish(ctx context.Context, event events.WorkflowEvent) {
	if e.publisher == nil {
		return
	}

	err := e.publisher.Publish(ctx, event.WorkflowID, event)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to publish workflow event",
			"error", err,
			"workflow_id", event.WorkflowID,
			"event_type", event.Type,
		)

		return
	}

	e.logger.DebugContext(ctx, "Published workflow event",
		"workflow_id", event.WorkflowID,
		"event_type", event.Type,
		"status", event.Status,
		"progress", event.Progress,
	)
}
