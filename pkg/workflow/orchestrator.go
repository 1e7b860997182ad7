package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/warden/pkg/eventbus"
	"github.com/dukex/warden/pkg/events"
	"github.com/dukex/warden/pkg/models"
	"github.com/dukex/warden/pkg/otelhelper"
	"github.com/dukex/warden/pkg/persistence"
	"github.com/dukex/warden/pkg/protocol"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultSenderID = "orchestrator"

// CreateWorkflowRequest describes a workflow to create. Only Type, TargetID and TargetType are required.
type CreateWorkflowRequest struct {
	Type        models.WorkflowType
	TargetID    string
	TargetType  string
	Name        string
	Description string
	Parameters  map[string]any

	// Components, when set, are merged over the generated components.
	Components *models.Components

	Metadata map[string]any
}

// Orchestrator creates workflow definitions and drives their executions stage by stage.
type Orchestrator struct {
	store     persistence.WorkflowStore
	stages    *StageExecutor
	validator *Validator
	generator ComponentGenerator
	emitter   *Emitter
	tracer    trace.Tracer
	logger    *slog.Logger
	senderID  string
	now       func() time.Time
	newID     func() string
}

type Option func(*Orchestrator)

// WithGenerator replaces the default component generator.
func WithGenerator(generator ComponentGenerator) Option {
	return func(o *Orchestrator) {
		o.generator = generator
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = tracer
	}
}

// WithSenderID sets the sender id carried by emitted events.
func WithSenderID(senderID string) Option {
	return func(o *Orchestrator) {
		o.senderID = senderID
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) {
		o.newID = newID
	}
}

// NewOrchestrator creates an Orchestrator. The publisher may be nil, in which case no events are sent.
func NewOrchestrator(
	store persistence.WorkflowStore,
	resolver Resolver,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		store:     store,
		stages:    NewStageExecutor(resolver),
		validator: NewValidator(),
		generator: NewDefaultGenerator(),
		tracer:    otelhelper.NoopTracer(),
		logger:    logger.With("module", "workflow_orchestrator"),
		senderID:  defaultSenderID,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(o)
	}

	o.emitter = NewEmitter(publisher, o.senderID, logger)

	return o
}

// CreateWorkflow generates, validates and stores a new workflow definition and returns its id.
// Nothing is stored when the definition is rejected.
func (o *Orchestrator) CreateWorkflow(ctx context.Context, request CreateWorkflowRequest) (string, error) {
	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "workflow.create",
		attribute.String(otelhelper.WorkflowTypeKey, string(request.Type)),
		attribute.String(otelhelper.TargetIDKey, request.TargetID),
		attribute.String(otelhelper.TargetTypeKey, request.TargetType),
	)
	defer span.End()

	definition, err := o.buildDefinition(request)
	if err != nil {
		o.logger.WarnContext(ctx, "Rejected workflow definition", "error", err, "workflow_type", request.Type)
		otelhelper.SetError(span, err)

		return "", err
	}

	span.SetAttributes(attribute.String(otelhelper.WorkflowIDKey, definition.ID))

	err = o.validator.Validate(definition)
	if err != nil {
		o.logger.WarnContext(ctx, "Rejected workflow definition", "error", err, "workflow_type", request.Type)
		otelhelper.SetError(span, err)

		return "", err
	}

	err = o.store.PutDefinition(ctx, definition)
	if err != nil {
		otelhelper.SetError(span, err)

		return "", fmt.Errorf("failed to store workflow %s: %w", definition.ID, err)
	}

	o.logger.InfoContext(ctx, "Created workflow",
		"workflow_id", definition.ID,
		"workflow_type", definition.Type,
		"target_id", definition.TargetID,
		"stages", len(definition.Stages),
	)

	return definition.ID, nil
}

func (o *Orchestrator) buildDefinition(request CreateWorkflowRequest) (*models.WorkflowDefinition, error) {
	parameters := request.Parameters
	if parameters == nil {
		parameters = DefaultParameters()
	}

	if request.Type.IsValid() {
		err := ValidateParameters(request.Type, parameters)
		if err != nil {
			return nil, err
		}
	}

	components, err := o.generator.Generate(request.Type, request.TargetType, parameters)
	if err != nil {
		if errors.Is(err, ErrUnknownWorkflowType) {
			return nil, &DefinitionError{Field: "type", StageIndex: -1, Reason: err.Error(), Err: err}
		}

		return nil, fmt.Errorf("failed to generate workflow components: %w", err)
	}

	if request.Components != nil {
		components = MergeComponents(components, *request.Components)
	}

	name := request.Name
	if name == "" {
		name = request.Type.DisplayName()
	}

	description := request.Description
	if description == "" {
		description = fmt.Sprintf("%s of %s %s", request.Type.DisplayName(), request.TargetType, request.TargetID)
	}

	definition := &models.WorkflowDefinition{
		ID:                    o.newID(),
		Type:                  request.Type,
		Name:                  name,
		Description:           description,
		TargetID:              request.TargetID,
		TargetType:            request.TargetType,
		Parameters:            parameters,
		Agents:                components.Agents,
		Stages:                components.Stages,
		CommunicationPatterns: components.CommunicationPatterns,
		CreatedAt:             o.now().UTC(),
		Metadata:              request.Metadata,
	}

	return definition.Clone(), nil
}

// ExecuteWorkflow runs every stage of the workflow in order and returns the compiled result.
// The only error returned is a lookup failure of the definition; a failed run is reported
// through the result's status and error fields.
func (o *Orchestrator) ExecuteWorkflow(ctx context.Context, workflowID string) (*models.WorkflowResult, error) {
	definition, err := o.store.GetDefinition(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, definition.ID),
		attribute.String(otelhelper.WorkflowTypeKey, string(definition.Type)),
		attribute.String(otelhelper.TargetIDKey, definition.TargetID),
	)
	defer span.End()

	logger := o.logger.With("workflow_id", definition.ID, "workflow_type", definition.Type)
	execution := models.NewWorkflowExecution(definition, o.now().UTC())

	result := o.run(ctx, span, logger, definition, execution)

	span.SetAttributes(attribute.String(otelhelper.WorkflowStatusKey, string(result.Status)))

	return result, nil
}

func (o *Orchestrator) run(
	ctx context.Context,
	span trace.Span,
	logger *slog.Logger,
	definition *models.WorkflowDefinition,
	execution *models.WorkflowExecution,
) (result *models.WorkflowResult) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.ErrorContext(ctx, "Workflow execution panicked", "panic", recovered)

			result = o.fail(ctx, span, logger, definition, execution, fmt.Sprintf("Workflow execution failed: %v", recovered))
		}
	}()

	logger.InfoContext(ctx, "Starting workflow execution", "stages", len(definition.Stages))

	err := o.store.PutExecution(ctx, execution)
	if err != nil {
		return o.fail(ctx, span, logger, definition, execution, fmt.Sprintf("Workflow execution failed: %v", err))
	}

	err = o.store.Activate(ctx, definition.ID)
	if err != nil {
		return o.fail(ctx, span, logger, definition, execution, fmt.Sprintf("Workflow execution failed: %v", err))
	}

	o.emitter.EmitInitialized(ctx, definition.ID, definition.Type)

	err = execution.Transition(models.WorkflowStatusRunning)
	if err != nil {
		return o.fail(ctx, span, logger, definition, execution, fmt.Sprintf("Workflow execution failed: %v", err))
	}

	o.emitter.Emit(ctx, events.WorkflowRunningEvent, definition.ID, definition.Type,
		execution.Status, execution.Progress, map[string]any{"message": "Workflow running"}, "")

	total := len(definition.Stages)

	for i, stage := range definition.Stages {
		execution.SetStage(i, total)

		stageLogger := logger.With("stage", stage.Name, "stage_index", i)
		stageLogger.InfoContext(ctx, "Starting stage")

		o.emitter.Emit(ctx, events.StageStartedEvent, definition.ID, definition.Type,
			execution.Status, execution.Progress,
			map[string]any{"stage": stage.Name, "stage_index": i, "message": "Stage started"}, "")

		output, err := o.executeStage(ctx, stageLogger, stageInput(definition, execution, i))
		if err != nil {
			stageLogger.ErrorContext(ctx, "Stage failed", "error", err)

			return o.fail(ctx, span, logger, definition, execution, fmt.Sprintf("Error in stage %s: %v", stage.Name, err))
		}

		execution.RecordStageResult(i, output.Result)
		execution.MergeArtifacts(output.Artifacts)

		stageLogger.InfoContext(ctx, "Stage completed")

		o.emitter.Emit(ctx, events.StageCompletedEvent, definition.ID, definition.Type,
			execution.Status, execution.Progress,
			map[string]any{"stage": stage.Name, "stage_index": i, "result": execution.StageResults[i]}, "")
	}

	err = execution.MarkCompleted(o.now().UTC())
	if err != nil {
		return o.fail(ctx, span, logger, definition, execution, fmt.Sprintf("Workflow execution failed: %v", err))
	}

	o.deactivate(ctx, logger, definition.ID)

	result = compile(definition, execution, o.now())

	resultMap, err := ResultToMap(result)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to convert workflow result", "error", err)
	}

	o.emitter.EmitCompleted(ctx, definition.ID, definition.Type, resultMap)

	span.SetStatus(codes.Ok, "workflow completed")
	logger.InfoContext(ctx, "Workflow completed", "elapsed_seconds", result.ElapsedSeconds)

	return result
}

func (o *Orchestrator) executeStage(ctx context.Context, logger *slog.Logger, input protocol.StageInput) (*protocol.StageOutput, error) {
	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "workflow.stage",
		attribute.String(otelhelper.WorkflowIDKey, input.WorkflowID),
		attribute.String(otelhelper.StageNameKey, input.Stage.Name),
		attribute.Int(otelhelper.StageIndexKey, input.StageIndex),
		attribute.StringSlice(otelhelper.AgentIDKey, input.Stage.AgentIDs()),
		attribute.String(otelhelper.CommunicationPatternKey, input.Stage.CommunicationPattern),
	)
	defer span.End()

	output, err := o.stages.Execute(ctx, input, logger)
	if err != nil {
		otelhelper.SetError(span, err, attribute.String(otelhelper.StageNameKey, input.Stage.Name))

		return nil, err
	}

	return output, nil
}

// fail finishes the execution as failed and returns its compiled result. Results and artifacts
// recorded by earlier stages are kept.
func (o *Orchestrator) fail(
	ctx context.Context,
	span trace.Span,
	logger *slog.Logger,
	definition *models.WorkflowDefinition,
	execution *models.WorkflowExecution,
	message string,
) *models.WorkflowResult {
	err := execution.MarkFailed(message, o.now().UTC())
	if err != nil {
		logger.ErrorContext(ctx, "Failed to mark workflow as failed", "error", err, "status", execution.Status)
	}

	o.deactivate(ctx, logger, definition.ID)
	o.emitter.EmitFailed(ctx, definition.ID, definition.Type, execution.Progress, message)

	otelhelper.SetFailure(span, message, attribute.Float64(otelhelper.WorkflowProgressKey, execution.Progress))
	logger.ErrorContext(ctx, "Workflow failed", "error", message, "progress", execution.Progress)

	return compile(definition, execution, o.now())
}

func (o *Orchestrator) deactivate(ctx context.Context, logger *slog.Logger, workflowID string) {
	err := o.store.Deactivate(ctx, workflowID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to deactivate workflow", "error", err)
	}
}

// CompileResults returns the compiled result of the workflow's latest execution.
func (o *Orchestrator) CompileResults(ctx context.Context, workflowID string) (*models.WorkflowResult, error) {
	definition, err := o.store.GetDefinition(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	execution, err := o.store.GetExecution(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	return compile(definition, execution, o.now()), nil
}

// Definition returns the stored definition of a workflow.
func (o *Orchestrator) Definition(ctx context.Context, workflowID string) (*models.WorkflowDefinition, error) {
	return o.store.GetDefinition(ctx, workflowID)
}

// ActiveWorkflows returns the ids of the workflows currently executing.
func (o *Orchestrator) ActiveWorkflows(ctx context.Context) ([]string, error) {
	return o.store.ActiveIDs(ctx)
}

func stageInput(definition *models.WorkflowDefinition, execution *models.WorkflowExecution, index int) protocol.StageInput {
	prior := make(map[string]map[string]any, index)

	for i := range index {
		if result, ok := execution.StageResults[i]; ok {
			prior[definition.Stages[i].Name] = result
		}
	}

	artifacts := make(map[string]any, len(execution.Artifacts))
	for key, value := range execution.Artifacts {
		if items, ok := models.AsList(value); ok {
			value = append([]any(nil), items...)
		}

		artifacts[key] = value
	}

	return protocol.StageInput{
		WorkflowID:   definition.ID,
		WorkflowType: definition.Type,
		TargetID:     definition.TargetID,
		TargetType:   definition.TargetType,
		Parameters:   definition.Parameters,
		Stage:        definition.Stages[index],
		StageIndex:   index,
		TotalStages:  len(definition.Stages),
		PriorResults: prior,
		Artifacts:    artifacts,
	}
}
