package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/warden/pkg/cmd"
	"github.com/dukex/warden/pkg/eventbus"
	"github.com/dukex/warden/pkg/events"
	"github.com/dukex/warden/pkg/log"
	"github.com/dukex/warden/pkg/models"
	"github.com/dukex/warden/pkg/otelhelper"
	"github.com/dukex/warden/pkg/workflow"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Create a workflow for a target and execute it to completion",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "type",
				Aliases:  []string{"t"},
				Usage:    "Workflow type (see the types command)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "target-id",
				Usage:    "Identifier of the target under assessment",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "target-type",
				Usage:    "Kind of target (repository, container_image, ...)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Workflow name (derived from type and target if empty)",
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Workflow description (derived from type and target if empty)",
			},
			&cli.StringSliceFlag{
				Name:  "param",
				Usage: "Workflow parameter as key=value, the value may be JSON",
			},
			&cli.StringFlag{
				Name:  "components-file",
				Usage: "YAML file with custom agents, stages and communication patterns",
			},
			&cli.StringFlag{
				Name:     "agents-file",
				Usage:    "YAML file listing the remote agents",
				Required: true,
				Sources:  cli.EnvVars("WARDEN_AGENTS_FILE"),
			},
			&cli.BoolFlag{
				Name:  "follow",
				Usage: "Log workflow events while the workflow runs",
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			archivePathFlag(false),
		}, eventBusFlags()...),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			senderID := "warden-" + uuid.New().String()[:8]
			logger := log.WithModule("warden").With("sender_id", senderID)

			request, err := newCreateRequest(command)
			if err != nil {
				return err
			}

			tracer, shutdown, err := newTracer(ctx, command.Bool("otel-enabled"))
			if err != nil {
				return fmt.Errorf("failed to initialize tracer: %w", err)
			}
			defer func() {
				if err := shutdown(context.WithoutCancel(ctx)); err != nil {
					logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
				}
			}()

			agents, err := cmd.LoadAgentsFile(command.String("agents-file"))
			if err != nil {
				return err
			}

			registry, err := cmd.NewRegistry(logger, agents)
			if err != nil {
				return err
			}

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger, command.StringSlice("kafka-brokers"))
			if err != nil {
				return err
			}
			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			if command.Bool("follow") {
				err = followEvents(ctx, eventBus, logger)
				if err != nil {
					return err
				}
			}

			store := cmd.NewStore()
			defer func() {
				err := store.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close store", "error", err)
				}
			}()

			orchestrator := workflow.NewOrchestrator(store, registry, eventBus, logger,
				workflow.WithTracer(tracer),
				workflow.WithSenderID(senderID),
			)

			workflowID, err := orchestrator.CreateWorkflow(ctx, request)
			if err != nil {
				return fmt.Errorf("failed to create workflow: %w", err)
			}

			logger.InfoContext(ctx, "Workflow created", "workflow_id", workflowID, "type", request.Type)

			result, err := orchestrator.ExecuteWorkflow(ctx, workflowID)
			if err != nil {
				return fmt.Errorf("failed to execute workflow: %w", err)
			}

			if archivePath := command.String("archive-path"); archivePath != "" {
				err = cmd.NewArchive(archivePath).Save(ctx, result)
				if err != nil {
					return fmt.Errorf("failed to archive result: %w", err)
				}
			}

			err = printJSON(result)
			if err != nil {
				return err
			}

			if result.Status != models.WorkflowStatusCompleted {
				return cli.Exit(fmt.Sprintf("workflow %s %s: %s", workflowID, result.Status, result.Error), 1)
			}

			return nil
		},
	}
}

func newCreateRequest(command *cli.Command) (workflow.CreateWorkflowRequest, error) {
	parameters, err := parseParameters(command.StringSlice("param"))
	if err != nil {
		return workflow.CreateWorkflowRequest{}, err
	}

	request := workflow.CreateWorkflowRequest{
		Type:        models.WorkflowType(command.String("type")),
		TargetID:    command.String("target-id"),
		TargetType:  command.String("target-type"),
		Name:        command.String("name"),
		Description: command.String("description"),
		Parameters:  parameters,
	}

	if path := command.String("components-file"); path != "" {
		request.Components, err = cmd.LoadComponentsFile(path)
		if err != nil {
			return workflow.CreateWorkflowRequest{}, err
		}
	}

	return request, nil
}

// nolint:ireturn // Returning interface is intentional for OpenTelemetry tracing
func newTracer(ctx context.Context, enabled bool) (trace.Tracer, func(context.Context) error, error) {
	if !enabled {
		return otelhelper.NoopTracer(), func(context.Context) error { return nil }, nil
	}

	return otelhelper.NewTracer(ctx, "warden")
}

func followEvents(ctx context.Context, eventBus eventbus.EventBus, logger *slog.Logger) error {
	for _, eventType := range events.EventTypes() {
		err := eventBus.Handle(eventType, func(ctx context.Context, event any) error {
			workflowEvent, ok := event.(*events.WorkflowEvent)
			if !ok {
				return nil
			}

			logger.InfoContext(ctx, "Workflow event",
				"type", workflowEvent.Type,
				"workflow_id", workflowEvent.WorkflowID,
				"status", workflowEvent.Status,
				"progress", workflowEvent.Progress,
			)

			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to register handler for %s: %w", eventType, err)
		}
	}

	return eventBus.Subscribe(ctx)
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(value)
}
