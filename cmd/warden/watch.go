package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/warden/pkg/cmd"
	"github.com/dukex/warden/pkg/events"
	"github.com/dukex/warden/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func NewWatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print workflow events published on the event bus",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "workflow-id",
				Usage: "Only print events of this workflow",
			},
		}, eventBusFlags()...),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			logger := log.WithModule("warden").With("action", "watch")

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

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

			workflowID := command.String("workflow-id")
			encoder := json.NewEncoder(os.Stdout)

			for _, eventType := range events.EventTypes() {
				err = eventBus.Handle(eventType, func(_ context.Context, event any) error {
					workflowEvent, ok := event.(*events.WorkflowEvent)
					if !ok || (workflowID != "" && workflowEvent.WorkflowID != workflowID) {
						return nil
					}

					return encoder.Encode(workflowEvent)
				})
				if err != nil {
					return fmt.Errorf("failed to register handler for %s: %w", eventType, err)
				}
			}

			err = eventBus.Subscribe(ctx)
			if err != nil {
				return fmt.Errorf("failed to subscribe to workflow events: %w", err)
			}

			logger.InfoContext(ctx, "Watching workflow events", "event_bus", command.String("event-bus"))

			<-ctx.Done()

			logger.InfoContext(ctx, "Stopped watching workflow events")

			return nil
		},
	}
}
