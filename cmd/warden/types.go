package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukex/warden/pkg/models"
	"github.com/dukex/warden/pkg/workflow"
	cli "github.com/urfave/cli/v3"
)

func NewTypesCommand() *cli.Command {
	return &cli.Command{
		Name:  "types",
		Usage: "List workflow types and their default stages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "target-type",
				Usage: "Target type used to render stage descriptions",
				Value: "repository",
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			generator := workflow.NewDefaultGenerator()

			for _, workflowType := range models.WorkflowTypes() {
				components, err := generator.Generate(workflowType, command.String("target-type"), workflow.DefaultParameters())
				if err != nil {
					return err
				}

				fmt.Printf("%s (%s)\n", workflowType, workflowType.DisplayName())

				for i, stage := range components.Stages {
					agents := strings.Join(stage.AgentIDs(), ", ")
					if stage.IsMultiAgent() {
						agents += " via " + stage.CommunicationPattern
					}

					fmt.Printf("  %d. %s [%s]\n     %s\n", i+1, stage.Name, agents, stage.Description)
				}

				fmt.Println()
			}

			return nil
		},
	}
}
