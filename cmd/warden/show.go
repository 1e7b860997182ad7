package main

import (
	"context"
	"fmt"

	"github.com/dukex/warden/pkg/cmd"
	"github.com/dukex/warden/pkg/persistence"
	cli "github.com/urfave/cli/v3"
)

func NewShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Aliases:   []string{"s"},
		Usage:     "Print an archived workflow result, or list archived workflows",
		ArgsUsage: "[workflow-id]",
		Flags: []cli.Flag{
			archivePathFlag(true),
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			archive := cmd.NewArchive(command.String("archive-path"))

			err := archive.HealthCheck(ctx)
			if err != nil {
				return fmt.Errorf("archive %s is not available: %w", command.String("archive-path"), err)
			}

			workflowID := command.Args().First()
			if workflowID == "" {
				ids, err := archive.List(ctx)
				if err != nil {
					return fmt.Errorf("failed to list archived results: %w", err)
				}

				for _, id := range ids {
					fmt.Println(id)
				}

				return nil
			}

			result, err := archive.Load(ctx, workflowID)
			if persistence.IsNotFound(err) {
				return cli.Exit(fmt.Sprintf("no archived result for workflow %s", workflowID), 1)
			}

			if err != nil {
				return fmt.Errorf("failed to load result: %w", err)
			}

			return printJSON(result)
		},
	}
}
