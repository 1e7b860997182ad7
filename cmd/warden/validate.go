package main

import (
	"context"
	"fmt"

	"github.com/dukex/warden/pkg/cmd"
	"github.com/dukex/warden/pkg/log"
	"github.com/dukex/warden/pkg/workflow"
	cli "github.com/urfave/cli/v3"
)

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Validate workflow definition files",
		ArgsUsage: "<definition.yaml>...",
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			logger := log.WithModule("warden").With("action", "validate")

			paths := command.Args().Slice()
			if len(paths) == 0 {
				return cli.Exit("at least one definition file is required", 1)
			}

			validator := workflow.NewValidator()
			invalid := 0

			fmt.Println("Workflow Validation Results:")
			fmt.Println("============================")

			for _, path := range paths {
				definition, err := cmd.LoadDefinitionFile(path)
				if err != nil {
					fmt.Printf("\n%s\n    ❌ INVALID: %v\n", path, err)
					invalid++

					continue
				}

				fmt.Printf("\n%s: %s (%s)\n", path, definition.Name, definition.ID)

				err = validator.Validate(definition)
				if err == nil && definition.Type.IsValid() {
					err = workflow.ValidateParameters(definition.Type, definition.Parameters)
				}

				if err != nil {
					fmt.Printf("    ❌ INVALID: %v\n", err)
					invalid++

					continue
				}

				fmt.Printf("    ✅ VALID (%d stages)\n", len(definition.Stages))
			}

			logger.InfoContext(ctx, "Validation finished", "files", len(paths), "invalid", invalid)

			fmt.Println("\nSummary:")
			fmt.Printf("  Valid:   %d\n", len(paths)-invalid)
			fmt.Printf("  Invalid: %d\n", invalid)

			if invalid > 0 {
				return cli.Exit(fmt.Sprintf("%d invalid definition(s)", invalid), 1)
			}

			return nil
		},
	}
}
