package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "warden",
		EnableShellCompletion: true,
		Usage:                 "Orchestrate multi-agent security workflows",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Commands: []*cli.Command{
			NewRunCommand(),
			NewValidateCommand(),
			NewShowCommand(),
			NewTypesCommand(),
			NewWatchCommand(),
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func eventBusFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "event-bus",
			Usage:   "Event bus type (gochannel, kafka)",
			Value:   "gochannel",
			Sources: cli.EnvVars("EVENT_BUS_TYPE"),
		},
		&cli.StringSliceFlag{
			Name:    "kafka-brokers",
			Usage:   "Kafka brokers, defaults to KAFKA_BROKERS",
			Sources: cli.EnvVars("KAFKA_BROKERS"),
		},
	}
}

func archivePathFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "archive-path",
		Usage:    "Directory (or file:// URL) where compiled results are archived",
		Required: required,
		Sources:  cli.EnvVars("WARDEN_ARCHIVE_PATH"),
	}
}
