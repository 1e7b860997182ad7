// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/dukex/warden/pkg/agents/httpagent"
	"github.com/dukex/warden/pkg/registry"
	"github.com/dukex/warden/pkg/strategies"
)

func registerNativeStrategies(reg *registry.Registry) {
	for _, strategy := range strategies.Defaults() {
		reg.RegisterStrategy(strategy)
	}
}

func registerRemoteAgents(reg *registry.Registry, agents []httpagent.Config) error {
	for _, config := range agents {
		agent, err := httpagent.New(config, nil)
		if err != nil {
			return fmt.Errorf("failed to create agent %s: %w", config.ID, err)
		}

		reg.RegisterAgent(agent)
	}

	return nil
}

// NewRegistry creates a registry holding the built-in strategies and the given remote agents.
func NewRegistry(log *slog.Logger, agents []httpagent.Config) (*registry.Registry, error) {
	reg := registry.NewRegistry(log)

	registerNativeStrategies(reg)

	err := registerRemoteAgents(reg, agents)
	if err != nil {
		return nil, err
	}

	return reg, nil
}
