package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/dukex/warden/pkg/agents/httpagent"
	"github.com/dukex/warden/pkg/models"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var ErrDuplicateAgent = errors.New("agent declared more than once")

// AgentsFile lists the remote collaborators a workflow can be bound to.
type AgentsFile struct {
	Agents []httpagent.Config `yaml:"agents" validate:"dive"`
}

// LoadAgentsFile reads and validates an agents YAML file.
func LoadAgentsFile(path string) ([]httpagent.Config, error) {
	var file AgentsFile

	err := readYAML(path, &file)
	if err != nil {
		return nil, err
	}

	err = validator.New(validator.WithRequiredStructEnabled()).Struct(file)
	if err != nil {
		return nil, fmt.Errorf("invalid agents file %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(file.Agents))
	for _, agent := range file.Agents {
		if _, ok := seen[agent.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAgent, agent.ID)
		}

		seen[agent.ID] = struct{}{}
	}

	return file.Agents, nil
}

// LoadComponentsFile reads custom workflow components from a YAML file.
func LoadComponentsFile(path string) (*models.Components, error) {
	var components models.Components

	err := readYAML(path, &components)
	if err != nil {
		return nil, err
	}

	return &components, nil
}

// LoadDefinitionFile reads a workflow definition from a YAML file.
func LoadDefinitionFile(path string) (*models.WorkflowDefinition, error) {
	var definition models.WorkflowDefinition

	err := readYAML(path, &definition)
	if err != nil {
		return nil, err
	}

	return &definition, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	err = yaml.Unmarshal(data, out)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return nil
}
