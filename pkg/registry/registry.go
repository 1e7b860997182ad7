// Package registry keeps the named agents and interaction strategies a workflow can be bound to.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dukex/warden/pkg/protocol"
)

var (
	// ErrAgentNotRegistered is returned when a stage refers to an unknown agent.
	ErrAgentNotRegistered = errors.New("agent not registered")

	// ErrStrategyNotRegistered is returned when a stage refers to an unknown communication pattern.
	ErrStrategyNotRegistered = errors.New("communication pattern not registered")
)

type Registry struct {
	logger     *slog.Logger
	mu         sync.RWMutex
	agents     map[string]protocol.Agent
	strategies map[string]protocol.Strategy
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:     log,
		agents:     make(map[string]protocol.Agent),
		strategies: make(map[string]protocol.Strategy),
	}
}

// RegisterAgent registers an agent under its ID, replacing any agent with the same ID.
func (r *Registry) RegisterAgent(agent protocol.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.agents[agent.ID()] = agent
	r.logger.Debug("Registered agent", "agent", agent.ID())
}

// RegisterStrategy registers a strategy under its name, replacing any strategy with the same name.
func (r *Registry) RegisterStrategy(strategy protocol.Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.strategies[strategy.Name()] = strategy
	r.logger.Debug("Registered communication pattern", "pattern", strategy.Name())
}

// RegisterStrategyAs registers a strategy under an alias, so one implementation can serve
// several communication pattern names.
func (r *Registry) RegisterStrategyAs(name string, strategy protocol.Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.strategies[name] = strategy
	r.logger.Debug("Registered communication pattern", "pattern", name, "implementation", strategy.Name())
}

func (r *Registry) Agent(id string) (protocol.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, ok := r.agents[id]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrAgentNotRegistered, id)
	}

	return agent, nil
}

func (r *Registry) Strategy(name string) (protocol.Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strategy, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrStrategyNotRegistered, name)
	}

	return strategy, nil
}

// AgentIDs returns the registered agent ids in lexical order.
func (r *Registry) AgentIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

// StrategyNames returns the registered communication pattern names in lexical order.
func (r *Registry) StrategyNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
