// Package memory provides a process-local workflow store.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/dukex/warden/pkg/models"
	"github.com/dukex/warden/pkg/persistence"
)

// Store implements persistence.WorkflowStore with in-memory maps.
//
// The mutex only guards the maps themselves. Execution records are handed out by reference
// and mutated by their single driving orchestrator call without locking.
type Store struct {
	mu          sync.RWMutex
	definitions map[string]*models.WorkflowDefinition
	executions  map[string]*models.WorkflowExecution
	active      map[string]struct{}
	closed      bool
}

// NewStore creates an empty in-memory workflow store.
func NewStore() *Store {
	return &Store{
		definitions: make(map[string]*models.WorkflowDefinition),
		executions:  make(map[string]*models.WorkflowExecution),
		active:      make(map[string]struct{}),
	}
}

// PutDefinition stores a copy of the definition. Definitions are immutable once stored.
func (s *Store) PutDefinition(_ context.Context, definition *models.WorkflowDefinition) error {
	if definition == nil || definition.ID == "" {
		return persistence.NewWorkflowError("PutDefinition", "", persistence.ErrInvalidWorkflowID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return persistence.ErrStoreClosed
	}

	if _, exists := s.definitions[definition.ID]; exists {
		return persistence.NewWorkflowError("PutDefinition", definition.ID, persistence.ErrWorkflowAlreadyExists)
	}

	s.definitions[definition.ID] = definition.Clone()

	return nil
}

// GetDefinition returns a copy of the stored definition.
func (s *Store) GetDefinition(_ context.Context, workflowID string) (*models.WorkflowDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, persistence.ErrStoreClosed
	}

	definition, ok := s.definitions[workflowID]
	if !ok {
		return nil, persistence.NewWorkflowError("GetDefinition", workflowID, persistence.ErrWorkflowNotFound)
	}

	return definition.Clone(), nil
}

// ListDefinitions returns copies of all definitions ordered by creation time, then id.
func (s *Store) ListDefinitions(_ context.Context) ([]*models.WorkflowDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, persistence.ErrStoreClosed
	}

	definitions := make([]*models.WorkflowDefinition, 0, len(s.definitions))
	for _, definition := range s.definitions {
		definitions = append(definitions, definition.Clone())
	}

	sort.Slice(definitions, func(i, j int) bool {
		if definitions[i].CreatedAt.Equal(definitions[j].CreatedAt) {
			return definitions[i].ID < definitions[j].ID
		}

		return definitions[i].CreatedAt.Before(definitions[j].CreatedAt)
	})

	return definitions, nil
}

// PutExecution stores the execution record of a known workflow, replacing any previous run.
func (s *Store) PutExecution(_ context.Context, execution *models.WorkflowExecution) error {
	if execution == nil || execution.WorkflowID == "" {
		return persistence.NewWorkflowError("PutExecution", "", persistence.ErrInvalidWorkflowID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return persistence.ErrStoreClosed
	}

	if _, ok := s.definitions[execution.WorkflowID]; !ok {
		return persistence.NewWorkflowError("PutExecution", execution.WorkflowID, persistence.ErrWorkflowNotFound)
	}

	s.executions[execution.WorkflowID] = execution

	return nil
}

// GetExecution returns the execution record of a workflow.
func (s *Store) GetExecution(_ context.Context, workflowID string) (*models.WorkflowExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, persistence.ErrStoreClosed
	}

	execution, ok := s.executions[workflowID]
	if !ok {
		return nil, persistence.NewWorkflowError("GetExecution", workflowID, persistence.ErrExecutionNotFound)
	}

	return execution, nil
}

// Activate adds the workflow id to the active set.
func (s *Store) Activate(_ context.Context, workflowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return persistence.ErrStoreClosed
	}

	s.active[workflowID] = struct{}{}

	return nil
}

// Deactivate removes the workflow id from the active set. Removing an inactive id is a no-op.
func (s *Store) Deactivate(_ context.Context, workflowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return persistence.ErrStoreClosed
	}

	delete(s.active, workflowID)

	return nil
}

// IsActive reports whether the workflow id is in the active set.
func (s *Store) IsActive(_ context.Context, workflowID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, persistence.ErrStoreClosed
	}

	_, ok := s.active[workflowID]

	return ok, nil
}

// ActiveIDs returns the active workflow ids in lexical order.
func (s *Store) ActiveIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, persistence.ErrStoreClosed
	}

	ids := make([]string, 0, len(s.active))
	for id := range s.active {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids, nil
}

// Remove forgets everything known about a workflow.
func (s *Store) Remove(_ context.Context, workflowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return persistence.ErrStoreClosed
	}

	if _, ok := s.definitions[workflowID]; !ok {
		return persistence.NewWorkflowError("Remove", workflowID, persistence.ErrWorkflowNotFound)
	}

	delete(s.definitions, workflowID)
	delete(s.executions, workflowID)
	delete(s.active, workflowID)

	return nil
}

// Close releases the store. Every later call fails with persistence.ErrStoreClosed.
func (s *Store) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.definitions = make(map[string]*models.WorkflowDefinition)
	s.executions = make(map[string]*models.WorkflowExecution)
	s.active = make(map[string]struct{})

	return nil
}

var _ persistence.WorkflowStore = (*Store)(nil)
