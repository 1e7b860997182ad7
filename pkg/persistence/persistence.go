// Package persistence provides the storage abstraction for workflow definitions and executions.
package persistence

import (
	"context"

	"github.com/dukex/warden/pkg/models"
)

// WorkflowStore holds workflow definitions, their execution records and the set of
// workflow ids that are currently running.
//
// Implementations only protect their own bookkeeping. An execution record returned by
// GetExecution is shared with the store, so ExecuteWorkflow must not run concurrently
// for the same workflow id.
type WorkflowStore interface {
	PutDefinition(ctx context.Context, definition *models.WorkflowDefinition) error
	GetDefinition(ctx context.Context, workflowID string) (*models.WorkflowDefinition, error)
	ListDefinitions(ctx context.Context) ([]*models.WorkflowDefinition, error)

	PutExecution(ctx context.Context, execution *models.WorkflowExecution) error
	GetExecution(ctx context.Context, workflowID string) (*models.WorkflowExecution, error)

	Activate(ctx context.Context, workflowID string) error
	Deactivate(ctx context.Context, workflowID string) error
	IsActive(ctx context.Context, workflowID string) (bool, error)
	ActiveIDs(ctx context.Context) ([]string, error)

	// Remove deletes the definition, the execution and the active marker of a workflow.
	Remove(ctx context.Context, workflowID string) error

	Close(ctx context.Context) error
}

// ResultArchive keeps compiled results of finished workflow runs.
type ResultArchive interface {
	Save(ctx context.Context, result *models.WorkflowResult) error
	Load(ctx context.Context, workflowID string) (*models.WorkflowResult, error)
	List(ctx context.Context) ([]string, error)
}
