package mocks

import (
	"context"

	"github.com/dukex/warden/pkg/models"
	"github.com/dukex/warden/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockWorkflowStore is a mock implementation of persistence.WorkflowStore interface.
type MockWorkflowStore struct {
	mock.Mock
}

func (m *MockWorkflowStore) PutDefinition(ctx context.Context, definition *models.WorkflowDefinition) error {
	args := m.Called(ctx, definition)

	return args.Error(0)
}

func (m *MockWorkflowStore) GetDefinition(ctx context.Context, workflowID string) (*models.WorkflowDefinition, error) {
	args := m.Called(ctx, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowDefinition), args.Error(1)
}

func (m *MockWorkflowStore) ListDefinitions(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.WorkflowDefinition), args.Error(1)
}

func (m *MockWorkflowStore) PutExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	args := m.Called(ctx, execution)

	return args.Error(0)
}

func (m *MockWorkflowStore) GetExecution(ctx context.Context, workflowID string) (*models.WorkflowExecution, error) {
	args := m.Called(ctx, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowExecution), args.Error(1)
}

func (m *MockWorkflowStore) Activate(ctx context.Context, workflowID string) error {
	args := m.Called(ctx, workflowID)

	return args.Error(0)
}

func (m *MockWorkflowStore) Deactivate(ctx context.Context, workflowID string) error {
	args := m.Called(ctx, workflowID)

	return args.Error(0)
}

func (m *MockWorkflowStore) IsActive(ctx context.Context, workflowID string) (bool, error) {
	args := m.Called(ctx, workflowID)

	return args.Bool(0), args.Error(1)
}

func (m *MockWorkflowStore) ActiveIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

func (m *MockWorkflowStore) Remove(ctx context.Context, workflowID string) error {
	args := m.Called(ctx, workflowID)

	return args.Error(0)
}

func (m *MockWorkflowStore) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockResultArchive is a mock implementation of persistence.ResultArchive interface.
type MockResultArchive struct {
	mock.Mock
}

func (m *MockResultArchive) Save(ctx context.Context, result *models.WorkflowResult) error {
	args := m.Called(ctx, result)

	return args.Error(0)
}

func (m *MockResultArchive) Load(ctx context.Context, workflowID string) (*models.WorkflowResult, error) {
	args := m.Called(ctx, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowResult), args.Error(1)
}

func (m *MockResultArchive) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

var (
	_ persistence.WorkflowStore = (*MockWorkflowStore)(nil)
	_ persistence.ResultArchive = (*MockResultArchive)(nil)
)
