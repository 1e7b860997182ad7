// Package file provides a file-based archive of compiled workflow results.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dukex/warden/pkg/models"
	"github.com/dukex/warden/pkg/persistence"
)

const resultsDir = "results"

// Archive implements persistence.ResultArchive, one JSON file per workflow.
type Archive struct {
	root string // File system root for storing results
}

// NewArchive creates an archive rooted at root. A "file://" prefix is accepted.
func NewArchive(root string) *Archive {
	return &Archive{root: strings.Replace(root, "file://", "", 1)}
}

// HealthCheck checks that the archive root exists.
func (a *Archive) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(a.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Save writes the compiled result, replacing a previous result of the same workflow.
func (a *Archive) Save(_ context.Context, result *models.WorkflowResult) error {
	if result == nil {
		return persistence.NewWorkflowError("Save", "", persistence.ErrInvalidWorkflowID)
	}

	err := validateWorkflowID(result.WorkflowID)
	if err != nil {
		return persistence.NewWorkflowError("Save", result.WorkflowID, err)
	}

	dir := filepath.Join(a.root, resultsDir)

	err = os.MkdirAll(dir, 0750)
	if err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result %s: %w", result.WorkflowID, err)
	}

	// Write to a temporary file first so readers never see a partial result.
	tmp, err := os.CreateTemp(dir, result.WorkflowID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write result %s: %w", result.WorkflowID, err)
	}

	_, err = tmp.Write(data)
	closeErr := tmp.Close()

	if err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write result %s: %w", result.WorkflowID, err)
	}

	err = os.Rename(tmp.Name(), a.path(result.WorkflowID))
	if err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write result %s: %w", result.WorkflowID, err)
	}

	return nil
}

// Load reads the archived result of a workflow.
func (a *Archive) Load(_ context.Context, workflowID string) (*models.WorkflowResult, error) {
	err := validateWorkflowID(workflowID)
	if err != nil {
		return nil, persistence.NewWorkflowError("Load", workflowID, err)
	}

	data, err := os.ReadFile(a.path(workflowID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewWorkflowError("Load", workflowID, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to read result %s: %w", workflowID, err)
	}

	var result models.WorkflowResult

	err = json.Unmarshal(data, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal result %s: %w", workflowID, err)
	}

	return &result, nil
}

// List returns the ids of all archived workflows in lexical order.
func (a *Archive) List(_ context.Context) ([]string, error) {
	root := os.DirFS(filepath.Join(a.root, resultsDir))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list result files: %w", err)
	}

	ids := make([]string, 0, len(jsonFiles))
	for _, file := range jsonFiles {
		ids = append(ids, strings.TrimSuffix(file, ".json"))
	}

	sort.Strings(ids)

	return ids, nil
}

func (a *Archive) path(workflowID string) string {
	return filepath.Join(a.root, resultsDir, workflowID+".json")
}

// validateWorkflowID validates that the workflow ID is safe for file operations.
func validateWorkflowID(workflowID string) error {
	if workflowID == "" {
		return persistence.ErrInvalidWorkflowID
	}

	if strings.Contains(workflowID, "..") || strings.ContainsAny(workflowID, `/\`) {
		return persistence.ErrInvalidWorkflowID
	}

	return nil
}

var _ persistence.ResultArchive = (*Archive)(nil)
