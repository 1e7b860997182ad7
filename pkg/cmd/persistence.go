package cmd

import (
	"github.com/dukex/warden/pkg/persistence"
	"github.com/dukex/warden/pkg/persistence/file"
	"github.com/dukex/warden/pkg/persistence/memory"
)

// NewStore creates the store holding definitions and executions for the lifetime of the process.
func NewStore() persistence.WorkflowStore {
	return memory.NewStore()
}

// NewArchive creates the archive of compiled results rooted at archiveURL (a path or file:// URL).
func NewArchive(archiveURL string) *file.Archive {
	return file.NewArchive(archiveURL)
}
