// Package workspace implements spec.md's Workspace Manager (C3): scratch
// directories created fresh per invocation, with a guaranteed release on
// every exit path, following the teacher's scoped-resource pattern of
// pairing every acquire with a deferred release around the pipeline body.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"codexec/internal/domain/execution"
)

// Workspace is a scratch directory created fresh per invocation, with a
// name unique for the lifetime of the process.
type Workspace struct {
	path string
}

// Path returns the host-side absolute path to the workspace directory.
func (w *Workspace) Path() string {
	return w.path
}

// Manager creates and destroys workspaces under a configured temp root.
type Manager struct {
	root string
}

// NewManager builds a Manager rooted at root. If root is empty, os.TempDir
// is used, matching the teacher's os.MkdirTemp("", ...) default.
func NewManager(root string) (*Manager, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create temp root: %w", execution.ErrWorkspaceCreateFailed, err)
	}
	return &Manager{root: root}, nil
}

// Acquire creates a fresh directory with a process-unique name.
func (m *Manager) Acquire() (*Workspace, error) {
	dir := filepath.Join(m.root, "codexec-"+uuid.NewString())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", execution.ErrWorkspaceCreateFailed, err)
	}
	return &Workspace{path: dir}, nil
}

// WriteSource writes the program source under filename inside the
// workspace.
func (m *Manager) WriteSource(ws *Workspace, filename string, source []byte) error {
	target := filepath.Join(ws.path, filename)
	if err := os.WriteFile(target, source, 0o644); err != nil {
		return fmt.Errorf("%w: %w", execution.ErrWorkspaceWriteFailed, err)
	}
	return nil
}

// Release removes the workspace directory and all its contents. Its
// contract is infallible: errors are swallowed by the caller (which logs
// them), never propagated, because Release runs on error paths too.
func (m *Manager) Release(ws *Workspace) error {
	if ws == nil {
		return nil
	}
	return os.RemoveAll(ws.path)
}
