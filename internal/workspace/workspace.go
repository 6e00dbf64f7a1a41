// Package workspace manages the scoped temporary directory a site is staged
// in before deployment. A workspace is created per run and removed with
// Cleanup, which callers defer immediately after Create succeeds.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kalambet/devfolio/internal/logfields"
)

const dirPrefix = "devfolio-"

// Workspace is a single ephemeral directory under a base directory.
type Workspace struct {
	baseDir string
	dir     string
}

// New returns a workspace rooted under baseDir (os.TempDir when empty).
// Nothing is created until Create is called.
func New(baseDir string) *Workspace {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Workspace{baseDir: baseDir}
}

// Create makes a fresh, uniquely named directory. It fails rather than
// reuse an existing one.
func (w *Workspace) Create() error {
	if w.dir != "" {
		return fmt.Errorf("workspace already created at %s", w.dir)
	}
	if err := os.MkdirAll(w.baseDir, 0o750); err != nil {
		return fmt.Errorf("creating workspace base directory: %w", err)
	}

	dir := filepath.Join(w.baseDir, dirPrefix+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return fmt.Errorf("creating workspace directory: %w", err)
	}

	w.dir = dir
	slog.Debug("Created workspace", logfields.Path(dir))
	return nil
}

// Path returns the workspace directory, or "" before Create.
func (w *Workspace) Path() string {
	return w.dir
}

// CreateSubdir creates a single-segment subdirectory inside the workspace.
func (w *Workspace) CreateSubdir(name string) (string, error) {
	if w.dir == "" {
		return "", fmt.Errorf("workspace not created")
	}
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid subdirectory name %q", name)
	}

	subdir := filepath.Join(w.dir, name)
	if err := os.Mkdir(subdir, 0o750); err != nil {
		return "", fmt.Errorf("creating subdirectory: %w", err)
	}
	return subdir, nil
}

// Cleanup removes the workspace and everything in it. Safe to call more
// than once and before Create.
func (w *Workspace) Cleanup() error {
	if w.dir == "" {
		return nil
	}

	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("cleaning up workspace: %w", err)
	}

	slog.Debug("Cleaned up workspace", logfields.Path(w.dir))
	w.dir = ""
	return nil
}
