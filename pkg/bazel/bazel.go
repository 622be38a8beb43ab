// Package bazel locates the workspace a command operates on.
package bazel

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/stackb/thrift-deps/pkg/procutil"
)

// BUILD_WORKSPACE_DIRECTORY is set by `bazel run` to the workspace root.
const BUILD_WORKSPACE_DIRECTORY = procutil.EnvVar("BUILD_WORKSPACE_DIRECTORY")

// WorkspaceMarkers are the files that identify a workspace root.
var WorkspaceMarkers = []string{
	"MODULE.bazel",
	"WORKSPACE",
	"WORKSPACE.bazel",
	"pants.toml",
	"thriftdeps.yaml",
}

// ErrNoWorkspace is returned by FindWorkspace when no enclosing workspace
// root exists.
var ErrNoWorkspace = errors.New("no workspace root found")

// FindWorkspace returns BUILD_WORKSPACE_DIRECTORY if set, otherwise the
// nearest directory at or above dir containing one of the WorkspaceMarkers.
func FindWorkspace(dir string) (string, error) {
	if ws, ok := procutil.LookupEnv(BUILD_WORKSPACE_DIRECTORY); ok && ws != "" {
		return ws, nil
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if isWorkspaceRoot(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoWorkspace
		}
		dir = parent
	}
}

func isWorkspaceRoot(dir string) bool {
	for _, name := range WorkspaceMarkers {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
