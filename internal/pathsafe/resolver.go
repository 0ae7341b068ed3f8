// Package pathsafe resolves input-file references against a task's
// directory while guaranteeing the result stays within the workspace's
// projects/ subtree. It is the single gate through which every input
// reference must pass before readiness evaluation or staging trusts it
package pathsafe

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxTraversalSegments is the defense-in-depth ceiling on ".." segments
// in a raw reference string, checked before the authoritative
// post-resolve containment test.
const MaxTraversalSegments = 10

// ErrRejected is the sentinel error wrapped by every resolution failure.
var ErrRejected = errors.New("path rejected")

// RejectedError names the reference and the reason it was rejected.
type RejectedError struct {
	Ref    string
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Ref, e.Reason)
}

func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

// Result is a successfully resolved reference.
type Result struct {
	// Path is the absolute, symlink-resolved path, guaranteed to lie
	// within projectsDir.
	Path string

	// CrossProject is true when Path lies outside the owning task's
	// directory (but still inside projectsDir).
	CrossProject bool

	// Diagnostic is a human-readable description of how the reference
	// was resolved, for logging.
	Diagnostic string
}

// Resolve resolves ref (a workspace-relative or task-relative path
// reference) against the owning task's directory, guaranteeing the
// result lies within projectsDir.
//
// Rules, applied in order:
//  1. Reject references with more than MaxTraversalSegments ".." segments.
//  2. Join ref to taskDir and fully resolve symlinks and ".." segments.
//  3. Reject if the resolved path is not within the resolved projectsDir.
//  4. Otherwise accept; a resolved path outside taskDir but inside
//     projectsDir is a legitimate cross-project reference.
func Resolve(ref, taskDir, projectsDir string) (*Result, error) {
	if countTraversal(ref) > MaxTraversalSegments {
		return nil, &RejectedError{Ref: ref, Reason: "excessive path traversal"}
	}

	candidate := filepath.Join(taskDir, ref)

	resolvedProjectsDir, err := filepath.EvalSymlinks(projectsDir)
	if err != nil {
		return nil, &RejectedError{Ref: ref, Reason: fmt.Sprintf("cannot resolve projects directory: %v", err)}
	}

	resolved, err := resolveExisting(candidate)
	if err != nil {
		return nil, &RejectedError{Ref: ref, Reason: fmt.Sprintf("cannot resolve path: %v", err)}
	}

	if !withinDir(resolved, resolvedProjectsDir) {
		return nil, &RejectedError{Ref: ref, Reason: "path traversal outside projects directory"}
	}

	resolvedTaskDir, err := filepath.EvalSymlinks(taskDir)
	if err != nil {
		// The owning task directory should always exist; if it doesn't,
		// fall back to the unresolved form for the containment-within-task
		// comparison only (the projectsDir check above already holds).
		resolvedTaskDir = filepath.Clean(taskDir)
	}

	crossProject := !withinDir(resolved, resolvedTaskDir)

	diag := "same-task reference"
	if crossProject {
		diag = "cross-project reference"
	}

	return &Result{Path: resolved, CrossProject: crossProject, Diagnostic: diag}, nil
}

// countTraversal counts ".." path components in a reference string
// without touching the filesystem.
func countTraversal(ref string) int {
	n := 0
	for _, part := range strings.Split(filepath.ToSlash(ref), "/") {
		if part == ".." {
			n++
		}
	}
	return n
}

// resolveExisting resolves symlinks for the longest existing prefix of
// path, then rejoins any trailing components that do not yet exist
// (e.g. a declared output file the script hasn't written yet).
func resolveExisting(path string) (string, error) {
	clean := filepath.Clean(path)

	if resolved, err := filepath.EvalSymlinks(clean); err == nil {
		return resolved, nil
	}

	dir := filepath.Dir(clean)
	base := filepath.Base(clean)
	if dir == clean {
		return "", fmt.Errorf("cannot resolve %s", path)
	}

	resolvedDir, err := resolveExisting(dir)
	if err != nil {
		return "", err
	}

	return filepath.Join(resolvedDir, base), nil
}

// withinDir reports whether path is base itself or lies within base.
func withinDir(path, base string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
