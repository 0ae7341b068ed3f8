package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTask creates projectsDir/project/name and writes instruction as
// its instruction.yaml, returning the task directory. It writes no run
// script; callers that need a MACHINE task add run.sh themselves.
func writeTask(t *testing.T, projectsDir, project, name, instruction string) string {
	t.Helper()
	dir := filepath.Join(projectsDir, project, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "instruction.yaml"), []byte(instruction), 0o644))
	return dir
}

func newTestWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "projects"), 0o755))
	return root
}

// chdir switches into dir for the duration of the test and restores the
// original working directory on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// runCmd executes the root command with args against the current
// working directory's workspace and returns combined stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}
