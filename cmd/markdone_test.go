package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkDoneCommand(t *testing.T) {
	t.Run("marks a human task done", func(t *testing.T) {
		root := newTestWorkspace(t)
		projectsDir := root + "/projects"

		writeTask(t, projectsDir, "alpha", "review", `
name: review
description: "human review"
task_type: human
dependencies: []
inputs: []
outputs: []
`)

		chdir(t, root)

		out, err := runCmd(t, "mark-done", "alpha/review", "--message", "looks good")
		require.NoError(t, err)
		assert.Contains(t, out, "marked alpha/review done")

		marker := filepath.Join(projectsDir, "alpha", "review", "done.md")
		_, statErr := os.Stat(marker)
		require.NoError(t, statErr)
	})

	t.Run("marks a machine task done without running it", func(t *testing.T) {
		root := newTestWorkspace(t)
		projectsDir := root + "/projects"

		dir := writeTask(t, projectsDir, "alpha", "build", `
name: build
description: "build alpha"
task_type: machine
dependencies: []
inputs: []
outputs: []
`)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "run.sh"), []byte("#!/bin/sh\nexit 0\n"), 0o755))

		chdir(t, root)

		out, err := runCmd(t, "mark-done", "alpha/build")
		require.NoError(t, err)
		assert.Contains(t, out, "marked alpha/build done")

		marker := filepath.Join(dir, "done.md")
		_, statErr := os.Stat(marker)
		require.NoError(t, statErr)
	})

	t.Run("errors on unknown task", func(t *testing.T) {
		root := newTestWorkspace(t)
		chdir(t, root)

		_, err := runCmd(t, "mark-done", "missing/task")
		require.Error(t, err)
	})
}
