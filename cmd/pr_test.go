package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPRCommand(t *testing.T) {
	t.Run("command exists and requires exactly one argument", func(t *testing.T) {
		cmd := newPRCmd()
		assert.Equal(t, "pr <project/task>", cmd.Use)
		assert.Error(t, cmd.Args(cmd, []string{}))
		assert.NoError(t, cmd.Args(cmd, []string{"demo/a"}))
	})

	t.Run("reports an error for an unknown task", func(t *testing.T) {
		root := newTestWorkspace(t)
		chdir(t, root)

		_, err := runCmd(t, "pr", "demo/missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "task not found")
	})

	t.Run("refuses to open a pull request for an incomplete task", func(t *testing.T) {
		root := newTestWorkspace(t)
		projectsDir := root + "/projects"
		writeTask(t, projectsDir, "demo", "a", `
name: a
description: "not finished"
task_type: human
`)
		chdir(t, root)

		_, err := runCmd(t, "pr", "demo/a")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not completed")
	})
}
