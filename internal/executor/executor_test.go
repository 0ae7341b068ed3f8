package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f43a9a/warifuri/internal/atomicio"
	"github.com/f43a9a/warifuri/internal/task"
)

func newWorkspace(t *testing.T, projectsDir string) *task.Workspace {
	t.Helper()
	return &task.Workspace{
		Root:        filepath.Dir(projectsDir),
		ProjectsDir: projectsDir,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestExecuteMachine_SuccessPublishesOutput(t *testing.T) {
	root := t.TempDir()
	projectsDir := filepath.Join(root, "projects")
	taskDir := filepath.Join(projectsDir, "proj", "build")

	writeFile(t, filepath.Join(taskDir, "run.sh"), "#!/bin/sh\necho hi > result.txt\n")
	require.NoError(t, os.Chmod(filepath.Join(taskDir, "run.sh"), 0o755))

	tk := &task.Task{
		Project: "proj",
		Name:    "build",
		Path:    taskDir,
		Instruction: task.Instruction{
			Name:        "build",
			Description: "builds things",
			Outputs:     []string{"result.txt"},
		},
	}

	ws := newWorkspace(t, projectsDir)

	res := ExecuteMachine(context.Background(), tk, ws, Options{})
	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)

	data, err := os.ReadFile(filepath.Join(taskDir, "result.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hi")

	_, err = os.Stat(task.DoneMarkerPath(taskDir))
	assert.NoError(t, err)
}

func TestExecuteMachine_MissingScript(t *testing.T) {
	root := t.TempDir()
	projectsDir := filepath.Join(root, "projects")
	taskDir := filepath.Join(projectsDir, "proj", "nothing")
	require.NoError(t, os.MkdirAll(taskDir, 0o755))

	tk := &task.Task{
		Project:     "proj",
		Name:        "nothing",
		Path:        taskDir,
		Instruction: task.Instruction{Name: "nothing", Description: "no script"},
	}

	res := ExecuteMachine(context.Background(), tk, newWorkspace(t, projectsDir), Options{})
	assert.Equal(t, OutcomeFailed, res.Outcome)
	require.Error(t, res.Err)
}

func TestExecuteMachine_ScriptFailureWritesLog(t *testing.T) {
	root := t.TempDir()
	projectsDir := filepath.Join(root, "projects")
	taskDir := filepath.Join(projectsDir, "proj", "fails")

	writeFile(t, filepath.Join(taskDir, "run.sh"), "#!/bin/sh\nexit 3\n")
	require.NoError(t, os.Chmod(filepath.Join(taskDir, "run.sh"), 0o755))

	tk := &task.Task{
		Project:     "proj",
		Name:        "fails",
		Path:        taskDir,
		Instruction: task.Instruction{Name: "fails", Description: "fails on purpose"},
	}

	res := ExecuteMachine(context.Background(), tk, newWorkspace(t, projectsDir), Options{})
	assert.Equal(t, OutcomeFailed, res.Outcome)
	require.NotEmpty(t, res.LogPath)

	_, err := os.Stat(res.LogPath)
	assert.NoError(t, err)
}

func TestExecuteMachine_MissingDeclaredOutputFails(t *testing.T) {
	root := t.TempDir()
	projectsDir := filepath.Join(root, "projects")
	taskDir := filepath.Join(projectsDir, "proj", "incomplete")

	writeFile(t, filepath.Join(taskDir, "run.sh"), "#!/bin/sh\ntrue\n")
	require.NoError(t, os.Chmod(filepath.Join(taskDir, "run.sh"), 0o755))

	tk := &task.Task{
		Project: "proj",
		Name:    "incomplete",
		Path:    taskDir,
		Instruction: task.Instruction{
			Name:        "incomplete",
			Description: "never writes its output",
			Outputs:     []string{"missing.txt"},
		},
	}

	res := ExecuteMachine(context.Background(), tk, newWorkspace(t, projectsDir), Options{})
	assert.Equal(t, OutcomeFailed, res.Outcome)
}

func TestExecuteMachine_DryRunDoesNothing(t *testing.T) {
	root := t.TempDir()
	projectsDir := filepath.Join(root, "projects")
	taskDir := filepath.Join(projectsDir, "proj", "build")
	writeFile(t, filepath.Join(taskDir, "run.sh"), "#!/bin/sh\ntrue\n")

	tk := &task.Task{
		Project:     "proj",
		Name:        "build",
		Path:        taskDir,
		Instruction: task.Instruction{Name: "build", Description: "builds"},
	}

	res := ExecuteMachine(context.Background(), tk, newWorkspace(t, projectsDir), Options{DryRun: true})
	assert.Equal(t, OutcomeDryRun, res.Outcome)

	_, err := os.Stat(task.DoneMarkerPath(taskDir))
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteMachine_AlreadyCompletedSkipped(t *testing.T) {
	root := t.TempDir()
	projectsDir := filepath.Join(root, "projects")
	taskDir := filepath.Join(projectsDir, "proj", "build")
	require.NoError(t, os.MkdirAll(taskDir, 0o755))

	tk := &task.Task{
		Project:     "proj",
		Name:        "build",
		Path:        taskDir,
		Instruction: task.Instruction{Name: "build", Description: "builds"},
		Status:      task.StatusCompleted,
	}

	res := ExecuteMachine(context.Background(), tk, newWorkspace(t, projectsDir), Options{})
	assert.Equal(t, OutcomeSkippedDone, res.Outcome)
}

func TestExecuteMachine_HeldLockFailsFast(t *testing.T) {
	root := t.TempDir()
	projectsDir := filepath.Join(root, "projects")
	taskDir := filepath.Join(projectsDir, "proj", "build")
	writeFile(t, filepath.Join(taskDir, "run.sh"), "#!/bin/sh\ntrue\n")
	require.NoError(t, os.Chmod(filepath.Join(taskDir, "run.sh"), 0o755))

	lock := atomicio.NewLock(filepath.Join(taskDir, lockFileName))
	require.NoError(t, lock.Acquire(time.Second))
	defer lock.Release()

	old := lockAcquireTimeout
	lockAcquireTimeout = 100 * time.Millisecond
	defer func() { lockAcquireTimeout = old }()

	tk := &task.Task{
		Project:     "proj",
		Name:        "build",
		Path:        taskDir,
		Instruction: task.Instruction{Name: "build", Description: "builds"},
	}

	res := ExecuteMachine(context.Background(), tk, newWorkspace(t, projectsDir), Options{})
	assert.Equal(t, OutcomeFailed, res.Outcome)
	require.Error(t, res.Err)
}

func TestExecuteMachine_LoserObservesCompletionAfterLockRelease(t *testing.T) {
	root := t.TempDir()
	projectsDir := filepath.Join(root, "projects")
	taskDir := filepath.Join(projectsDir, "proj", "build")
	writeFile(t, filepath.Join(taskDir, "run.sh"), "#!/bin/sh\necho hi > result.txt\n")
	require.NoError(t, os.Chmod(filepath.Join(taskDir, "run.sh"), 0o755))

	// Simulate a winner that already ran and published while this task's
	// in-memory Status still reflects "not yet completed".
	require.NoError(t, os.WriteFile(task.DoneMarkerPath(taskDir), []byte("done\n"), 0o644))

	tk := &task.Task{
		Project: "proj",
		Name:    "build",
		Path:    taskDir,
		Instruction: task.Instruction{
			Name:        "build",
			Description: "builds things",
			Outputs:     []string{"result.txt"},
		},
	}

	res := ExecuteMachine(context.Background(), tk, newWorkspace(t, projectsDir), Options{})
	assert.Equal(t, OutcomeSkippedDone, res.Outcome)

	_, err := os.Stat(filepath.Join(taskDir, "result.txt"))
	assert.True(t, os.IsNotExist(err), "loser must not re-execute and overwrite the winner's output")
}

func TestExecuteHuman_PendingUntilMarkedDone(t *testing.T) {
	tk := &task.Task{
		Project:     "proj",
		Name:        "review",
		Instruction: task.Instruction{Name: "review", Description: "a human reviews this"},
	}

	res := ExecuteHuman(tk)
	assert.Equal(t, OutcomeHumanPending, res.Outcome)
	assert.Equal(t, "a human reviews this", res.Description)

	tk.Status = task.StatusCompleted
	res = ExecuteHuman(tk)
	assert.Equal(t, OutcomeSkippedDone, res.Outcome)
}

func TestFlattenedInputName(t *testing.T) {
	assert.Equal(t, "other_data.csv", flattenedInputName("other/data.csv"))
	assert.Equal(t, "data.csv", flattenedInputName("./data.csv"))
	assert.Equal(t, "data.csv", flattenedInputName("../../data.csv"))
}
