package executor

import (
	"context"
	"os"
	"path/filepath"

	"github.com/f43a9a/warifuri/internal/aitask"
	"github.com/f43a9a/warifuri/internal/atomicio"
	"github.com/f43a9a/warifuri/internal/completion"
	"github.com/f43a9a/warifuri/internal/task"
)

// promptFileName is the AI task's equivalent of a machine task's run.sh.
const promptFileName = "prompt.yaml"

// responseFileName is where an AI task's generated response is
// published, the AI-task analogue of a declared machine output.
const responseFileName = "response.md"

// ExecuteAI runs an AI task: it loads prompt.yaml, dispatches it to the
// provider implied by the declared model, and publishes the response
// under output/response.md. It shares ExecuteMachine's staging,
// publish, and completion-logging skeleton.
func ExecuteAI(ctx context.Context, t *task.Task, ws *task.Workspace, opts Options) *Result {
	res := &Result{Task: t.FullName()}

	if t.IsCompleted() && !opts.Force {
		res.Outcome = OutcomeSkippedDone
		return res
	}
	if opts.DryRun {
		res.Outcome = OutcomeDryRun
		return res
	}

	lockPath := filepath.Join(t.Path, lockFileName)
	lock := atomicio.NewLock(lockPath)
	if err := lock.Acquire(lockAcquireTimeout); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = lockHeldError(t.FullName(), lockPath, err)
		return res
	}
	defer func() { _ = lock.Release() }()

	if _, err := os.Stat(task.DoneMarkerPath(t.Path)); err == nil && !opts.Force {
		res.Outcome = OutcomeSkippedDone
		return res
	}

	promptPath := filepath.Join(t.Path, promptFileName)
	prompt, err := aitask.LoadPrompt(promptPath)
	if err != nil {
		return failWithLog(ctx, res, t, "no_script", nil, nil, "", "", err)
	}

	stagingDir, err := newStagingDir()
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}
	defer func() { _ = atomicio.RemoveAll(stagingDir) }()

	if err := materializeInputs(t, stagingDir, ws.ProjectsDir); err != nil {
		return failWithLog(ctx, res, t, "input_missing", nil, nil, "", "", err)
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	resp, err := aitask.Run(runCtx, prompt, stagingDir)
	if err != nil {
		wrapped := &ExecError{Task: t.FullName(), Detail: err.Error(), Kind: ErrScriptFailed}
		return failWithLog(ctx, res, t, "script_failed", nil, nil, "", err.Error(), wrapped)
	}

	outputDir := filepath.Join(t.Path, "output")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}
	if err := atomicio.WriteFileString(filepath.Join(outputDir, responseFileName), resp.Text, 0o644); err != nil {
		return failWithLog(ctx, res, t, "output_missing", nil, nil, resp.Text, "", err)
	}

	rec := completion.Record{
		TaskFullName: t.FullName(),
		Command:      []string{resp.Provider},
		Stdout:       resp.Text,
		ExitCode:     0,
	}
	logPath, logErr := completion.WriteSuccessLog(ctx, t.Path, rec)
	if logErr != nil {
		return failWithLog(ctx, res, t, "success_log_failed", nil, nil, resp.Text, "", logErr)
	}

	if err := completion.MarkDone(ctx, t.Path, "ai execution succeeded ("+resp.Provider+")"); err != nil {
		return failWithLog(ctx, res, t, "mark_done_failed", nil, nil, resp.Text, "", err)
	}

	res.Outcome = OutcomeSuccess
	res.LogPath = logPath
	return res
}
