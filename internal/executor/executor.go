// Package executor runs a task's declared work inside an isolated
// staging directory and publishes its outputs atomically.
// Three strategies share one staging/publish skeleton: machine tasks
// invoke a discovered script, AI tasks delegate to a model provider,
// human tasks only print instructions and wait for a manual mark-done.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/f43a9a/warifuri/internal/atomicio"
	"github.com/f43a9a/warifuri/internal/completion"
	"github.com/f43a9a/warifuri/internal/task"
)

// lockFileName is the per-task sentinel guarding the execute-publish
// sequence against concurrent "run" invocations on the same task.
const lockFileName = ".execution.lock"

// lockAcquireTimeout bounds how long a run waits for a concurrent
// invocation of the same task to finish before giving up. Variable
// rather than const so tests can shrink it instead of waiting it out.
var lockAcquireTimeout = 30 * time.Second

// Options controls one execution attempt.
type Options struct {
	// DryRun reports what would happen without touching the filesystem
	// or invoking anything.
	DryRun bool

	// Force re-runs a task even if its completion marker is present.
	Force bool

	// Timeout bounds the subprocess invocation; zero means no bound.
	Timeout time.Duration
}

// Outcome classifies the end state of one execution attempt.
type Outcome string

// Valid outcomes.
const (
	OutcomeSuccess      Outcome = "success"
	OutcomeSkippedDone  Outcome = "skipped_already_done"
	OutcomeDryRun       Outcome = "dry_run"
	OutcomeHumanPending Outcome = "human_pending"
	OutcomeFailed       Outcome = "failed"
)

// Result reports what happened for one task.
type Result struct {
	Task    string
	Outcome Outcome
	LogPath string
	Err     error

	// Description carries the task's instruction description for the
	// HUMAN outcome, so the caller can print it alongside the
	// mark-done prompt without reloading the task.
	Description string
}

// ExecuteMachine runs a machine task's script inside a fresh staging
// directory and publishes its declared outputs atomically.
//
// Steps: dry-run short-circuit, staging directory
// creation, task mirroring, input materialization, entry-point
// discovery, command building, environment injection, invocation,
// output validation, atomic publish, success recording, cleanup.
func ExecuteMachine(ctx context.Context, t *task.Task, ws *task.Workspace, opts Options) *Result {
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

	// A concurrent run may have published this task's completion marker
	// while we waited for the lock; the loser must not re-execute.
	if _, err := os.Stat(task.DoneMarkerPath(t.Path)); err == nil && !opts.Force {
		res.Outcome = OutcomeSkippedDone
		return res
	}

	stagingDir, err := newStagingDir()
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}
	defer func() { _ = atomicio.RemoveAll(stagingDir) }()

	if err := mirrorTask(t.Path, stagingDir); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	if err := materializeInputs(t, stagingDir, ws.ProjectsDir); err != nil {
		return failWithLog(ctx, res, t, "input_missing", nil, nil, "", "", err)
	}

	entry, err := discoverEntryPoint(stagingDir)
	if err != nil {
		wrapped := &ExecError{Task: t.FullName(), Detail: err.Error(), Kind: ErrNoScript}
		return failWithLog(ctx, res, t, "no_script", nil, nil, "", "", wrapped)
	}

	env := buildEnv(t.Project, t.Name, ws.Root)

	runCtx := ctx
	var cancel context.CancelFunc
	if opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, entry.argv[0], entry.argv[1:]...)
	cmd.Dir = stagingDir
	cmd.Env = env

	stdout, stderr, runErr := runCaptured(cmd)
	if runErr != nil {
		exitCode := -1
		if cmd.ProcessState != nil {
			exitCode = cmd.ProcessState.ExitCode()
		}
		wrapped := &ExecError{Task: t.FullName(), Detail: runErr.Error(), Kind: ErrScriptFailed}
		return failWithLog(ctx, res, t, "script_failed", entry.argv, env, stdout, stderr, wrapped, withExitCode(exitCode))
	}

	if err := validateOutputs(t, stagingDir); err != nil {
		return failWithLog(ctx, res, t, "output_missing", entry.argv, env, stdout, stderr, err)
	}

	if err := publishOutputs(t, stagingDir); err != nil {
		return failWithLog(ctx, res, t, "output_missing", entry.argv, env, stdout, stderr, err)
	}

	rec := completion.Record{
		TaskFullName: t.FullName(),
		Command:      entry.argv,
		Environment:  env,
		Stdout:       stdout,
		Stderr:       stderr,
		ExitCode:     0,
	}
	logPath, logErr := completion.WriteSuccessLog(ctx, t.Path, rec)
	if logErr != nil {
		return failWithLog(ctx, res, t, "success_log_failed", entry.argv, env, stdout, stderr, logErr)
	}

	if err := completion.MarkDone(ctx, t.Path, "machine execution succeeded"); err != nil {
		return failWithLog(ctx, res, t, "mark_done_failed", entry.argv, env, stdout, stderr, err)
	}

	res.Outcome = OutcomeSuccess
	res.LogPath = logPath
	return res
}

// ExecuteHuman reports that a human task's completion is pending a
// manual "warifuri mark-done" invocation. It surfaces the task's
// description on the result so the caller can print it alongside the
// mark-done prompt. It never touches the filesystem beyond the
// instruction already loaded onto t.
func ExecuteHuman(t *task.Task) *Result {
	res := &Result{Task: t.FullName()}
	if t.IsCompleted() {
		res.Outcome = OutcomeSkippedDone
		return res
	}
	res.Outcome = OutcomeHumanPending
	res.Description = t.Instruction.Description
	return res
}

func validateOutputs(t *task.Task, stagingDir string) error {
	for _, out := range t.Instruction.Outputs {
		p := filepath.Join(stagingDir, out)
		if _, err := os.Stat(p); err != nil {
			return &ExecError{Task: t.FullName(), Detail: out, Kind: ErrOutputMissing}
		}
	}
	return nil
}

// publishOutputs copies each declared output from the staging
// directory's root (where the script wrote it) into the task
// directory itself under the same declared path, creating parent
// directories as needed. Files not declared as outputs are discarded
// along with the rest of the staging directory.
func publishOutputs(t *task.Task, stagingDir string) error {
	for _, out := range t.Instruction.Outputs {
		src := filepath.Join(stagingDir, out)
		info, err := os.Stat(src)
		if err != nil {
			return &ExecError{Task: t.FullName(), Detail: out, Kind: ErrOutputMissing}
		}

		dst := filepath.Join(t.Path, out)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := atomicio.CopyFileAtomic(src, dst, info.Mode().Perm()); err != nil {
			return err
		}
	}
	return nil
}

func runCaptured(cmd *exec.Cmd) (stdout, stderr string, err error) {
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// lockHeldError reports a lock-acquire failure, naming the PID recorded
// in the sentinel file when one can be read, for diagnosing a stale or
// long-running concurrent invocation.
func lockHeldError(fullName, lockPath string, cause error) error {
	if pid, ok := atomicio.HeldPID(lockPath); ok {
		return fmt.Errorf("acquire execution lock for %s: held by pid %d: %w", fullName, pid, cause)
	}
	return fmt.Errorf("acquire execution lock for %s: %w", fullName, cause)
}

// recordOpt tweaks a completion.Record built by failWithLog; currently
// only the subprocess exit code needs overriding.
type recordOpt func(*completion.Record)

func withExitCode(code int) recordOpt {
	return func(r *completion.Record) { r.ExitCode = code }
}

// failWithLog writes a failure log for t, then returns a Result marked
// OutcomeFailed carrying err and the log's path.
func failWithLog(ctx context.Context, res *Result, t *task.Task, errorKind string, argv, env []string, stdout, stderr string, err error, opts ...recordOpt) *Result {
	rec := completion.Record{
		TaskFullName: t.FullName(),
		ErrorKind:    errorKind,
		Command:      argv,
		Environment:  env,
		Stdout:       stdout,
		Stderr:       stderr,
		ExitCode:     -1,
		Trace:        []string{err.Error()},
	}
	for _, opt := range opts {
		opt(&rec)
	}

	logPath, _ := completion.WriteFailureLog(ctx, t.Path, rec)
	res.Outcome = OutcomeFailed
	res.LogPath = logPath
	res.Err = err
	return res
}
