// Package completion implements the completion marker and failure/
// success log writers: the sole source of truth for task
// completion, and the forensic trail left by every execution attempt.
package completion

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/f43a9a/warifuri/internal/atomicio"
	"github.com/f43a9a/warifuri/internal/task"
	"github.com/f43a9a/warifuri/internal/vcs"
)

const timestampLayout = "20060102_150405"

// MarkDone writes the completion marker for taskDir with an optional
// leading message, an ISO-8601 timestamp, and the current commit hash
// (or "unknown" if none can be discovered). The write is atomic
// (sibling temp file + rename), so readers never observe a partial
// marker.
func MarkDone(ctx context.Context, taskDir, message string) error {
	commit := vcs.CurrentCommit(ctx, taskDir)
	now := time.Now().UTC().Format(time.RFC3339)

	var content string
	if message != "" {
		content = fmt.Sprintf("%s\n\n%s (commit: %s)\n", message, now, commit)
	} else {
		content = fmt.Sprintf("%s (commit: %s)\n", now, commit)
	}

	return atomicio.WriteFile(task.DoneMarkerPath(taskDir), []byte(content), 0o644)
}

// Record captures the details written to a success or failure log.
type Record struct {
	TaskFullName string
	ErrorKind    string // empty for success logs
	Command      []string
	Environment  []string
	Stdout       string
	Stderr       string
	ExitCode     int
	Trace        []string
}

// WriteFailureLog writes a timestamped failure log under
// <taskDir>/logs/failed_<ts>.log. Exactly one is
// written per failed execution attempt.
func WriteFailureLog(ctx context.Context, taskDir string, rec Record) (string, error) {
	return writeLog(ctx, taskDir, "failed", rec)
}

// WriteSuccessLog writes a timestamped success log under
// <taskDir>/logs/execution_success_<ts>.log.
func WriteSuccessLog(ctx context.Context, taskDir string, rec Record) (string, error) {
	return writeLog(ctx, taskDir, "execution_success", rec)
}

func writeLog(ctx context.Context, taskDir, prefix string, rec Record) (string, error) {
	ts := time.Now().Format(timestampLayout)
	path := logPath(taskDir, prefix, ts)

	commit := vcs.CurrentCommit(ctx, taskDir)
	content := formatLog(rec, ts, commit)

	if err := atomicio.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write log %s: %w", path, err)
	}
	return path, nil
}

func logPath(taskDir, prefix, ts string) string {
	return filepath.Join(taskDir, "logs", prefix+"_"+ts+".log")
}

func formatLog(rec Record, ts, commit string) string {
	s := fmt.Sprintf("task: %s\ntimestamp: %s\ncommit: %s\n", rec.TaskFullName, ts, commit)
	if rec.ErrorKind != "" {
		s += fmt.Sprintf("error_kind: %s\n", rec.ErrorKind)
	}
	if len(rec.Command) > 0 {
		s += fmt.Sprintf("command: %v\n", rec.Command)
	}
	s += fmt.Sprintf("exit_code: %d\n", rec.ExitCode)
	if len(rec.Environment) > 0 {
		s += fmt.Sprintf("environment: %v\n", rec.Environment)
	}
	if len(rec.Trace) > 0 {
		s += "trace:\n"
		for _, line := range rec.Trace {
			s += "  " + line + "\n"
		}
	}
	s += "--- stdout ---\n" + rec.Stdout + "\n"
	s += "--- stderr ---\n" + rec.Stderr + "\n"
	return s
}
