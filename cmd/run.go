package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/f43a9a/warifuri/internal/executor"
	"github.com/f43a9a/warifuri/internal/ready"
	"github.com/f43a9a/warifuri/internal/task"
)

func newRunCmd() *cobra.Command {
	var taskName string
	var force bool
	var dryRun bool
	var timeoutSeconds int

	c := &cobra.Command{
		Use:   "run",
		Short: "Execute one ready task (the topologically-first, or one named with --task)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, taskName, force, dryRun, timeoutSeconds)
		},
	}

	c.Flags().StringVar(&taskName, "task", "", "run only this task (project/task)")
	c.Flags().BoolVar(&force, "force", false, "re-run even if already completed")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "report what would run without executing anything")
	c.Flags().IntVar(&timeoutSeconds, "timeout", 0, "per-task timeout in seconds (0 = no timeout)")

	return c
}

func runRun(cmd *cobra.Command, taskName string, force, dryRun bool, timeoutSeconds int) error {
	ws, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}

	opts := executor.Options{Force: force, DryRun: dryRun, Timeout: cfg.Run.Timeout()}
	if timeoutSeconds > 0 {
		opts.Timeout = time.Duration(timeoutSeconds) * time.Second
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()

	target, err := selectRunTarget(ws, taskName, force, out)
	if err != nil {
		return err
	}
	if target == nil {
		if taskName == "" {
			fmt.Fprintln(out, "no ready tasks")
		}
		return nil
	}

	var res *executor.Result
	switch target.TaskType {
	case task.TypeMachine:
		res = executor.ExecuteMachine(ctx, target, ws, opts)
	case task.TypeAI:
		res = executor.ExecuteAI(ctx, target, ws, opts)
	case task.TypeHuman:
		res = executor.ExecuteHuman(target)
	}

	reportResult(out, res)
	if res.Outcome == executor.OutcomeFailed {
		return fmt.Errorf("%s failed", res.Task)
	}
	return nil
}

// selectRunTarget resolves --task to a single named task, or falls back
// to the topologically-first task in the ready set: one task runs per
// invocation of run.
//
// An explicit --task that is not already completed and not forced must
// pass the same readiness predicate as auto-selection: a task with an
// unresolved dependency, a pending dependency, or a missing input is
// reported and left un-executed rather than invoked blind.
func selectRunTarget(ws *task.Workspace, taskName string, force bool, out io.Writer) (*task.Task, error) {
	if taskName != "" {
		t, ok := ws.TaskByFullName(taskName)
		if !ok {
			return nil, fmt.Errorf("task not found: %s", taskName)
		}

		if t.IsCompleted() || force {
			return t, nil
		}

		g := buildGraph(ws)
		eval := ready.Evaluate(ws.AllTasks(), g, ws.ProjectsDir)[t.FullName()]
		if eval == nil || !eval.Ready {
			reason := "not ready"
			if eval != nil && eval.Reason != nil {
				reason = eval.Reason.Detail
			}
			fmt.Fprintf(out, "pending %s: %s (use --force to run anyway)\n", t.FullName(), reason)
			return nil, nil
		}
		return t, nil
	}

	g := buildGraph(ws)
	order := ready.ReadySet(ws.AllTasks(), g, ws.ProjectsDir)
	if len(order) == 0 {
		return nil, nil
	}

	t, _ := ws.TaskByFullName(order[0])
	return t, nil
}

func reportResult(out io.Writer, res *executor.Result) {
	switch res.Outcome {
	case executor.OutcomeSuccess:
		fmt.Fprintf(out, "ok      %s\n", res.Task)
	case executor.OutcomeFailed:
		fmt.Fprintf(out, "FAILED  %s: %v\n", res.Task, res.Err)
	case executor.OutcomeSkippedDone:
		fmt.Fprintf(out, "done    %s\n", res.Task)
	case executor.OutcomeDryRun:
		fmt.Fprintf(out, "dry-run %s\n", res.Task)
	case executor.OutcomeHumanPending:
		fmt.Fprintf(out, "%s\n", res.Description)
		fmt.Fprintf(out, "pending %s (human task, run `warifuri mark-done %s` once complete)\n", res.Task, res.Task)
	}
}
