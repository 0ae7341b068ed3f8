package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	cmdinternal "github.com/f43a9a/warifuri/cmd/internal"
	"github.com/f43a9a/warifuri/internal/ready"
	"github.com/f43a9a/warifuri/internal/task"
)

func newListCmd() *cobra.Command {
	var readyOnly bool
	var project string

	c := &cobra.Command{
		Use:   "list",
		Short: "List discovered tasks and their readiness",
		Long:  "Discover the workspace and print every task with its type and current status.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, readyOnly, project)
		},
	}

	c.Flags().BoolVar(&readyOnly, "ready", false, "only show tasks that are ready to run")
	c.Flags().StringVar(&project, "project", "", "only show tasks in this project")

	return c
}

func runList(cmd *cobra.Command, readyOnly bool, project string) error {
	ws, _, err := loadWorkspace()
	if err != nil {
		return err
	}

	g := buildGraph(ws)
	evals := evaluateReadiness(ws, g)

	tasks := ws.AllTasks()
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].FullName() < tasks[j].FullName() })

	colors := cmdinternal.NewColors(cmd.OutOrStdout())
	completed := 0

	for _, t := range tasks {
		if project != "" && t.Project != project {
			continue
		}

		eval := evals[t.FullName()]
		if readyOnly && !(eval != nil && eval.Ready) {
			continue
		}

		if t.IsCompleted() {
			completed++
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-8s  %s\n", statusSymbol(t, eval, colors), t.TaskType, t.FullName())
	}

	if !readyOnly && project == "" && len(tasks) > 0 {
		percent := completed * 100 / len(tasks)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s %d/%d completed\n", cmdinternal.ProgressBar(percent, 20), completed, len(tasks))
	}

	return nil
}

func statusSymbol(t *task.Task, eval *ready.Evaluation, colors cmdinternal.Colors) string {
	switch {
	case t.IsCompleted():
		return colors.Success("✓")
	case eval != nil && eval.Ready:
		return colors.Warn("●")
	default:
		return colors.Dim("·")
	}
}
