package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <project/task>",
		Short: "Show a task's instruction and readiness details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0])
		},
	}
}

func runShow(cmd *cobra.Command, fullName string) error {
	ws, _, err := loadWorkspace()
	if err != nil {
		return err
	}

	t, ok := ws.TaskByFullName(fullName)
	if !ok {
		return fmt.Errorf("task not found: %s", fullName)
	}

	g := buildGraph(ws)
	evals := evaluateReadiness(ws, g)
	eval := evals[fullName]

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n\n", t.FullName())
	fmt.Fprintf(out, "type: %s\n", t.TaskType)
	fmt.Fprintf(out, "description: %s\n", t.Instruction.Description)

	if len(t.Instruction.Dependencies) > 0 {
		fmt.Fprintln(out, "dependencies:")
		for _, dep := range t.Instruction.Dependencies {
			fmt.Fprintf(out, "  - %s\n", dep)
		}
	}
	if len(t.Instruction.Inputs) > 0 {
		fmt.Fprintln(out, "inputs:")
		for _, in := range t.Instruction.Inputs {
			fmt.Fprintf(out, "  - %s\n", in)
		}
	}
	if len(t.Instruction.Outputs) > 0 {
		fmt.Fprintln(out, "outputs:")
		for _, o := range t.Instruction.Outputs {
			fmt.Fprintf(out, "  - %s\n", o)
		}
	}
	if t.Instruction.Note != "" {
		fmt.Fprintf(out, "note: %s\n", t.Instruction.Note)
	}

	switch {
	case t.IsCompleted():
		fmt.Fprintln(out, "\nstatus: completed")
	case eval != nil && eval.Ready:
		fmt.Fprintln(out, "\nstatus: ready")
	case eval != nil:
		fmt.Fprintf(out, "\nstatus: pending (%s: %s)\n", eval.Reason.Kind, eval.Reason.Detail)
	}

	return nil
}
