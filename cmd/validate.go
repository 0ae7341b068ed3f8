package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the workspace for dependency cycles and unresolved references",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd)
		},
	}
}

func runValidate(cmd *cobra.Command) error {
	ws, _, err := loadWorkspace()
	if err != nil {
		return err
	}

	g := buildGraph(ws)
	out := cmd.OutOrStdout()
	problems := 0

	if cycle := g.DetectCycle(); len(cycle) > 0 {
		problems++
		fmt.Fprintf(out, "Circular dependency detected: %v\n", cycle)
	}

	for _, t := range ws.AllTasks() {
		name := t.FullName()
		for _, missing := range g.Unresolved(name) {
			problems++
			fmt.Fprintf(out, "%s: unresolved dependency %s\n", name, missing)
		}
	}

	if problems == 0 {
		fmt.Fprintln(out, "workspace is valid")
		return nil
	}

	return fmt.Errorf("%d problem(s) found", problems)
}
