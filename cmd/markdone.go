package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/f43a9a/warifuri/internal/completion"
)

func newMarkDoneCmd() *cobra.Command {
	var message string

	c := &cobra.Command{
		Use:   "mark-done <project/task>",
		Short: "Mark a task complete without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMarkDone(cmd, args[0], message)
		},
	}
	c.Flags().StringVar(&message, "message", "marked done manually", "completion message recorded in done.md")

	return c
}

func runMarkDone(cmd *cobra.Command, fullName, message string) error {
	ws, _, err := loadWorkspace()
	if err != nil {
		return err
	}

	t, ok := ws.TaskByFullName(fullName)
	if !ok {
		return fmt.Errorf("task not found: %s", fullName)
	}
	if t.IsCompleted() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is already marked done\n", fullName)
		return nil
	}

	if err := completion.MarkDone(cmd.Context(), t.Path, message); err != nil {
		return fmt.Errorf("mark done: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "marked %s done\n", fullName)
	return nil
}
