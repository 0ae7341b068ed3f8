package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/f43a9a/warifuri/internal/githubcli"
)

func newIssueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "issue <project/task>",
		Short: "Create a GitHub issue describing a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIssue(cmd, args[0])
		},
	}
}

func runIssue(cmd *cobra.Command, fullName string) error {
	ws, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}

	t, ok := ws.TaskByFullName(fullName)
	if !ok {
		return fmt.Errorf("task not found: %s", fullName)
	}

	url, err := githubcli.CreateIssue(cmd.Context(), githubcli.CreateIssueOptions{
		Title:  fmt.Sprintf("%s: %s", fullName, t.Instruction.Description),
		Body:   githubcli.TaskIssueBody(t),
		Labels: cfg.GitHub.Labels,
		Repo:   cfg.GitHub.Repo,
	})
	if err != nil {
		return fmt.Errorf("create issue: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), url)
	return nil
}
