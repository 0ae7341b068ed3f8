package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/f43a9a/warifuri/internal/githubcli"
)

func newPRCmd() *cobra.Command {
	var base, head string
	var draft bool

	c := &cobra.Command{
		Use:   "pr <project/task>",
		Short: "Open a GitHub pull request for a completed task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPR(cmd, args[0], base, head, draft)
		},
	}
	c.Flags().StringVar(&base, "base", "", "base branch (defaults to the repository's default branch)")
	c.Flags().StringVar(&head, "head", "", "head branch (defaults to the current branch)")
	c.Flags().BoolVar(&draft, "draft", false, "open as a draft pull request")

	return c
}

func runPR(cmd *cobra.Command, fullName, base, head string, draft bool) error {
	ws, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}

	t, ok := ws.TaskByFullName(fullName)
	if !ok {
		return fmt.Errorf("task not found: %s", fullName)
	}
	if !t.IsCompleted() {
		return fmt.Errorf("%s is not completed; run it before opening a pull request", fullName)
	}

	url, err := githubcli.CreatePR(cmd.Context(), githubcli.CreatePROptions{
		Title: fmt.Sprintf("%s: %s", fullName, t.Instruction.Description),
		Body:  githubcli.TaskIssueBody(t),
		Base:  base,
		Head:  head,
		Repo:  cfg.GitHub.Repo,
		Draft: draft,
	})
	if err != nil {
		return fmt.Errorf("create pull request: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), url)

	if t.Instruction.AutoMerge {
		if err := githubcli.EnableAutoMerge(cmd.Context(), url, cfg.GitHub.Repo); err != nil {
			return fmt.Errorf("enable auto-merge: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "auto-merge enabled")
	}

	return nil
}
