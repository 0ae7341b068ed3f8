// Package githubcli shells out to the gh CLI to file issues and open
// pull requests for tasks, the same way internal/vcs shells out to git: no API
// client, just a thin wrapper around a CLI binary that is expected to
// already be authenticated.
package githubcli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/f43a9a/warifuri/internal/task"
)

// CreateIssueOptions controls one "gh issue create" invocation.
type CreateIssueOptions struct {
	Title  string
	Body   string
	Labels []string
	Repo   string
}

// CreateIssue runs "gh issue create" with the given options and returns
// the created issue's URL from stdout.
func CreateIssue(ctx context.Context, opts CreateIssueOptions) (string, error) {
	args := []string{"issue", "create", "--title", opts.Title, "--body", opts.Body}
	if len(opts.Labels) > 0 {
		args = append(args, "--label", strings.Join(opts.Labels, ","))
	}
	if opts.Repo != "" {
		args = append(args, "--repo", opts.Repo)
	}

	out, err := runGH(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("create issue %q: %w", opts.Title, err)
	}
	return out, nil
}

// CreatePROptions controls one "gh pr create" invocation.
type CreatePROptions struct {
	Title string
	Body  string
	Base  string
	Head  string
	Repo  string
	Draft bool
}

// CreatePR runs "gh pr create" with the given options and returns the
// created pull request's URL from stdout. A task's auto_merge hint (§3)
// does not drive this function directly; the caller decides whether to
// follow up with "gh pr merge --auto".
func CreatePR(ctx context.Context, opts CreatePROptions) (string, error) {
	args := []string{"pr", "create", "--title", opts.Title, "--body", opts.Body}
	if opts.Base != "" {
		args = append(args, "--base", opts.Base)
	}
	if opts.Head != "" {
		args = append(args, "--head", opts.Head)
	}
	if opts.Repo != "" {
		args = append(args, "--repo", opts.Repo)
	}
	if opts.Draft {
		args = append(args, "--draft")
	}

	out, err := runGH(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("create pull request %q: %w", opts.Title, err)
	}
	return out, nil
}

// EnableAutoMerge runs "gh pr merge --auto" against prURL, the
// cooperative action implied by a task's auto_merge instruction field.
func EnableAutoMerge(ctx context.Context, prURL, repo string) error {
	args := []string{"pr", "merge", "--auto", "--squash", prURL}
	if repo != "" {
		args = append(args, "--repo", repo)
	}
	if _, err := runGH(ctx, args...); err != nil {
		return fmt.Errorf("enable auto-merge for %s: %w", prURL, err)
	}
	return nil
}

func runGH(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "gh", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%s", msg)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// TaskIssueBody formats a task's details as a Markdown issue body,
// matching the sections a human triaging it would expect: description,
// type/status, dependencies, inputs, outputs, and a note on how to run it.
func TaskIssueBody(t *task.Task) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Task: %s\n\n", t.FullName())
	fmt.Fprintf(&b, "## Description\n%s\n\n", descriptionOrPlaceholder(t.Instruction.Description))
	fmt.Fprintf(&b, "**Type**: %s\n**Completed**: %s\n\n", t.TaskType, yesNo(t.IsCompleted()))

	if len(t.Instruction.Dependencies) > 0 {
		b.WriteString("## Dependencies\n\n")
		for _, dep := range t.Instruction.Dependencies {
			fmt.Fprintf(&b, "- [ ] %s\n", dep)
		}
		b.WriteString("\n")
	}

	if len(t.Instruction.Inputs) > 0 {
		b.WriteString("## Input Files\n\n")
		for _, in := range t.Instruction.Inputs {
			fmt.Fprintf(&b, "- `%s`\n", in)
		}
		b.WriteString("\n")
	}

	if len(t.Instruction.Outputs) > 0 {
		b.WriteString("## Expected Outputs\n\n")
		for _, out := range t.Instruction.Outputs {
			fmt.Fprintf(&b, "- `%s`\n", out)
		}
		b.WriteString("\n")
	}

	if t.Instruction.Note != "" {
		fmt.Fprintf(&b, "## Notes\n%s\n\n", t.Instruction.Note)
	}

	fmt.Fprintf(&b, "## Execution\nRun with: `warifuri run --task %s`\n", t.FullName())

	return b.String()
}

func descriptionOrPlaceholder(d string) string {
	if d == "" {
		return "No description provided"
	}
	return d
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
