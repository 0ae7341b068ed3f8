package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/f43a9a/warifuri/internal/atomicio"
	"github.com/f43a9a/warifuri/internal/template"
)

func newInitCmd() *cobra.Command {
	var templateName string
	var force bool
	var dryRun bool

	c := &cobra.Command{
		Use:   "init [project | project/task]",
		Short: "Create a new project or task, optionally from a template",
		Long: `init creates a project directory under projects/, or a task
directory under projects/<project>/ when TARGET contains a slash. With
--template it expands templates/<name> into the new directory instead
of writing a bare instruction.yaml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target string
			if len(args) == 1 {
				target = args[0]
			}
			return runInit(cmd, target, templateName, force, dryRun)
		},
	}

	c.Flags().StringVar(&templateName, "template", "", "template under templates/ to expand")
	c.Flags().BoolVar(&force, "force", false, "overwrite an existing project or task")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be created without creating it")

	return c
}

func runInit(cmd *cobra.Command, target, templateName string, force, dryRun bool) error {
	ws, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}

	if target == "" {
		if templateName == "" {
			return fmt.Errorf("TARGET is required unless --template is given")
		}
		return expandTemplateAsProject(cmd, ws.ProjectsDir, ws.TemplatesDir, templateName, force, dryRun, cfg.Template.SkipPatterns)
	}

	project, task, isTask := strings.Cut(target, "/")
	if isTask {
		return createTask(cmd, ws.ProjectsDir, ws.TemplatesDir, project, task, templateName, force, dryRun, cfg.Template.SkipPatterns)
	}
	return createProject(cmd, ws.ProjectsDir, ws.TemplatesDir, project, templateName, force, dryRun, cfg.Template.SkipPatterns)
}

func createProject(cmd *cobra.Command, projectsDir, templatesDir, name, templateName string, force, dryRun bool, skip []string) error {
	out := cmd.OutOrStdout()
	path := filepath.Join(projectsDir, name)

	if exists(path) && !force {
		return fmt.Errorf("project %q already exists; use --force to overwrite", name)
	}
	if dryRun {
		fmt.Fprintf(out, "would create project: %s\n", path)
		return nil
	}

	if templateName != "" {
		templatePath := filepath.Join(templatesDir, templateName)
		if !exists(templatePath) {
			return fmt.Errorf("template %q not found", templateName)
		}
		vars := map[string]string{"PROJECT_NAME": name}
		if err := template.Expand(templatePath, path, vars, skip); err != nil {
			return fmt.Errorf("expand template: %w", err)
		}
		fmt.Fprintf(out, "created project %q from template %q\n", name, templateName)
		return nil
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create project directory: %w", err)
	}
	fmt.Fprintf(out, "created project: %s\n", name)
	fmt.Fprintf(out, "use `warifuri init %s/<task>` to create tasks\n", name)
	return nil
}

func createTask(cmd *cobra.Command, projectsDir, templatesDir, project, taskName, templateName string, force, dryRun bool, skip []string) error {
	out := cmd.OutOrStdout()
	path := filepath.Join(projectsDir, project, taskName)

	if exists(path) && !force {
		return fmt.Errorf("task %q already exists; use --force to overwrite", project+"/"+taskName)
	}
	if dryRun {
		fmt.Fprintf(out, "would create task: %s\n  - instruction.yaml\n", path)
		return nil
	}

	if templateName != "" {
		templatePath := filepath.Join(templatesDir, templateName)
		if !exists(templatePath) {
			return fmt.Errorf("template %q not found", templateName)
		}
		vars := map[string]string{"PROJECT_NAME": project, "TASK_NAME": taskName}
		if err := template.Expand(templatePath, path, vars, skip); err != nil {
			return fmt.Errorf("expand template: %w", err)
		}
		fmt.Fprintf(out, "created task %q from template %q\n", project+"/"+taskName, templateName)
		return nil
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create task directory: %w", err)
	}

	instruction := fmt.Sprintf(`name: %s
task_type: human
description: "Task description here"
auto_merge: false
dependencies: []
inputs: []
outputs: []
note: "Please edit this instruction.yaml to complete the task definition"
`, taskName)

	instructionPath := filepath.Join(path, "instruction.yaml")
	if err := atomicio.WriteFileString(instructionPath, instruction, 0o644); err != nil {
		return fmt.Errorf("write instruction.yaml: %w", err)
	}

	fmt.Fprintf(out, "created task: %s\n  - %s\n", project+"/"+taskName, instructionPath)
	fmt.Fprintln(out, "edit instruction.yaml to complete the task definition")
	return nil
}

func expandTemplateAsProject(cmd *cobra.Command, projectsDir, templatesDir, templateName string, force, dryRun bool, skip []string) error {
	out := cmd.OutOrStdout()
	templatePath := filepath.Join(templatesDir, templateName)
	if !exists(templatePath) {
		return fmt.Errorf("template %q not found", templateName)
	}

	targetPath := filepath.Join(projectsDir, templateName)
	if exists(targetPath) && !force {
		return fmt.Errorf("project %q already exists; use --force to overwrite", templateName)
	}
	if dryRun {
		fmt.Fprintf(out, "would expand template %q as project: %s\n", templateName, targetPath)
		return nil
	}

	vars := map[string]string{"PROJECT_NAME": templateName}
	if err := template.Expand(templatePath, targetPath, vars, skip); err != nil {
		return fmt.Errorf("expand template: %w", err)
	}

	fmt.Fprintf(out, "expanded template %q as project %q\n", templateName, templateName)
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
