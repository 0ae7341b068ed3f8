package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/f43a9a/warifuri/internal/template"
)

func newTemplateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "template",
		Short: "Instantiate a task template",
	}
	c.AddCommand(newTemplateInitCmd())
	return c
}

func newTemplateInitCmd() *cobra.Command {
	var vars map[string]string

	c := &cobra.Command{
		Use:   "init <name> <project/task>",
		Short: "Expand templates/<name> into projects/<project>/<task>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplateInit(cmd, args[0], args[1], vars)
		},
	}
	c.Flags().StringToStringVar(&vars, "var", nil, "template variable, may be repeated (KEY=VALUE)")

	return c
}

func runTemplateInit(cmd *cobra.Command, name, target string, vars map[string]string) error {
	ws, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}
	if ws.TemplatesDir == "" {
		return fmt.Errorf("workspace has no templates directory")
	}

	templateDir := filepath.Join(ws.TemplatesDir, name)
	targetDir := filepath.Join(ws.ProjectsDir, target)

	if err := template.Expand(templateDir, targetDir, vars, cfg.Template.SkipPatterns); err != nil {
		return fmt.Errorf("expand template: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "expanded %s into %s\n", name, target)
	return nil
}
