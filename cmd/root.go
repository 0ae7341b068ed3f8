// Package cmd implements the warifuri CLI command tree.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd creates the root command for the warifuri CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "warifuri",
		Short: "warifuri orchestrates workspace tasks by dependency readiness",
		Long: `warifuri discovers projects and tasks declared in instruction.yaml
files, resolves their dependency graph, and executes ready machine, AI, and
human tasks inside an isolated sandbox.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: workspace/warifuri.yaml, falling back to the global config)")

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newMarkDoneCmd())
	rootCmd.AddCommand(newGraphCmd())
	rootCmd.AddCommand(newTemplateCmd())
	rootCmd.AddCommand(newIssueCmd())
	rootCmd.AddCommand(newPRCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfigFile returns the --config flag value, empty if unset.
func GetConfigFile() string {
	return cfgFile
}
