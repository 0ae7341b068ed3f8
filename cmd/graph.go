package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	var dot bool

	c := &cobra.Command{
		Use:   "graph",
		Short: "Print the task dependency graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, dot)
		},
	}
	c.Flags().BoolVar(&dot, "dot", false, "render as Graphviz DOT instead of plain text")

	return c
}

func runGraph(cmd *cobra.Command, dot bool) error {
	ws, _, err := loadWorkspace()
	if err != nil {
		return err
	}

	g := buildGraph(ws)
	nodes := g.Nodes()
	sort.Strings(nodes)

	out := cmd.OutOrStdout()

	if dot {
		fmt.Fprintln(out, "digraph warifuri {")
		for _, n := range nodes {
			for _, dep := range g.Dependencies(n) {
				fmt.Fprintf(out, "  %q -> %q;\n", n, dep)
			}
		}
		fmt.Fprintln(out, "}")
		return nil
	}

	for _, n := range nodes {
		deps := g.Dependencies(n)
		if len(deps) == 0 {
			fmt.Fprintf(out, "%s\n", n)
			continue
		}
		sort.Strings(deps)
		fmt.Fprintf(out, "%s -> %v\n", n, deps)
	}

	return nil
}
