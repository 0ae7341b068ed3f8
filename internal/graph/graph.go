// Package graph builds and validates the workspace-wide task dependency
// graph: adjacency, cycle detection, and topological ordering.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/f43a9a/warifuri/internal/task"
)

// Graph is a directed dependency graph of tasks identified by full name
// ("project/task"). An edge from D to X encodes "X depends on D".
type Graph struct {
	nodes        map[string]bool
	edges        map[string][]string // task -> its dependencies
	reverseEdges map[string][]string // task -> tasks that depend on it

	// unresolved collects dependency strings that did not resolve to a
	// known task, keyed by the owning task's full name. Unresolved
	// references are not fatal at build time; they surface
	// to readiness evaluation and to `validate`.
	unresolved map[string][]string
}

// ResolveDependency resolves a dependency string against an owning
// project: a string containing "/" is a full
// "project/task" name; otherwise it resolves within the owning project.
func ResolveDependency(ref, owningProject string) string {
	if strings.Contains(ref, "/") {
		return ref
	}
	return owningProject + "/" + ref
}

// Build constructs a dependency graph from every task in the workspace.
// Unresolved dependencies are recorded but do not prevent graph
// construction.
func Build(tasks []*task.Task) *Graph {
	g := &Graph{
		nodes:        make(map[string]bool),
		edges:        make(map[string][]string),
		reverseEdges: make(map[string][]string),
		unresolved:   make(map[string][]string),
	}

	for _, t := range tasks {
		g.nodes[t.FullName()] = true
	}

	for _, t := range tasks {
		full := t.FullName()
		for _, dep := range t.Instruction.Dependencies {
			resolved := ResolveDependency(dep, t.Project)
			if !g.nodes[resolved] {
				g.unresolved[full] = append(g.unresolved[full], dep)
				continue
			}
			g.edges[full] = append(g.edges[full], resolved)
			g.reverseEdges[resolved] = append(g.reverseEdges[resolved], full)
		}
	}

	return g
}

// Nodes returns all task full names in sorted order.
func (g *Graph) Nodes() []string {
	result := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

// HasNode reports whether the given full name exists in the graph.
func (g *Graph) HasNode(id string) bool {
	return g.nodes[id]
}

// Dependencies returns the resolved full names the given task depends on.
func (g *Graph) Dependencies(id string) []string {
	deps := g.edges[id]
	if len(deps) == 0 {
		return nil
	}
	result := make([]string, len(deps))
	copy(result, deps)
	return result
}

// Dependents returns the full names of tasks that depend on the given task.
func (g *Graph) Dependents(id string) []string {
	deps := g.reverseEdges[id]
	if len(deps) == 0 {
		return nil
	}
	result := make([]string, len(deps))
	copy(result, deps)
	return result
}

// Unresolved returns the dependency strings for id that did not resolve
// to a known task, or nil if all of its dependencies resolved.
func (g *Graph) Unresolved(id string) []string {
	deps := g.unresolved[id]
	if len(deps) == 0 {
		return nil
	}
	result := make([]string, len(deps))
	copy(result, deps)
	return result
}

// UnresolvedAll returns every task with at least one unresolved
// dependency, as a map from full name to its unresolved reference list.
func (g *Graph) UnresolvedAll() map[string][]string {
	return g.unresolved
}

// DetectCycle reports a cycle in the graph, if one exists, as the
// sequence of vertices from the re-encountered vertex to the current
// one. Traversal visits nodes in lexicographic order for deterministic
// error messages.
func (g *Graph) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	stack := make([]string, 0)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		stack = append(stack, node)

		deps := append([]string(nil), g.edges[node]...)
		sort.Strings(deps)

		for _, dep := range deps {
			switch color[dep] {
			case gray:
				// Found a back-edge: the cycle is the stack slice from
				// dep's position to the end.
				for i, v := range stack {
					if v == dep {
						cycle := make([]string, len(stack[i:]))
						copy(cycle, stack[i:])
						return cycle
					}
				}
				return []string{dep, node}
			case white:
				if cycle := dfs(dep); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[node] = black
		return nil
	}

	for _, node := range g.Nodes() {
		if color[node] == white {
			if cycle := dfs(node); cycle != nil {
				return cycle
			}
		}
	}

	return nil
}

// TopologicalSort returns task full names in topological order
// (dependencies before dependents), ties broken lexicographically.
// Returns an error wrapping the detected cycle if the graph is cyclic.
func (g *Graph) TopologicalSort() ([]string, error) {
	if cycle := g.DetectCycle(); cycle != nil {
		return nil, fmt.Errorf("cannot sort graph with cycle: %v", cycle)
	}

	inDegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		inDegree[id] = len(g.edges[id])
	}

	queue := make([]string, 0)
	for id := range g.nodes {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		sort.Strings(queue)
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		dependents := append([]string(nil), g.reverseEdges[node]...)
		sort.Strings(dependents)
		for _, dependent := range dependents {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	return result, nil
}
