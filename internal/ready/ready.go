// Package ready implements the readiness evaluator: the
// single source of truth for whether a task's dependencies and declared
// inputs are satisfied.
package ready

import (
	"sort"

	"github.com/f43a9a/warifuri/internal/graph"
	"github.com/f43a9a/warifuri/internal/pathsafe"
	"github.com/f43a9a/warifuri/internal/task"
)

// Reason explains why a task is not ready.
type Reason struct {
	// Kind is one of "completed", "unresolved-dependency",
	// "dependency-pending", "input-missing".
	Kind string
	// Detail is a human-readable diagnostic, e.g. the unresolved
	// reference or the missing input path.
	Detail string
}

// Evaluation is the readiness result for a single task.
type Evaluation struct {
	Task   *task.Task
	Ready  bool
	Reason *Reason // nil when Ready is true
}

// Evaluate computes readiness for every task in the workspace, per
// A task is READY when it is not already completed, every
// dependency resolves to a known, completed task, and every declared
// input file exists on disk. Evaluation is pure and side-effect-free
// and may be called repeatedly.
func Evaluate(tasks []*task.Task, g *graph.Graph, projectsDir string) map[string]*Evaluation {
	byFullName := make(map[string]*task.Task, len(tasks))
	for _, t := range tasks {
		byFullName[t.FullName()] = t
	}

	results := make(map[string]*Evaluation, len(tasks))
	for _, t := range tasks {
		results[t.FullName()] = evaluateOne(t, g, byFullName, projectsDir)
	}
	return results
}

func evaluateOne(t *task.Task, g *graph.Graph, byFullName map[string]*task.Task, projectsDir string) *Evaluation {
	eval := &Evaluation{Task: t}

	if t.IsCompleted() {
		eval.Ready = false
		eval.Reason = &Reason{Kind: "completed", Detail: "task already completed"}
		return eval
	}

	if unresolved := g.Unresolved(t.FullName()); len(unresolved) > 0 {
		eval.Ready = false
		eval.Reason = &Reason{Kind: "unresolved-dependency", Detail: unresolved[0]}
		return eval
	}

	for _, dep := range g.Dependencies(t.FullName()) {
		depTask, ok := byFullName[dep]
		if !ok || !depTask.IsCompleted() {
			eval.Ready = false
			eval.Reason = &Reason{Kind: "dependency-pending", Detail: dep}
			return eval
		}
	}

	for _, input := range t.Instruction.Inputs {
		result, err := pathsafe.Resolve(input, t.Path, projectsDir)
		if err != nil {
			eval.Ready = false
			eval.Reason = &Reason{Kind: "input-missing", Detail: err.Error()}
			return eval
		}
		if !statExists(result.Path) {
			eval.Ready = false
			eval.Reason = &Reason{Kind: "input-missing", Detail: input}
			return eval
		}
	}

	eval.Ready = true
	return eval
}

// ReadySet returns the full names of ready tasks in an order consistent
// with the dependency graph's topological order, ties broken by full
// name.
func ReadySet(tasks []*task.Task, g *graph.Graph, projectsDir string) []string {
	evals := Evaluate(tasks, g, projectsDir)

	order, err := g.TopologicalSort()
	if err != nil {
		// Cyclic graph: fall back to lexicographic order over ready tasks
		// only; validate (outside this package) is responsible for
		// surfacing the cycle itself.
		var ready []string
		for name, e := range evals {
			if e.Ready {
				ready = append(ready, name)
			}
		}
		sort.Strings(ready)
		return ready
	}

	var result []string
	for _, name := range order {
		if e, ok := evals[name]; ok && e.Ready {
			result = append(result, name)
		}
	}
	return result
}
