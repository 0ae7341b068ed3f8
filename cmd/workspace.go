package cmd

import (
	"fmt"
	"os"

	"github.com/f43a9a/warifuri/internal/config"
	"github.com/f43a9a/warifuri/internal/graph"
	"github.com/f43a9a/warifuri/internal/ready"
	"github.com/f43a9a/warifuri/internal/task"
)

// loadWorkspace discovers the workspace rooted above the current
// directory and loads warifuri's own configuration alongside it. Every
// subcommand that touches tasks starts here.
func loadWorkspace() (*task.Workspace, *config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("get working directory: %w", err)
	}

	root, err := task.FindWorkspaceRoot(cwd)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.LoadConfigWithFile(root, GetConfigFile())
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	mode := task.ModeSafe
	if cfg.Discover.Mode == "strict" {
		mode = task.ModeStrict
	}

	result, err := task.Discover(root, mode)
	if err != nil {
		return nil, nil, err
	}
	if len(result.Errors) > 0 && mode == task.ModeStrict {
		return nil, nil, fmt.Errorf("discovery failed: %v", result.Errors[0])
	}

	return result.Workspace, cfg, nil
}

// buildGraph constructs the dependency graph for every task in ws.
func buildGraph(ws *task.Workspace) *graph.Graph {
	return graph.Build(ws.AllTasks())
}

// evaluateReadiness runs readiness evaluation for every task in ws,
// keyed by full task name.
func evaluateReadiness(ws *task.Workspace, g *graph.Graph) map[string]*ready.Evaluation {
	return ready.Evaluate(ws.AllTasks(), g, ws.ProjectsDir)
}
