package task

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// doneMarkerName is the completion marker file written by the executor
// and by mark-done.
const doneMarkerName = "done.md"

// runScriptNames are checked, in order, to classify a task as MACHINE.
var runScriptNames = []string{"run.sh", "run.py"}

// aiPromptName classifies a task as AI when present (and no run script
// exists).
const aiPromptName = "prompt.yaml"

// FindWorkspaceRoot walks upward from startDir looking for a directory
// that contains a "projects" subdirectory or a nested "workspace"
// directory. The first ancestor (including startDir) that matches wins.
func FindWorkspaceRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if isDir(filepath.Join(dir, "projects")) {
			return dir, nil
		}
		if isDir(filepath.Join(dir, "workspace", "projects")) {
			return filepath.Join(dir, "workspace"), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no projects/ directory found above %s", ErrWorkspaceNotFound, startDir)
		}
		dir = parent
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// listSubdirs lists immediate subdirectories of dir, excluding
// dot-prefixed names, in sorted order.
func listSubdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if len(e.Name()) > 0 && e.Name()[0] == '.' {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Mode selects discovery's error-handling behavior.
type Mode int

const (
	// ModeStrict raises on the first structural error.
	ModeStrict Mode = iota
	// ModeSafe returns partial results plus a collected error list.
	ModeSafe
)

// DiscoverResult is the outcome of a safe-mode discovery run.
type DiscoverResult struct {
	Workspace *Workspace
	Errors    []error
}

// Discover loads a full Workspace rooted at root, classifying every
// task and computing its provisional (pre-readiness) status.
//
// In ModeStrict, the first error aborts discovery. In ModeSafe, any
// failure to load or validate a single task's instruction.yaml is
// recorded and that task is skipped while the rest of its project still
// loads, whichever field the failure is in; only a failure to list a
// project's task directories drops the whole project.
func Discover(root string, mode Mode) (*DiscoverResult, error) {
	projectsDir := filepath.Join(root, "projects")

	ws := &Workspace{
		Root:        root,
		ProjectsDir: projectsDir,
	}
	if isDir(filepath.Join(root, "templates")) {
		ws.TemplatesDir = filepath.Join(root, "templates")
	}
	if isDir(filepath.Join(root, "schemas")) {
		ws.SchemasDir = filepath.Join(root, "schemas")
	}

	result := &DiscoverResult{Workspace: ws}

	projectNames, err := listSubdirs(projectsDir)
	if err != nil {
		if mode == ModeStrict {
			return nil, fmt.Errorf("listing projects: %w", err)
		}
		result.Errors = append(result.Errors, fmt.Errorf("listing projects: %w", err))
		return result, nil
	}

	for _, pname := range projectNames {
		projectPath := filepath.Join(projectsDir, pname)
		project, perr := discoverProject(pname, projectPath, mode, &result.Errors)
		if perr != nil {
			if mode == ModeStrict {
				return nil, perr
			}
			result.Errors = append(result.Errors, perr)
			continue
		}
		ws.Projects = append(ws.Projects, project)
	}

	if cycle := detectCycle(ws.AllTasks()); cycle != nil {
		cycleErr := &CircularDependencyError{Cycle: cycle}
		if mode == ModeStrict {
			return nil, cycleErr
		}
		result.Errors = append(result.Errors, cycleErr)
	}

	return result, nil
}

// detectCycle runs a three-colour depth-first search over the
// workspace-wide dependency graph implied by tasks, resolving each
// dependency string the same way the graph package's
// ResolveDependency does (a "/"-containing reference is a full name,
// otherwise it resolves within the owning task's project). It mirrors
// internal/graph's DetectCycle algorithm; it cannot call that package
// directly, since graph depends on task and importing it back here
// would form an import cycle. Traversal visits nodes in lexicographic
// full-name order for deterministic cycle reporting.
func detectCycle(tasks []*Task) []string {
	byFullName := make(map[string]*Task, len(tasks))
	for _, t := range tasks {
		byFullName[t.FullName()] = t
	}

	names := make([]string, 0, len(tasks))
	for name := range byFullName {
		names = append(names, name)
	}
	sort.Strings(names)

	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int, len(names))
	stack := make([]string, 0)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		stack = append(stack, node)

		t := byFullName[node]
		deps := make([]string, 0, len(t.Instruction.Dependencies))
		for _, dep := range t.Instruction.Dependencies {
			deps = append(deps, resolveDependencyRef(dep, t.Project))
		}
		sort.Strings(deps)

		for _, dep := range deps {
			if _, known := byFullName[dep]; !known {
				continue
			}
			switch color[dep] {
			case gray:
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

	for _, name := range names {
		if color[name] == white {
			if cycle := dfs(name); cycle != nil {
				return cycle
			}
		}
	}

	return nil
}

// resolveDependencyRef resolves a dependency string against an owning
// project, matching internal/graph.ResolveDependency: a "/"-containing
// reference is already a full name, otherwise it resolves within
// owningProject.
func resolveDependencyRef(ref, owningProject string) string {
	for _, r := range ref {
		if r == '/' {
			return ref
		}
	}
	return owningProject + "/" + ref
}

func discoverProject(name, path string, mode Mode, errs *[]error) (*Project, error) {
	taskNames, err := listSubdirs(path)
	if err != nil {
		return nil, fmt.Errorf("project %s: listing tasks: %w", name, err)
	}

	project := &Project{Name: name, Path: path}

	for _, tname := range taskNames {
		taskPath := filepath.Join(path, tname)
		t, err := discoverTask(name, tname, taskPath)
		if err != nil {
			if mode == ModeStrict {
				return nil, fmt.Errorf("project %s: %w", name, err)
			}
			*errs = append(*errs, &DiscoveryError{Project: name, Task: tname, Err: err})
			continue
		}
		project.Tasks = append(project.Tasks, t)
	}

	return project, nil
}

func discoverTask(project, name, path string) (*Task, error) {
	instrPath := filepath.Join(path, instructionFileName)
	instr, err := LoadInstruction(instrPath)
	if err != nil {
		return nil, err
	}
	if verr := instr.Validate(); verr != nil {
		return nil, &MalformedInstructionError{Path: instrPath, Err: verr}
	}

	t := &Task{
		Project:     project,
		Name:        name,
		Path:        path,
		Instruction: *instr,
		TaskType:    classify(path),
	}

	t.Instruction.TaskType = t.TaskType

	if isDone(path) {
		t.Status = StatusCompleted
	} else {
		// Provisional: refined by the readiness evaluator.
		t.Status = StatusReady
	}

	return t, nil
}

// classify determines a task's execution strategy by file presence,
// MACHINE if run.sh or run.py exists, else AI if
// prompt.yaml exists, else HUMAN.
func classify(taskDir string) Type {
	for _, name := range runScriptNames {
		if fileExists(filepath.Join(taskDir, name)) {
			return TypeMachine
		}
	}
	if fileExists(filepath.Join(taskDir, aiPromptName)) {
		return TypeAI
	}
	return TypeHuman
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// isDone reports whether a task directory carries its completion marker.
func isDone(taskDir string) bool {
	return fileExists(filepath.Join(taskDir, doneMarkerName))
}

// DoneMarkerPath returns the path to a task's completion marker file.
func DoneMarkerPath(taskDir string) string {
	return filepath.Join(taskDir, doneMarkerName)
}
