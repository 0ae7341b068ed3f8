package executor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// entryPoint names the discovered script and the interpreter invocation
// that runs it.
type entryPoint struct {
	script string
	argv   []string
}

// discoverEntryPoint looks for run.sh first, then run.py, inside
// stagingDir. Absence of both returns an error, which ExecuteMachine
// wraps as ErrNoScript.
func discoverEntryPoint(stagingDir string) (*entryPoint, error) {
	shPath := filepath.Join(stagingDir, "run.sh")
	if fi, err := os.Stat(shPath); err == nil && !fi.IsDir() {
		return &entryPoint{
			script: shPath,
			argv:   []string{"bash", "-euo", "pipefail", shPath},
		}, nil
	}

	pyPath := filepath.Join(stagingDir, "run.py")
	if fi, err := os.Stat(pyPath); err == nil && !fi.IsDir() {
		return &entryPoint{
			script: pyPath,
			argv:   []string{pythonInterpreter(), pyPath},
		}, nil
	}

	return nil, fmt.Errorf("no run.sh or run.py in %s", stagingDir)
}

// pythonInterpreter prefers python3 and falls back to python.
func pythonInterpreter() string {
	if _, err := exec.LookPath("python3"); err == nil {
		return "python3"
	}
	return "python"
}

// buildEnv constructs the WARIFURI_* environment injected into every
// machine task invocation, on top of the inherited process environment.
func buildEnv(project, taskName, workspaceRoot string) []string {
	env := os.Environ()
	env = append(env,
		"WARIFURI_PROJECT_NAME="+project,
		"WARIFURI_TASK_NAME="+taskName,
		"WARIFURI_WORKSPACE_DIR="+workspaceRoot,
		"WARIFURI_INPUT_DIR=input",
		"WARIFURI_OUTPUT_DIR=output",
	)
	return env
}
