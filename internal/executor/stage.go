package executor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/f43a9a/warifuri/internal/pathsafe"
	"github.com/f43a9a/warifuri/internal/task"
)

// stagingPrefix identifies warifuri staging directories for observability
//.
const stagingPrefix = "warifuri-exec-"

// newStagingDir creates a fresh, owner-only-permission temp directory.
func newStagingDir() (string, error) {
	base := filepath.Join(os.TempDir(), stagingPrefix+uuid.NewString())
	if err := os.Mkdir(base, 0o700); err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}
	return base, nil
}

// mirrorTask copies the entire task directory into the staging
// directory, preserving file modes (executable bits required).
func mirrorTask(taskDir, stagingDir string) error {
	return filepath.Walk(taskDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(taskDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		dst := filepath.Join(stagingDir, rel)

		if info.IsDir() {
			return os.MkdirAll(dst, info.Mode().Perm())
		}
		return copyFile(path, dst, info.Mode().Perm())
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// flattenedInputName joins a reference's path components with "_" so
// cross-project inputs present a flat surface at the staging
// directory's root and a script cannot use the reference itself to
// escape.
func flattenedInputName(ref string) string {
	clean := filepath.ToSlash(filepath.Clean(ref))
	parts := strings.Split(clean, "/")

	var kept []string
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "_")
}

// materializeInputs resolves and copies every declared input directly
// into the staging directory's root: cross-project inputs land
// flattened, same-task inputs preserve their relative layout.
func materializeInputs(t *task.Task, stagingDir, projectsDir string) error {
	for _, ref := range t.Instruction.Inputs {
		result, err := pathsafe.Resolve(ref, t.Path, projectsDir)
		if err != nil {
			return &ExecError{Task: t.FullName(), Detail: err.Error(), Kind: ErrInputMissing}
		}

		if _, statErr := os.Stat(result.Path); statErr != nil {
			return &ExecError{Task: t.FullName(), Detail: ref, Kind: ErrInputMissing}
		}

		var dst string
		if result.CrossProject {
			dst = filepath.Join(stagingDir, flattenedInputName(ref))
		} else {
			rel, relErr := filepath.Rel(t.Path, result.Path)
			if relErr != nil {
				rel = flattenedInputName(ref)
			}
			dst = filepath.Join(stagingDir, rel)
		}

		info, statErr := os.Stat(result.Path)
		if statErr != nil {
			return &ExecError{Task: t.FullName(), Detail: ref, Kind: ErrInputMissing}
		}
		if err := copyFile(result.Path, dst, info.Mode().Perm()); err != nil {
			return fmt.Errorf("materialize input %s: %w", ref, err)
		}
	}

	return nil
}
