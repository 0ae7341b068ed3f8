// Package atomicio provides the crash-safe, race-safe file primitives
// every mutation in warifuri is built on: atomic writes,
// exclusive file locks, and a bounded-retry recursive delete.
package atomicio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// WriteFile writes data to path atomically: it writes to a sibling
// temporary file in the same directory, fsyncs it, then renames it onto
// the target. The temporary file is removed on any failure. Parent
// directories are created as needed.
//
// A rename across filesystems fails with EXDEV rather than succeeding
// non-atomically; per spec.md §9 that case is expected when a caller
// publishes from a staging directory on another filesystem, so it is
// handled by falling back to a same-directory copy-and-remove instead
// of surfacing a raw rename error. Callers that need this fallback
// across directories, not just within one, should route through
// CopyFileAtomic, which always stages its temp file beside the final
// destination.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	succeeded := false
	defer func() {
		if !succeeded {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := renameOrCopy(tmpPath, path); err != nil {
		return fmt.Errorf("publish temp file to %s: %w", path, err)
	}

	succeeded = true
	return nil
}

// renameOrCopy renames tmpPath onto path, falling back to a
// read-write-remove copy when the rename fails with EXDEV (tmpPath and
// path on different filesystems/mounts).
func renameOrCopy(tmpPath, path string) error {
	err := os.Rename(tmpPath, path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if copyErr := copyThenRemove(tmpPath, path); copyErr != nil {
		return copyErr
	}
	return nil
}

func copyThenRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("reopen temp file for cross-device copy: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat temp file: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination for cross-device copy: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("cross-device copy: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("sync cross-device copy: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close cross-device copy: %w", err)
	}

	_ = os.Remove(src)
	return nil
}

// WriteFileString is a convenience wrapper over WriteFile for string content.
func WriteFileString(path, content string, perm os.FileMode) error {
	return WriteFile(path, []byte(content), perm)
}

// CopyFileAtomic copies src to dst atomically, preserving dst's parent
// directory creation semantics. Used to publish executor outputs: the
// copy lands in a sibling temp file inside dst's directory, then is
// renamed into place, so a reader never observes a half-written file
//.
func CopyFileAtomic(src, dst string, perm os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read source %s: %w", src, err)
	}
	return WriteFile(dst, data, perm)
}
