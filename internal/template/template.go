// Package template expands a template project directory into a new
// project, substituting {{VARIABLE}} placeholders and skipping files
// that match a configurable set of glob patterns.
package template

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultSkipPatterns mirrors the prior tooling's default skip list:
// VCS metadata and compiled artifacts never belong in a generated project.
var DefaultSkipPatterns = []string{"*.pyc", "__pycache__", ".git", ".gitignore"}

// placeholderPattern matches "{{ VAR }}" with optional interior whitespace.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// ExpandText replaces every {{VARIABLE}} placeholder in text with its
// value from variables. Placeholders with no matching variable are
// left untouched so a missing mapping is visible in the output.
func ExpandText(text string, variables map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(placeholderPattern.FindStringSubmatch(match)[1])
		if v, ok := variables[name]; ok {
			return v
		}
		return match
	})
}

// Expand walks templateDir and recreates it under targetDir, expanding
// placeholders in every text file and skipping any path matching one
// of skipPatterns (doublestar glob syntax, matched against the path
// relative to templateDir). Binary files, and files matched by none of
// the skip patterns but not valid UTF-8, are copied byte-for-byte.
func Expand(templateDir, targetDir string, variables map[string]string, skipPatterns []string) error {
	if skipPatterns == nil {
		skipPatterns = DefaultSkipPatterns
	}

	return filepath.Walk(templateDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(templateDir, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return os.MkdirAll(targetDir, 0o755)
		}

		skip, skipErr := matchesAny(rel, skipPatterns)
		if skipErr != nil {
			return skipErr
		}
		if skip {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		dst := filepath.Join(targetDir, rel)

		if info.IsDir() {
			return os.MkdirAll(dst, info.Mode().Perm())
		}

		return expandFile(path, dst, info.Mode().Perm(), variables)
	})
}

func matchesAny(rel string, patterns []string) (bool, error) {
	slashRel := filepath.ToSlash(rel)
	base := filepath.Base(rel)
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, slashRel); err != nil {
			return false, fmt.Errorf("invalid skip pattern %q: %w", pattern, err)
		} else if ok {
			return true, nil
		}
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true, nil
		}
	}
	return false, nil
}

func expandFile(src, dst string, perm os.FileMode, variables map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read template file %s: %w", src, err)
	}

	if !utf8.Valid(data) {
		return os.WriteFile(dst, data, perm)
	}

	expanded := ExpandText(string(data), variables)
	return os.WriteFile(dst, []byte(expanded), perm)
}
