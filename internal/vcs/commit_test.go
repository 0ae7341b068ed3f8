package vcs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrentCommit_UnknownOutsideGitRepo(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, Unknown, CurrentCommit(context.Background(), dir))
}

func TestCurrentCommit_NeverErrors(t *testing.T) {
	// CurrentCommit has no error return; confirm it does not panic when
	// git itself cannot run meaningfully (a nonexistent directory).
	assert.NotPanics(t, func() {
		CurrentCommit(context.Background(), "/nonexistent/path/for/sure")
	})
}
