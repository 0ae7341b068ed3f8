package internal

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminal_BufferIsNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))
}

func TestIsTerminal_RegularFileIsNotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "not-a-tty")
	assert.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTerminal(f))
}

func TestNewColors_DisabledForNonTerminalWriter(t *testing.T) {
	var buf bytes.Buffer
	colors := NewColors(&buf)

	assert.Equal(t, "ok", colors.Success("ok"))
	assert.Equal(t, "bad", colors.Failure("bad"))
	assert.Equal(t, "warn", colors.Warn("warn"))
	assert.Equal(t, "dim", colors.Dim("dim"))
}

func TestNewColors_RespectsNoColorEvenOnATerminalLikeWriter(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	f, err := os.CreateTemp(t.TempDir(), "fake-tty")
	assert.NoError(t, err)
	defer f.Close()

	colors := NewColors(f)
	assert.Equal(t, "ok", colors.Success("ok"))
}
