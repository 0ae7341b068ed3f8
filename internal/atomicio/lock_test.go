package atomicio

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLock_AcquireAndRelease(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "task.lock")

	l := NewLock(path)
	require.NoError(t, l.Acquire(time.Second))
	require.NoError(t, l.Release())

	// Can be re-acquired after release.
	require.NoError(t, l.Acquire(time.Second))
	require.NoError(t, l.Release())
}

func TestLock_SecondAcquireTimesOut(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "task.lock")

	first := NewLock(path)
	require.NoError(t, first.Acquire(time.Second))
	defer first.Release()

	second := NewLock(path)
	err := second.Acquire(100 * time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLockHeld))
}

func TestLock_AcquireSucceedsAfterRelease(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "task.lock")

	first := NewLock(path)
	require.NoError(t, first.Acquire(time.Second))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(50 * time.Millisecond)
		_ = first.Release()
	}()

	second := NewLock(path)
	require.NoError(t, second.Acquire(2*time.Second))
	wg.Wait()
	require.NoError(t, second.Release())
}

func TestHeldPID(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "task.lock")

	l := NewLock(path)
	require.NoError(t, l.Acquire(time.Second))
	defer l.Release()

	pid, ok := HeldPID(path)
	assert.True(t, ok)
	assert.Greater(t, pid, 0)
}

func TestHeldPID_MissingFile(t *testing.T) {
	root := t.TempDir()
	_, ok := HeldPID(filepath.Join(root, "nope.lock"))
	assert.False(t, ok)
}
