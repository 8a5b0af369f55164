package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var changes []string
	w, err := New(func(d string) {
		mu.Lock()
		changes = append(changes, d)
		mu.Unlock()
	}, nil)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Add(dir))

	// A publish writing several files should collapse into one callback.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "f"+string(rune('a'+i))), []byte("x"), 0o644))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changes) >= 1
	}, 3*time.Second, 20*time.Millisecond)

	time.Sleep(2 * debounceDuration)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{dir}, changes)
}

func TestWatcher_AddTwiceIsNoOp(t *testing.T) {
	dir := t.TempDir()
	w, err := New(func(string) {}, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Add(dir))
	require.NoError(t, w.Add(dir))
}

func TestWatcher_RemoveStopsCallbacks(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	fired := 0
	w, err := New(func(string) {
		mu.Lock()
		fired++
		mu.Unlock()
	}, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Add(dir))
	require.NoError(t, w.Remove(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), []byte("x"), 0o644))
	time.Sleep(3 * debounceDuration)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, fired)
}

func TestWatcher_CloseIdempotent(t *testing.T) {
	w, err := New(func(string) {}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
