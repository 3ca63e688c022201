package fswatch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu    sync.Mutex
		files []string
	)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, dir, func(file string) {
			mu.Lock()
			defer mu.Unlock()
			files = append(files, filepath.Base(file))
		})
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "addresses.json"), []byte("{}"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(files) > 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"addresses.json"}, files)
}
