package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "main.rs")
	other := filepath.Join(dir, "other.rs")
	require.NoError(t, os.WriteFile(watched, []byte("fn a() {}"), 0644))
	require.NoError(t, os.WriteFile(other, []byte(""), 0644))

	changed := make(chan string, 4)
	w, err := NewWatcher([]string{watched}, func(path string) error {
		changed <- path
		return nil
	})
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0644))
	require.NoError(t, os.WriteFile(watched, []byte("fn b() {}"), 0644))

	select {
	case path := <-changed:
		abs, _ := filepath.Abs(watched)
		assert.Equal(t, abs, path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
