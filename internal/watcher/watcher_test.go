package watcher_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatami-vcs/tatami/internal/pubsub"
	"github.com/tatami-vcs/tatami/internal/watcher"
)

// newTestRepo lays out a minimal .jj/repo tree in a temp dir.
func newTestRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	opStore := filepath.Join(root, ".jj", "repo", "op_store")
	require.NoError(t, os.MkdirAll(opStore, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".jj", "repo", "op_heads"), []byte("head"), 0o644))
	return root
}

func startWatcher(t *testing.T, root string) (*watcher.Watcher, <-chan pubsub.Event[watcher.Event]) {
	t.Helper()
	w, err := watcher.New(watcher.Config{Root: root, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	events := w.Broker().Subscribe(ctx)

	require.NoError(t, w.Start(), "failed to start watcher")
	return w, events
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	root := newTestRepo(t)
	_, events := startWatcher(t, root)

	opHeads := filepath.Join(root, ".jj", "repo", "op_heads")
	// Rapid writes should coalesce into single notification
	for i := 0; i < 10; i++ {
		err := os.WriteFile(opHeads, []byte(fmt.Sprintf("head%d", i)), 0o644)
		require.NoError(t, err, "failed to write file")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case ev := <-events:
		assert.Equal(t, watcher.RepoChanged, ev.Payload.Type)
	case <-time.After(300 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	// No second notification should come quickly
	select {
	case <-events:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_SubdirectoryWrites(t *testing.T) {
	root := newTestRepo(t)
	_, events := startWatcher(t, root)

	opFile := filepath.Join(root, ".jj", "repo", "op_store", "abc123")
	require.NoError(t, os.WriteFile(opFile, []byte("op"), 0o644))

	select {
	case ev := <-events:
		assert.Equal(t, watcher.RepoChanged, ev.Payload.Type)
	case <-time.After(300 * time.Millisecond):
		t.Fatal("expected notification for operation store write")
	}
}

func TestWatcher_IgnoresWorkingCopyFiles(t *testing.T) {
	root := newTestRepo(t)
	_, events := startWatcher(t, root)

	// A write in the working copy, outside .jj/repo, is not watched.
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.rs"), []byte("fn main() {}"), 0o644))

	select {
	case <-events:
		t.Fatal("should not notify for working copy files")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_MissingRepoDir(t *testing.T) {
	w, err := watcher.New(watcher.Config{Root: t.TempDir(), DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	require.Error(t, w.Start(), "starting without a .jj/repo directory should fail")
}

func TestWatcher_Stop(t *testing.T) {
	root := newTestRepo(t)
	w, err := watcher.New(watcher.Config{Root: root, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err, "failed to create watcher")
	require.NoError(t, w.Start(), "failed to start watcher")

	done := make(chan struct{})
	go func() {
		err := w.Stop()
		assert.NoError(t, err, "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/repo")

	assert.Equal(t, "/repo", cfg.Root)
	assert.Equal(t, 500*time.Millisecond, cfg.DebounceDur)
}
