// Package watcher provides file system watching with debouncing for the
// jj repository's operation store. Changes made by any jj process (the
// CLI, another client, a background snapshot) land in .jj/repo, so a
// debounced watch there is enough to know the visible history moved.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tatami-vcs/tatami/internal/log"
	"github.com/tatami-vcs/tatami/internal/pubsub"
)

// EventType distinguishes repo-changed notifications from watch failures.
type EventType int

const (
	// RepoChanged means the operation store was modified and the log
	// should be refetched.
	RepoChanged EventType = iota
	// WatchError carries a non-fatal fsnotify error.
	WatchError
)

// Event is the payload published through the broker.
type Event struct {
	Type EventType
	Err  error
}

// Watcher monitors a jj repository for changes and publishes debounced
// notifications.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	repoDir   string
	debounce  time.Duration
	broker    *pubsub.Broker[Event]
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	// Root is the workspace root containing the .jj directory.
	Root        string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(root string) Config {
	return Config{
		Root:        root,
		DebounceDur: 500 * time.Millisecond,
	}
}

// New creates a new repository watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	debounce := cfg.DebounceDur
	if debounce <= 0 {
		debounce = DefaultConfig(cfg.Root).DebounceDur
	}

	return &Watcher{
		fsWatcher: fsw,
		repoDir:   filepath.Join(cfg.Root, ".jj", "repo"),
		debounce:  debounce,
		broker:    pubsub.NewBroker[Event](),
		done:      make(chan struct{}),
	}, nil
}

// Broker exposes the event broker for subscription.
func (w *Watcher) Broker() *pubsub.Broker[Event] {
	return w.broker
}

// Start begins watching the repository's operation store. Notifications
// are published to the broker after the debounce window closes.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(w.repoDir); err != nil {
		return fmt.Errorf("watching %s: %w", w.repoDir, err)
	}

	// fsnotify is not recursive; cover the store's existing
	// subdirectories too. New ones are picked up from create events.
	entries, err := os.ReadDir(w.repoDir)
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			sub := filepath.Join(w.repoDir, entry.Name())
			if err := w.fsWatcher.Add(sub); err != nil {
				log.Warn(log.CatWatcher, "Could not watch subdirectory", "dir", sub, "error", err)
			}
		}
	}

	log.Info(log.CatWatcher, "Watching repository", "dir", w.repoDir, "debounce", w.debounce)
	go w.loop()

	return nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fsWatcher.Close()
	w.broker.Close()
	return err
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if !isRelevantEvent(event) {
				continue
			}

			// A new subdirectory in the operation store needs its own
			// watch entry.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.fsWatcher.Add(event.Name)
				}
			}

			// Reset or start debounce timer
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				pending = true
			} else {
				if !timer.Stop() {
					// Drain the timer channel if it already fired
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
				pending = true
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				log.Debug(log.CatWatcher, "Repository changed")
				w.broker.Publish(Event{Type: RepoChanged})
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "Watch error", err)
			w.broker.Publish(Event{Type: WatchError, Err: err})

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent checks if the event should trigger a refresh.
func isRelevantEvent(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
