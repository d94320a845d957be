// Package watcher wraps fsnotify into a debounced batch producer. Raw events
// are coalesced for a configurable latency and delivered as one batch of
// modified/added/removed absolute paths.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/moby/patternmatcher"
	"github.com/sirupsen/logrus"

	"github.com/jamesdabbs/guard/errors"
	"github.com/jamesdabbs/guard/logging"
	"github.com/jamesdabbs/guard/plugin"
)

// DefaultLatency is the batching interval used when none is configured.
const DefaultLatency = 250 * time.Millisecond

// defaultIgnores are always excluded from watching.
var defaultIgnores = []string{".git", ".guard"}

// Config describes what to watch.
type Config struct {
	// Roots are the absolute directories to observe recursively.
	Roots []string

	// Ignores are path patterns excluded from watching and batching.
	Ignores []string

	// Latency is the debounce interval for batching raw events.
	Latency time.Duration
}

// Watcher observes a fixed set of roots and delivers debounced change
// batches to a single callback. The root set is immutable after New.
type Watcher struct {
	fs       *fsnotify.Watcher
	roots    []string
	latency  time.Duration
	ignores  *patternmatcher.PatternMatcher
	callback func(plugin.Batch)
	logger   *logrus.Entry

	paused atomic.Bool

	mu      sync.Mutex
	pending plugin.Batch
	timer   *time.Timer
	flush   chan struct{}
}

// New creates a watcher over cfg.Roots. The callback is invoked from the
// watcher's own goroutine whenever a debounced batch is ready.
func New(cfg Config, callback func(plugin.Batch)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeWatchFailed, "failed to create watch backend")
	}

	latency := cfg.Latency
	if latency <= 0 {
		latency = DefaultLatency
	}

	matcher, err := patternmatcher.New(append(append([]string{}, defaultIgnores...), cfg.Ignores...))
	if err != nil {
		fsw.Close()
		return nil, errors.ConfigInvalid("bad ignore pattern: " + err.Error())
	}

	w := &Watcher{
		fs:       fsw,
		roots:    cfg.Roots,
		latency:  latency,
		ignores:  matcher,
		callback: callback,
		logger:   logging.NewLogger("watcher"),
		flush:    make(chan struct{}, 1),
	}

	for _, root := range cfg.Roots {
		if err := w.addRecursive(root); err != nil {
			fsw.Close()
			return nil, errors.Wrap(err, errors.ErrCodeWatchFailed, "failed to watch "+root)
		}
	}

	return w, nil
}

// Roots returns the watched roots in registration order.
func (w *Watcher) Roots() []string {
	return w.roots
}

// Pause suppresses batch delivery until Resume. Events arriving while paused
// are dropped, matching the semantics of stopping the subscription.
func (w *Watcher) Pause() {
	w.paused.Store(true)
	w.mu.Lock()
	w.pending = plugin.Batch{}
	w.mu.Unlock()
}

// Resume re-enables batch delivery.
func (w *Watcher) Resume() {
	w.paused.Store(false)
}

// Run processes events until the context is cancelled. It owns the fsnotify
// watcher and closes it on exit.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Errorf("Watch backend error: %v", err)
		case <-w.flush:
			w.deliver()
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.ignored(event.Name) {
		return
	}

	w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)

	// New directories need their own watches; fsnotify is not recursive.
	// Watch maintenance happens even while paused, otherwise subtrees
	// created during a pause stay invisible after Resume.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warnf("Failed to watch new directory %s: %v", event.Name, err)
			}
		}
	}

	// Pause suppresses batching only.
	if w.paused.Load() {
		return
	}

	w.mu.Lock()
	switch {
	case event.Op&fsnotify.Create != 0:
		w.pending.Added = appendUnique(w.pending.Added, event.Name)
	case event.Op&fsnotify.Write != 0:
		w.pending.Modified = appendUnique(w.pending.Modified, event.Name)
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.pending.Removed = appendUnique(w.pending.Removed, event.Name)
	default:
		w.mu.Unlock()
		return
	}

	// Reset the debounce timer so rapid event storms produce one batch.
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.latency, func() {
		select {
		case w.flush <- struct{}{}:
		default:
		}
	})
	w.mu.Unlock()
}

func (w *Watcher) deliver() {
	w.mu.Lock()
	batch := w.pending
	w.pending = plugin.Batch{}
	w.mu.Unlock()

	if batch.Empty() || w.paused.Load() {
		return
	}
	w.callback(batch)
}

func (w *Watcher) ignored(path string) bool {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || !filepath.IsLocal(rel) {
			continue
		}
		if ok, err := w.ignores.MatchesOrParentMatches(rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

func appendUnique(paths []string, p string) []string {
	for _, existing := range paths {
		if existing == p {
			return paths
		}
	}
	return append(paths, p)
}
