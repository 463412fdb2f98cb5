package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/quantmesh/finmcp/internal/logger"
)

var log = logger.ForComponent("watcher")

// ignorePatterns filters out editor temp files and swap artifacts so a
// save-via-rename only fires once, for the final name.
var ignorePatterns = []string{
	"**/*.swp",
	"**/*.swx",
	"**/*~",
	"**/.#*",
	"**/#*#",
	"**/*.tmp",
}

// ConfigWatcher watches one config file and invokes the reload callback
// after changes settle. Editors typically write via rename, so the
// watch is on the parent directory rather than the file itself.
type ConfigWatcher struct {
	path      string
	window    time.Duration
	onChange  func()
	fsWatcher *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer

	cancel context.CancelFunc
	done   chan struct{}
}

func NewConfigWatcher(path string, window time.Duration, onChange func()) (*ConfigWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return &ConfigWatcher{
		path:      abs,
		window:    window,
		onChange:  onChange,
		fsWatcher: fsWatcher,
		done:      make(chan struct{}),
	}, nil
}

func (w *ConfigWatcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx)
}

func (w *ConfigWatcher) loop(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.schedule()
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn("watch error", "error", err)
		}
	}
}

func (w *ConfigWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil || abs != w.path {
		return false
	}

	for _, pattern := range ignorePatterns {
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(abs)); ok {
			return false
		}
	}
	return true
}

// schedule resets the debounce timer. Bursts of events within the window
// collapse into one reload.
func (w *ConfigWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.window, func() {
		log.Info("config changed, reloading", "path", w.path)
		w.onChange()
	})
}

func (w *ConfigWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.fsWatcher.Close()
	<-w.done

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
}
