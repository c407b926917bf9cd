package notify

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/josephlewis42/pipeshell/core/logger"
	"go.uber.org/zap"
)

// Watcher delivers paths sent to a drop file.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	paths   chan string
	log     *zap.Logger
}

// NewWatcher starts watching the directory holding dropPath. The file itself
// may not exist yet.
func NewWatcher(dropPath string, log *zap.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(dropPath)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Watcher{
		path:    abs,
		watcher: watcher,
		paths:   make(chan string, 1),
		log:     log,
	}, nil
}

// Paths receives each path taken from the drop file. If the receiver falls
// behind, only the newest path is kept.
func (w *Watcher) Paths() <-chan string {
	return w.paths
}

// Run handles file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("drop file watcher error", logger.Event(logger.EventWatcherFailure), zap.Error(err))

		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	path, err := Take(w.path)
	if err != nil {
		w.log.Warn("reading drop file", logger.Event(logger.EventWatcherFailure), zap.Error(err))
		return
	}
	if path == "" {
		return
	}

	w.deliver(path)
}

// deliver replaces any undelivered path with path.
func (w *Watcher) deliver(path string) {
	select {
	case w.paths <- path:
	default:
		select {
		case <-w.paths:
		default:
		}
		w.paths <- path
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
