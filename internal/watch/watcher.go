package watch

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last write event before a
// file is considered finalized.
const DefaultDebounce = 50 * time.Millisecond

// Options configures the watch behaviour.
type Options struct {
	// Debounce is the quiet period before a burst of write events is
	// reported as one finalized change.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: DefaultDebounce,
		Logger:   slog.Default(),
	}
}

// Watcher reports finalized writes to a single file.
//
// The subscription is placed on the file's parent directory (non-recursive)
// and filtered by name, so editors that save by renaming a temporary file
// over the target keep being observed.
type Watcher struct {
	path      string
	fs        *fsnotify.Watcher
	debouncer *Debouncer
	logger    *slog.Logger

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopErr  error
}

// New subscribes to change notifications for path and calls onFinalized
// each time a burst of writes to it has settled. The callback runs on a
// timer goroutine, never concurrently with itself.
func New(path string, opts Options, onFinalized func()) (*Watcher, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:      abs,
		fs:        fsw,
		debouncer: NewDebouncer(opts.Debounce, onFinalized),
		logger:    opts.Logger.With(slog.String("path", abs)),
		done:      make(chan struct{}),
	}

	w.wg.Add(1)

	go w.loop()

	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Stop releases the filesystem subscription and cancels any pending
// notification. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
		w.debouncer.Stop()
		w.stopErr = w.fs.Close()
		w.wg.Wait()
	})

	return w.stopErr
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}

			if !isRelevant(event, w.path) {
				continue
			}

			w.logger.Debug("file event", slog.String("op", event.Op.String()))
			w.debouncer.Trigger()

		case watchErr, ok := <-w.fs.Errors:
			if !ok {
				return
			}

			if errors.Is(watchErr, fsnotify.ErrEventOverflow) {
				// Events were lost; assume the file may have changed.
				w.debouncer.Trigger()
			}

			w.logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// isRelevant keeps content-changing events for the watched file only.
func isRelevant(event fsnotify.Event, path string) bool {
	if event.Op == 0 {
		return false
	}

	if filepath.Clean(event.Name) != path {
		return false
	}

	// Write covers in-place saves, Create covers rename-over saves.
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
