package filesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/cfgsync/internal/cell"
	"github.com/hupe1980/cfgsync/internal/watch"
)

// ErrStopped is returned when building on a File that has been stopped.
var ErrStopped = errors.New("file handler stopped")

// File owns the raw text of one file. Its watcher publishes external edits
// and its saver persists text produced in memory.
type File struct {
	path   string
	perm   os.FileMode
	logger *slog.Logger

	raw   *cell.Cell[RawText]
	flags *Flags

	watcher *watch.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	errc    chan error

	reads  atomic.Uint64
	writes atomic.Uint64

	stopOnce sync.Once
	stopErr  error
}

// Open reads path to seed the raw text, subscribes to changes of the file
// and starts saving. The file must exist.
func Open(path string, opts ...Option) (*File, error) {
	o := newOptions(opts)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	f := &File{
		path:   path,
		perm:   o.perm,
		logger: o.logger.With(slog.String("path", path)),
		raw:    cell.New(RawText{Text: string(data), Origin: OriginDisk}),
		flags:  &Flags{},
		ctx:    ctx,
		cancel: cancel,
		errc:   make(chan error, 1),
	}

	saverRx := f.raw.Subscribe()

	w, err := watch.New(path, watch.Options{Debounce: o.debounce, Logger: o.logger}, f.onFinalized)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	f.watcher = w

	f.wg.Add(1)

	go f.runSaver(saverRx)

	return f, nil
}

// Path returns the synchronized file path.
func (f *File) Path() string {
	return f.path
}

// Text returns the latest raw text.
func (f *File) Text() string {
	return f.raw.Get().Text
}

// Subscribe returns a receiver of raw text changes.
func (f *File) Subscribe() *cell.Receiver[RawText] {
	return f.raw.Subscribe()
}

// Flags exposes the suppression handshake for inspection.
func (f *File) Flags() *Flags {
	return f.flags
}

// Reads returns how many external edits the watcher has published.
func (f *File) Reads() uint64 {
	return f.reads.Load()
}

// Writes returns how many times the saver has written the file.
func (f *File) Writes() uint64 {
	return f.writes.Load()
}

// Errors delivers the fatal write error that stopped the saver, if any.
func (f *File) Errors() <-chan error {
	return f.errc
}

// Stop halts the saver, releases the filesystem subscription and closes the
// raw text channel. A write in progress may or may not complete.
func (f *File) Stop() error {
	f.stopOnce.Do(func() {
		f.cancel()
		f.stopErr = f.watcher.Stop()
		f.raw.Close()
		f.wg.Wait()
	})

	return f.stopErr
}

func (f *File) stopped() bool {
	return f.ctx.Err() != nil
}

// publish stores text unless it equals the current raw text.
func (f *File) publish(text string, origin Origin) bool {
	return f.raw.SetIf(func(cur *RawText) bool {
		if cur.Text == text {
			return false
		}

		*cur = RawText{Text: text, Origin: origin}

		return true
	})
}

// onFinalized runs after a burst of writes to the file has settled.
func (f *File) onFinalized() {
	if f.flags.consumeEchoedWrite() {
		f.logger.Debug("ignoring echo of own write")
		return
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		f.logger.Warn("reading changed file failed", slog.String("error", err.Error()))
		return
	}

	if f.publish(string(data), OriginDisk) {
		f.reads.Add(1)
		f.logger.Debug("published external change", slog.Int("bytes", len(data)))
	}
}

func (f *File) runSaver(rx *cell.Receiver[RawText]) {
	defer f.wg.Done()

	for {
		raw, err := rx.Next(f.ctx)
		if err != nil {
			return
		}

		if raw.Origin == OriginDisk {
			continue
		}

		f.flags.armEchoedWrite()

		if err := os.WriteFile(f.path, []byte(raw.Text), f.perm); err != nil {
			err = fmt.Errorf("writing %s: %w", f.path, err)
			f.logger.Error("saving file failed", slog.String("error", err.Error()))

			select {
			case f.errc <- err:
			default:
			}

			return
		}

		f.writes.Add(1)
		f.logger.Debug("saved file", slog.Int("bytes", len(raw.Text)))
	}
}
