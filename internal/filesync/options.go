package filesync

import (
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/cfgsync/internal/watch"
)

// Option configures a File or a Synchronizer.
type Option func(*options)

type options struct {
	debounce time.Duration
	perm     os.FileMode
	logger   *slog.Logger
}

func newOptions(opts []Option) options {
	o := options{
		debounce: watch.DefaultDebounce,
		perm:     0o644,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithDebounce sets the quiet period after the last write event before the
// file is re-read. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithPermissions overrides the file mode used when saving (default 0644).
func WithPermissions(perm os.FileMode) Option {
	return func(o *options) {
		o.perm = perm
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
