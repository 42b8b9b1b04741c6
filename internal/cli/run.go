package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/cfgsync/internal/cell"
	"github.com/hupe1980/cfgsync/internal/config"
	"github.com/hupe1980/cfgsync/internal/diff"
	"github.com/hupe1980/cfgsync/internal/filesync"
	"github.com/hupe1980/cfgsync/internal/logging"
	"github.com/hupe1980/cfgsync/internal/shopping"
)

type runOptions struct {
	format string
	diff   bool
	stats  bool
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Synchronize a shopping list with a file",
		Long: `Run keeps a shopping list in memory and in <file> in sync until it is
interrupted.

Every line read from standard input adds one of that item to the list, and
the new list is written to the file. Edits made to the file by other
programs are read once the file is completely written and reported, with a
unified diff when --diff is given. A file that fails to parse keeps the last
valid list; the next input line overwrites it with the current list.

Run stops on SIGINT or SIGTERM. A failed write ends the command with exit
code 1. Reaching the end of standard input does not stop synchronization.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.format, "format", "", "document format: json, yaml, toml (default: by extension)")
	f.BoolVar(&opts.diff, "diff", false, "print a unified diff for every external edit")
	f.BoolVar(&opts.stats, "stats", false, "print read and write counts on exit")

	return cmd
}

func runSync(ctx context.Context, cmd *cobra.Command, path string, opts *runOptions) error {
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	doc, err := resolveDocument(cfg, path, opts.format)
	if err != nil {
		return err
	}

	file, err := filesync.Open(path,
		filesync.WithDebounce(cfg.Debounce),
		filesync.WithPermissions(doc.perm),
		filesync.WithLogger(logger),
	)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	defer func() { _ = file.Stop() }()

	syncer, err := filesync.New[shopping.List](file, doc.codec)
	if err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("starting synchronizer: %w", err)}
	}
	defer syncer.Stop()

	// Trap SIGINT / SIGTERM for graceful shutdown.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	r := &reporter{
		out:   out,
		path:  path,
		prev:  file.Text(),
		diff:  opts.diff,
		color: useColor(out, cfg.NoColor),
		quiet: cfg.Quiet,
	}

	if !cfg.Quiet {
		_, _ = fmt.Fprintf(out, "syncing %s (format=%s, debounce=%s)\n", path, doc.codec.Name(), cfg.Debounce)
	}

	raw := forward(sigCtx, file.Subscribe())
	typed := forward(sigCtx, syncer.Subscribe())
	lines := scanLines(sigCtx, cmd.InOrStdin())

	for {
		select {
		case <-sigCtx.Done():
			if !cfg.Quiet {
				_, _ = fmt.Fprintln(out, "\nshutting down")
			}

			if opts.stats {
				_, _ = fmt.Fprintf(out, "stats: %d read(s), %d write(s)\n", file.Reads(), file.Writes())
			}

			return nil

		case writeErr := <-file.Errors():
			return &ExitError{Code: 1, Err: writeErr}

		case text, ok := <-raw:
			if !ok {
				raw = nil
				continue
			}

			r.rawChanged(text)

		case res, ok := <-typed:
			if !ok {
				typed = nil
				continue
			}

			r.listChanged(res)

		case line, ok := <-lines:
			if !ok {
				logger.Debug("standard input closed, still watching", slog.String("path", path))

				lines = nil

				continue
			}

			name := strings.TrimSpace(line)
			if name == "" {
				continue
			}

			syncer.Update(func(l *shopping.List) { l.Add(name) })
		}
	}
}

// reporter prints synchronization events for the run command.
type reporter struct {
	out   io.Writer
	path  string
	prev  string
	diff  bool
	color bool
	quiet bool
}

func (r *reporter) rawChanged(text filesync.RawText) {
	prev := r.prev
	r.prev = text.Text

	if text.Origin != filesync.OriginDisk || r.quiet {
		return
	}

	if !r.diff {
		r.printf("external edit of %s", r.path)
		return
	}

	opts := diff.DefaultOptions()
	opts.OldLabel = r.path + " (previous)"
	opts.NewLabel = r.path

	result, err := diff.Compute(prev, text.Text, opts)
	if err != nil {
		r.printf("external edit of %s (diff unavailable: %v)", r.path, err)
		return
	}

	r.printf("external edit of %s (%s)", r.path, result.Summary())
	diff.Write(r.out, result, r.color)
}

func (r *reporter) listChanged(res filesync.Result[shopping.List]) {
	if !res.IsValid() {
		// Parse errors are shown even in quiet mode.
		r.printf("invalid document: %s (keeping %s)", res.Message, summarize(res.Value))
		return
	}

	if r.quiet {
		return
	}

	r.printf("list: %s", summarize(res.Value))
}

func (r *reporter) printf(format string, args ...any) {
	now := time.Now().Format("15:04:05")
	_, _ = fmt.Fprintf(r.out, "[%s] %s\n", now, fmt.Sprintf(format, args...))
}

// forward relays the values delivered by rx onto a channel so they can be
// selected on. The channel is closed when rx is closed or ctx is done.
func forward[T any](ctx context.Context, rx *cell.Receiver[T]) <-chan T {
	ch := make(chan T)

	go func() {
		defer close(ch)

		for {
			v, err := rx.Next(ctx)
			if err != nil {
				return
			}

			select {
			case ch <- v:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}

// scanLines delivers the lines of in until EOF or ctx is done. A read
// blocked on a terminal is abandoned, not interrupted.
func scanLines(ctx context.Context, in io.Reader) <-chan string {
	ch := make(chan string)

	go func() {
		defer close(ch)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case ch <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}
