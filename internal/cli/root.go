// Package cli implements the cobra command tree for cfgsync.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/cfgsync/internal/config"
	"github.com/hupe1980/cfgsync/internal/logging"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	cmd := NewRootCommand()

	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		return 1
	}

	return 0
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var (
		cfgFile  string
		logClose io.Closer
	)

	cmd := &cobra.Command{
		Use:   "cfgsync",
		Short: "Keep an in-memory document and a file on disk in sync",
		Long: `cfgsync keeps a typed in-memory document consistent with a text file
on disk, in both directions.

Edits made by the application are encoded and written to the file. Edits
made to the file by any other program (an editor, a script, a config
management tool) are picked up once the file is completely written, parsed,
and delivered to the application. Files that fail to parse keep the last
good value and report the error until they are fixed.

The sample document is a shopping list of item counts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			logger, closer := logging.Setup(cfg)
			logClose = closer

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("logFormat", cfg.LogFormat),
				slog.String("configFile", cfg.ConfigFile),
				slog.Duration("debounce", cfg.Debounce),
			)

			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if logClose == nil {
				return nil
			}

			return logClose.Close()
		},
	}

	// Global persistent flags.
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .cfgsync.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")
	pf.String("log-file", "", "write logs to a rotated file instead of stderr")
	pf.Int("log-max-size", config.DefaultLogMaxSize, "log file size in megabytes before rotation")
	pf.Int("log-max-backups", config.DefaultLogMaxBackups, "number of rotated log files to keep")
	pf.Duration("debounce", config.DefaultDebounce, "quiet period before a changed file is read")

	// Flag parsing errors return exit code 2.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Err: err}
	})

	// Register subcommands.
	cmd.AddCommand(
		newRunCommand(),
		newInitCommand(),
		newShowCommand(),
		newVersionCommand(),
		newCompletionCommand(),
	)

	return cmd
}
