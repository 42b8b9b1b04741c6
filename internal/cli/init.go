package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/cfgsync/internal/config"
	"github.com/hupe1980/cfgsync/internal/shopping"
)

type initOptions struct {
	format string
	force  bool
}

func newInitCommand() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init <file>",
		Short: "Create an empty shopping list file",
		Long: `Init writes an empty shopping list to <file> in the chosen encoding.

The encoding is taken from --format, then from the files section of the
config file, then from the file extension (.json, .yaml, .yml, .toml).
Any other extension is written as JSON.

An existing file is left untouched unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.format, "format", "", "document format: json, yaml, toml (default: by extension)")
	f.BoolVar(&opts.force, "force", false, "overwrite an existing file")

	return cmd
}

func runInit(cmd *cobra.Command, path string, opts *initOptions) error {
	cfg := config.FromContext(cmd.Context())

	doc, err := resolveDocument(cfg, path, opts.format)
	if err != nil {
		return err
	}

	data, err := doc.codec.Marshal(shopping.New())
	if err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("encoding empty list: %w", err)}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !opts.force {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, doc.perm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &ExitError{Code: 1, Err: fmt.Errorf("%s already exists (use --force to overwrite)", path)}
		}

		return &ExitError{Code: 1, Err: fmt.Errorf("creating %s: %w", path, err)}
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return &ExitError{Code: 1, Err: fmt.Errorf("writing %s: %w", path, err)}
	}

	if err := f.Close(); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("writing %s: %w", path, err)}
	}

	if !cfg.Quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", path, doc.codec.Name())
	}

	return nil
}
