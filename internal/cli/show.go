package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/cfgsync/internal/config"
	"github.com/hupe1980/cfgsync/internal/shopping"
)

type showOptions struct {
	format string
}

func newShowCommand() *cobra.Command {
	opts := &showOptions{}

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print a shopping list file",
		Long: `Show parses <file> and prints its items, counts and price.

A file that does not parse is reported with the parser's message and exit
code 1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "", "document format: json, yaml, toml (default: by extension)")

	return cmd
}

func runShow(cmd *cobra.Command, path string, opts *showOptions) error {
	cfg := config.FromContext(cmd.Context())

	doc, err := resolveDocument(cfg, path, opts.format)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("reading %s: %w", path, err)}
	}

	var list shopping.List
	if err := doc.codec.Unmarshal(data, &list); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("parsing %s as %s: %w", path, doc.codec.Name(), err)}
	}

	printList(cmd.OutOrStdout(), list)

	return nil
}
