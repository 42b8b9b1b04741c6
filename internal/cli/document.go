package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"

	"github.com/hupe1980/cfgsync/internal/codec"
	"github.com/hupe1980/cfgsync/internal/config"
	"github.com/hupe1980/cfgsync/internal/shopping"
)

const defaultPermissions os.FileMode = 0o644

// documentSettings is the resolved encoding and file mode for a document.
type documentSettings struct {
	codec codec.Codec
	perm  os.FileMode
}

// resolveDocument picks the codec and permissions for path. An explicit
// --format wins over a config file override, which wins over the file
// extension. Unknown formats are usage errors.
func resolveDocument(cfg *config.Config, path, format string) (documentSettings, error) {
	override, _ := cfg.Files.Lookup(path)

	if format == "" {
		format = override.Format
	}

	c, err := codec.Resolve(format, path)
	if err != nil {
		return documentSettings{}, &ExitError{Code: 2, Err: err}
	}

	if _, ok := c.(codec.JSON); ok && override.Indent != "" {
		c = codec.JSON{Indent: override.Indent}
	}

	perm := defaultPermissions
	if mode, ok := override.FileMode(); ok {
		perm = mode
	}

	return documentSettings{codec: c, perm: perm}, nil
}

// useColor reports whether ANSI colors should be written to w. Colors need
// a terminal (or CLICOLOR_FORCE) and are disabled by --no-color or NO_COLOR.
func useColor(w io.Writer, noColor bool) bool {
	if noColor {
		return false
	}

	return termenv.NewOutput(w).EnvColorProfile() != termenv.Ascii
}

// printList writes a human-readable rendering of l.
func printList(w io.Writer, l shopping.List) {
	names := l.Names()
	if len(names) == 0 {
		_, _ = fmt.Fprintln(w, "(empty list)")
	}

	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}

	for _, n := range names {
		_, _ = fmt.Fprintf(w, "  %-*s  %d\n", width, n, l.Items[n])
	}

	_, _ = fmt.Fprintf(w, "%d item(s), %s, price %.2f\n",
		l.Total(), pluralize(len(names), "kind", "kinds"), l.Price)
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}

	return fmt.Sprintf("%d %s", n, many)
}

// summarize renders l on one line, e.g. "apple=2 banana=1".
func summarize(l shopping.List) string {
	names := l.Names()
	if len(names) == 0 {
		return "(empty)"
	}

	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", n, l.Items[n]))
	}

	return strings.Join(parts, " ")
}
