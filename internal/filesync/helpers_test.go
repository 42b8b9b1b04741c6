package filesync

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testDebounce = 20 * time.Millisecond
	waitFor      = 3 * time.Second
	tick         = 10 * time.Millisecond
)

// shoppingList mirrors the sample document used by the command line driver.
type shoppingList struct {
	Items map[string]int `json:"items" toml:"items"`
	Price float64        `json:"price" toml:"price"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTemp creates name inside a fresh temp dir with content.
func writeTemp(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

// openFile opens path with test-friendly options and stops it on cleanup.
func openFile(t *testing.T, path string) *File {
	t.Helper()

	f, err := Open(path, WithDebounce(testDebounce), WithLogger(discardLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Stop() })

	return f
}

// openSync opens a File and a Synchronizer for path using the extension's codec.
func openSync(t *testing.T, path string) (*File, *Synchronizer[shoppingList]) {
	t.Helper()

	f := openFile(t, path)

	s, err := New[shoppingList](f, nil)
	require.NoError(t, err)
	t.Cleanup(s.Stop)

	return f, s
}

// editExternally simulates another process saving the file.
func editExternally(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

// settle waits long enough for any pending notification and propagation to
// finish, so counters can be asserted to stay unchanged.
func settle() {
	time.Sleep(10*testDebounce + 100*time.Millisecond)
}
