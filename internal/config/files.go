package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	sigsyaml "sigs.k8s.io/yaml"
)

// FileConfig holds per-document overrides loaded from the files section of
// the config file (.cfgsync.yaml):
//
//	files:
//	  "*.conf":
//	    format: toml
//	  list.json:
//	    indent: "  "
//	    permissions: "0600"
type FileConfig struct {
	// Overrides maps a file name or glob pattern to its settings. Patterns
	// are matched against both the full path and the base name.
	Overrides map[string]FileOverride `json:"files,omitempty"`
}

// FileOverride customises how a single document is synchronised.
type FileOverride struct {
	// Format selects the codec (json, yaml, toml) regardless of extension.
	Format string `json:"format,omitempty"`

	// Indent pretty-prints JSON output with the given indent string.
	Indent string `json:"indent,omitempty"`

	// Permissions is the octal mode used when the file is written.
	Permissions string `json:"permissions,omitempty"`
}

// validFormats lists the format names accepted in overrides.
var validFormats = map[string]bool{
	"json": true, "yaml": true, "yml": true, "toml": true,
}

// ParseFileConfig parses the files section from raw config file bytes.
func ParseFileConfig(data []byte) (*FileConfig, error) {
	var raw struct {
		Files map[string]FileOverride `json:"files,omitempty"`
	}

	if err := sigsyaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing files config: %w", err)
	}

	cfg := &FileConfig{Overrides: raw.Files}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the overrides for correctness.
func (c *FileConfig) Validate() error {
	for pattern, o := range c.Overrides {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("files[%s]: invalid pattern: %w", pattern, err)
		}

		if o.Format != "" && !validFormats[strings.ToLower(o.Format)] {
			return fmt.Errorf("files[%s]: invalid format %q (must be json, yaml, or toml)", pattern, o.Format)
		}

		if o.Permissions != "" {
			if _, err := parsePermissions(o.Permissions); err != nil {
				return fmt.Errorf("files[%s]: %w", pattern, err)
			}
		}
	}

	return nil
}

// Lookup returns the override for path. An exact key wins over patterns;
// among patterns the lexically first match wins.
func (c *FileConfig) Lookup(path string) (FileOverride, bool) {
	if c == nil || len(c.Overrides) == 0 {
		return FileOverride{}, false
	}

	if o, ok := c.Overrides[path]; ok {
		return o, true
	}

	patterns := make([]string, 0, len(c.Overrides))
	for p := range c.Overrides {
		patterns = append(patterns, p)
	}

	sort.Strings(patterns)

	base := filepath.Base(path)

	for _, p := range patterns {
		if ok, _ := filepath.Match(p, path); ok {
			return c.Overrides[p], true
		}

		if ok, _ := filepath.Match(p, base); ok {
			return c.Overrides[p], true
		}
	}

	return FileOverride{}, false
}

// IsEmpty returns true if the config has no overrides.
func (c *FileConfig) IsEmpty() bool {
	return c == nil || len(c.Overrides) == 0
}

// FileMode returns the parsed permissions, or ok=false when unset.
func (o FileOverride) FileMode() (os.FileMode, bool) {
	if o.Permissions == "" {
		return 0, false
	}

	mode, err := parsePermissions(o.Permissions)
	if err != nil {
		return 0, false
	}

	return mode, true
}

func parsePermissions(s string) (os.FileMode, error) {
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil || n > 0o777 {
		return 0, fmt.Errorf("permissions %q is not a valid octal file mode", s)
	}

	return os.FileMode(n), nil
}
