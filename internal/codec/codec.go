// Package codec provides the text encodings a synchronized file can use.
//
// A [Codec] turns typed values into file content and back. Codecs are chosen
// by file extension with [ForPath] or by name with [ByName].
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	sigsyaml "sigs.k8s.io/yaml"
)

// ErrUnknownFormat is returned by ByName for unsupported format names.
var ErrUnknownFormat = errors.New("unknown format")

// Supported format names.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Codec encodes and decodes a document's text representation.
type Codec interface {
	// Name returns the format name (json, yaml, toml).
	Name() string
	// Marshal encodes v. Encoding a well-formed value must not fail.
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// JSON encodes documents as JSON. The zero value produces compact output.
type JSON struct {
	// Indent, when non-empty, pretty-prints nested values with it.
	Indent string
}

// Name implements Codec.
func (JSON) Name() string { return FormatJSON }

// Marshal implements Codec.
func (c JSON) Marshal(v any) ([]byte, error) {
	if c.Indent != "" {
		return json.MarshalIndent(v, "", c.Indent)
	}

	return json.Marshal(v)
}

// Unmarshal implements Codec.
func (JSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// YAML encodes documents as YAML, honouring json struct tags.
type YAML struct{}

// Name implements Codec.
func (YAML) Name() string { return FormatYAML }

// Marshal implements Codec.
func (YAML) Marshal(v any) ([]byte, error) {
	return sigsyaml.Marshal(v)
}

// Unmarshal implements Codec.
func (YAML) Unmarshal(data []byte, v any) error {
	return sigsyaml.Unmarshal(data, v)
}

// TOML encodes documents as TOML using toml struct tags.
type TOML struct{}

// Name implements Codec.
func (TOML) Name() string { return FormatTOML }

// Marshal implements Codec.
func (TOML) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Unmarshal implements Codec.
func (TOML) Unmarshal(data []byte, v any) error {
	_, err := toml.Decode(string(data), v)
	return err
}

var byName = map[string]Codec{
	FormatJSON: JSON{},
	FormatYAML: YAML{},
	FormatTOML: TOML{},
}

// ByName returns the codec registered under name (case-insensitive).
// "yml" is accepted as an alias for yaml.
func ByName(name string) (Codec, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "yml" {
		key = FormatYAML
	}

	c, ok := byName[key]
	if !ok {
		return nil, fmt.Errorf("%w %q: must be one of %s", ErrUnknownFormat, name, strings.Join(Names(), ", "))
	}

	return c, nil
}

// ForPath picks a codec from the file extension. Unknown extensions fall
// back to JSON.
func ForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML{}
	case ".toml":
		return TOML{}
	default:
		return JSON{}
	}
}

// Resolve returns ByName(name) when name is set and ForPath(path) otherwise.
func Resolve(name, path string) (Codec, error) {
	if name != "" {
		return ByName(name)
	}

	return ForPath(path), nil
}

// Names returns the supported format names in sorted order.
func Names() []string {
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}
