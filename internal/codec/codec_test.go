package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Items map[string]int `json:"items" toml:"items"`
	Price float64        `json:"price" toml:"price"`
}

func allCodecs() []Codec {
	return []Codec{JSON{}, JSON{Indent: "  "}, YAML{}, TOML{}}
}

// ---------------------------------------------------------------------------
// Round trips
// ---------------------------------------------------------------------------

func TestCodecs_RoundTrip(t *testing.T) {
	in := testDoc{Items: map[string]int{"apple": 1, "banana": 2}, Price: 1.5}

	for _, c := range allCodecs() {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(in)
			require.NoError(t, err)

			var out testDoc
			require.NoError(t, c.Unmarshal(data, &out))
			assert.Equal(t, in, out)
		})
	}
}

// Serialization must be stable under re-parsing, otherwise a write-back
// would differ cosmetically from the text the watcher read and trigger an
// extra round trip.
func TestCodecs_SerializationIsIdempotent(t *testing.T) {
	docs := []testDoc{
		{},
		{Items: map[string]int{}, Price: 0},
		{Items: map[string]int{"zucchini": 3, "apple": 1, "mango": 10}, Price: 12.25},
		{Items: map[string]int{"a": 1}, Price: 0.1},
	}

	for _, c := range allCodecs() {
		for _, d := range docs {
			first, err := c.Marshal(d)
			require.NoError(t, err)

			var parsed testDoc
			require.NoError(t, c.Unmarshal(first, &parsed), "format=%s", c.Name())

			second, err := c.Marshal(parsed)
			require.NoError(t, err)

			assert.Equal(t, string(first), string(second), "format=%s", c.Name())
		}
	}
}

func TestJSON_CompactByDefault(t *testing.T) {
	data, err := JSON{}.Marshal(testDoc{Items: map[string]int{"apple": 1}})
	require.NoError(t, err)
	assert.Equal(t, `{"items":{"apple":1},"price":0}`, string(data))
}

func TestJSON_NonCanonicalInputIsNormalized(t *testing.T) {
	var d testDoc
	require.NoError(t, JSON{}.Unmarshal([]byte(`{"items":{},"price":0.0}`), &d))

	data, err := JSON{}.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `{"items":{},"price":0}`, string(data))
}

func TestJSON_Indent(t *testing.T) {
	data, err := JSON{Indent: "  "}.Marshal(testDoc{Items: map[string]int{}})
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"price\": 0")
}

func TestYAML_UsesJSONTags(t *testing.T) {
	data, err := YAML{}.Marshal(testDoc{Items: map[string]int{"apple": 1}, Price: 2})
	require.NoError(t, err)
	assert.Equal(t, "items:\n  apple: 1\nprice: 2\n", string(data))
}

func TestTOML_Tables(t *testing.T) {
	data, err := TOML{}.Marshal(testDoc{Items: map[string]int{"apple": 1}, Price: 2})
	require.NoError(t, err)
	assert.Contains(t, string(data), "price = 2.0")
	assert.Contains(t, string(data), "[items]")
	assert.Contains(t, string(data), "apple = 1")
}

func TestCodecs_RejectMalformedInput(t *testing.T) {
	for _, c := range []Codec{JSON{}, YAML{}, TOML{}} {
		t.Run(c.Name(), func(t *testing.T) {
			var d testDoc
			assert.Error(t, c.Unmarshal([]byte("price: [not: valid"), &d))
		})
	}
}

func TestCodecs_RejectTypeMismatch(t *testing.T) {
	inputs := map[string]string{
		FormatJSON: `{"items":{"apple":"many"}}`,
		FormatYAML: "items:\n  apple: many\n",
		FormatTOML: "[items]\napple = \"many\"\n",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			c, err := ByName(name)
			require.NoError(t, err)

			var d testDoc
			assert.Error(t, c.Unmarshal([]byte(input), &d))
		})
	}
}

// ---------------------------------------------------------------------------
// Lookup
// ---------------------------------------------------------------------------

func TestForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"list.json", FormatJSON},
		{"list.yaml", FormatYAML},
		{"list.YML", FormatYAML},
		{"list.toml", FormatTOML},
		{"test.txt", FormatJSON},
		{"noext", FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ForPath(tt.path).Name())
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "YAML", " toml ", "yml"} {
		c, err := ByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, c)
	}

	_, err := ByName("ini")
	require.ErrorIs(t, err, ErrUnknownFormat)
	assert.Contains(t, err.Error(), "json, toml, yaml")
}

func TestResolve(t *testing.T) {
	c, err := Resolve("", "list.toml")
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, c.Name())

	c, err = Resolve("yaml", "list.toml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, c.Name())

	_, err = Resolve("xml", "list.json")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"json", "toml", "yaml"}, Names())
}
