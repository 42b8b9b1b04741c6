package diff

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_Identical(t *testing.T) {
	doc := `{"items":{},"price":0}`
	result, err := Compute(doc, doc, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, result.HasDifferences())
	assert.Equal(t, "+0 -0", result.Summary())
}

func TestCompute_SingleLineDocuments(t *testing.T) {
	result, err := Compute(`{"items":{},"price":0}`, `{"items":{"apple":1},"price":0}`, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, result.HasDifferences())
	assert.Contains(t, result.Unified, `-{"items":{},"price":0}`)
	assert.Contains(t, result.Unified, `+{"items":{"apple":1},"price":0}`)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Removed)
}

func TestCompute_MultiLine(t *testing.T) {
	old := "items:\n  apple: 1\nprice: 0\n"
	new := "items:\n  apple: 1\n  banana: 2\nprice: 1.5\n"
	result, err := Compute(old, new, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 1, result.Removed)
	assert.Contains(t, result.Unified, "+  banana: 2")
	assert.Contains(t, result.Unified, "-price: 0")
}

func TestCompute_Labels(t *testing.T) {
	opts := DefaultOptions()
	opts.OldLabel = "before.json"
	opts.NewLabel = "after.json"

	result, err := Compute("a\n", "b\n", opts)
	require.NoError(t, err)
	assert.Contains(t, result.Unified, "--- before.json")
	assert.Contains(t, result.Unified, "+++ after.json")
}

func TestCompute_EmptySides(t *testing.T) {
	result, err := Compute("", "line\n", DefaultOptions())
	require.NoError(t, err)
	assert.True(t, result.HasDifferences())
	assert.Equal(t, 1, result.Added)

	result, err = Compute("line\n", "", DefaultOptions())
	require.NoError(t, err)
	assert.True(t, result.HasDifferences())
	assert.Equal(t, 1, result.Removed)
}

func TestWrite_NoDifferences(t *testing.T) {
	var buf bytes.Buffer
	Write(&buf, &Result{}, false)
	assert.Equal(t, "No differences found.\n", buf.String())
}

func TestWrite_NoColor(t *testing.T) {
	result, err := Compute("line1\nline2\n", "line1\nline3\n", DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	Write(&buf, result, false)

	out := buf.String()
	assert.NotContains(t, out, "\033[")
	assert.Contains(t, out, "-line2\n")
	assert.Contains(t, out, "+line3\n")
}

func TestWrite_WithColor(t *testing.T) {
	result, err := Compute("line1\nline2\n", "line1\nline3\n", DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	Write(&buf, result, true)
	assert.Contains(t, buf.String(), "\033[31m-line2")
	assert.Contains(t, buf.String(), "\033[32m+line3")
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(""))
	assert.Equal(t, []string{"a\n"}, splitLines("a"))
	assert.Equal(t, []string{"a\n", "b\n"}, splitLines("a\nb\n"))
	assert.Equal(t, []string{"a\n", "\n", "b\n"}, splitLines("a\n\nb"))
}
