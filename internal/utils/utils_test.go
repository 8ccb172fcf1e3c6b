package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatWithCommas(t *testing.T) {
	testCases := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		54321:    "54,321",
		1234567:  "1,234,567",
		-1234567: "-1,234,567",
	}
	for n, want := range testCases {
		assert.Equal(t, want, FormatWithCommas(n))
	}
}

func TestWordFilter(t *testing.T) {
	f := NewWordFilter(4)
	assert.True(t, f.ShouldInclude("cat"))
	assert.False(t, f.ShouldInclude("cat"))
	assert.False(t, f.ShouldInclude("CAT"))
	assert.True(t, f.ShouldInclude("act"))
	assert.Equal(t, 2, f.Len())
}

func TestTOMLRecoveryHelpers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[dict]
words_dir = "lists"
patterns = ["*.10", "*.20"]
mixed = ["a", 1]
dedupe = false
max = 7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	data, err := ParseTOMLWithRecovery(path)
	require.NoError(t, err)
	dict, ok := ExtractSection(data, "dict")
	require.True(t, ok)

	dir, ok := ExtractString(dict, "words_dir")
	assert.True(t, ok)
	assert.Equal(t, "lists", dir)

	patterns, ok := ExtractStringSlice(dict, "patterns")
	assert.True(t, ok)
	assert.Equal(t, []string{"*.10", "*.20"}, patterns)

	_, ok = ExtractStringSlice(dict, "mixed")
	assert.False(t, ok)

	dedupe, ok := ExtractBool(dict, "dedupe")
	assert.True(t, ok)
	assert.False(t, dedupe)

	limit, ok := ExtractInt64(dict, "max")
	assert.True(t, ok)
	assert.Equal(t, 7, limit)

	_, ok = ExtractSection(data, "missing")
	assert.False(t, ok)
}

func TestHasVisibleFiles(t *testing.T) {
	root := t.TempDir()
	assert.False(t, HasVisibleFiles(root))
	assert.False(t, HasVisibleFiles(filepath.Join(root, "absent")))

	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden"), []byte("x"), 0644))
	assert.False(t, HasVisibleFiles(root))

	nested := filepath.Join(root, "nested")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "english-words.10"), []byte("cat\n"), 0644))
	assert.True(t, HasVisibleFiles(root))
}

func TestWritableDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	assert.True(t, WritableDir(dir))
	assert.True(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, ".write_test")))
}
