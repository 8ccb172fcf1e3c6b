package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	config string
	words  string
	cache  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		config: filepath.Join(dir, "config.toml"),
		words:  filepath.Join(dir, "words"),
		cache:  filepath.Join(dir, "index.db"),
	}
	require.NoError(t, os.MkdirAll(f.words, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(f.words, "list.txt"), []byte("cat\nact\na\ndog\ncar\nart\n"), 0644))
	content := "[cache]\npath = " + `"` + filepath.ToSlash(f.cache) + `"` + "\n"
	require.NoError(t, os.WriteFile(f.config, []byte(content), 0644))
	return f
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	configFlag, debugFlag, wordsFlag, noCacheFlag, backendFlag = "", false, "", false, ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestQueryCommand(t *testing.T) {
	f := newFixture(t)
	out, err := execute(t, "", "query", "--config", f.config, "--words", f.words, "--no-cache", "trace", "GOD", "xyz")
	require.NoError(t, err)
	assert.Equal(t, "cat, act, a, car, art\ndog\n\n", out)
	assert.NoFileExists(t, f.cache)
}

func TestQueryCommandInvalidExitsTwo(t *testing.T) {
	f := newFixture(t)
	out, err := execute(t, "", "query", "--config", f.config, "--words", f.words, "--no-cache", "tr4ce", "dog")
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
	assert.Equal(t, "dog\n", out)
}

func TestBuildThenQueryFromCache(t *testing.T) {
	f := newFixture(t)
	out, err := execute(t, "", "build", "--config", f.config, "--words", f.words)
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 6 words from 1 word lists into "+f.cache)
	assert.FileExists(t, f.cache)

	out, err = execute(t, "", "query", "--config", f.config, "--words", f.words, "tac")
	require.NoError(t, err)
	assert.Equal(t, "cat, act, a\n", out)
}

func TestBuildWithCacheDisabled(t *testing.T) {
	f := newFixture(t)
	_, err := execute(t, "", "build", "--config", f.config, "--words", f.words, "--no-cache")
	assert.ErrorContains(t, err, "cache is disabled")
	assert.Equal(t, -1, ExitCode(err))
}

func TestDefaultCommandIsCLI(t *testing.T) {
	f := newFixture(t)
	out, err := execute(t, "trace\n\n", "--config", f.config, "--words", f.words, "--no-cache")
	require.NoError(t, err)
	assert.Equal(t, "> cat, act, a, car, art\n> ", out)
}

func TestMissingWordsDir(t *testing.T) {
	f := newFixture(t)
	_, err := execute(t, "", "query", "--config", f.config, "--words", filepath.Join(f.words, "absent"), "--no-cache", "cat")
	assert.ErrorContains(t, err, "failed to find word lists")
}
