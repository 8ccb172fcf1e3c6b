package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/bastiangx/unjumble/internal/logger"
	"github.com/bastiangx/unjumble/pkg/dictionary"
	"github.com/bastiangx/unjumble/pkg/index"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T, input string) (*InputHandler, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	src := dictionary.NewMemorySource("fixture", "cat", "act", "a", "car", "art")
	idx, _ := index.Build([]dictionary.Source{src}, index.DefaultOptions())

	var out, logs bytes.Buffer
	h := NewInputHandler(idx, strings.NewReader(input), &out, "> ", ", ")
	h.SetLogger(logger.NewWithConfig(&logs, "", log.DebugLevel, false, false, log.TextFormatter))
	return h, &out, &logs
}

func TestHandleInputOutcomes(t *testing.T) {
	h, out, logs := newHandler(t, "")

	assert.Equal(t, OutcomeMatches, h.HandleInput("trace"))
	assert.Equal(t, "cat, act, a, car, art\n", out.String())

	assert.Equal(t, OutcomeInvalid, h.HandleInput("tr4ce"))
	assert.Contains(t, logs.String(), "Invalid character '4'")

	assert.Equal(t, OutcomeNoMatches, h.HandleInput("xyz"))
	assert.Contains(t, logs.String(), "No words found")
	assert.Equal(t, 3, h.requestCount)
}

func TestStartEndsOnEmptyLine(t *testing.T) {
	h, out, logs := newHandler(t, "TRACE\nit's\n\ncat\n")
	require.NoError(t, h.Start())

	assert.Equal(t, "> cat, act, a, car, art\n> > ", out.String())
	assert.Equal(t, 2, h.requestCount)
	assert.Contains(t, logs.String(), "Bye! 2 queries answered.")
}

func TestStartEndsOnEOF(t *testing.T) {
	h, out, _ := newHandler(t, "tac")
	require.NoError(t, h.Start())
	assert.Equal(t, "> cat, act, a\n", out.String())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("tty closed") }

func TestStartReturnsReadError(t *testing.T) {
	h, _, _ := newHandler(t, "")
	h.in = failingReader{}
	assert.EqualError(t, h.Start(), "tty closed")
}
