// Package cli runs the interactive prompt: one query per line, matches
// printed comma-joined, an empty line ends the session.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/unjumble/internal/logger"
	"github.com/bastiangx/unjumble/internal/utils"
	"github.com/bastiangx/unjumble/pkg/index"
	"github.com/bastiangx/unjumble/pkg/signature"
	"github.com/charmbracelet/log"
)

// Querier is the part of the index the prompt needs.
type Querier interface {
	QueryWord(query string) (index.Result, error)
	Len() int
}

// Outcome classifies how a single input line was handled.
type Outcome int

const (
	OutcomeMatches Outcome = iota
	OutcomeNoMatches
	OutcomeInvalid
)

// InputHandler reads queries from in and writes matches to out. Status
// messages go through its logger.
type InputHandler struct {
	index        Querier
	in           io.Reader
	out          io.Writer
	log          *log.Logger
	prompt       string
	separator    string
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(idx Querier, in io.Reader, out io.Writer, prompt, separator string) *InputHandler {
	return &InputHandler{
		index:     idx,
		in:        in,
		out:       out,
		log:       logger.New("unjumble"),
		prompt:    prompt,
		separator: separator,
	}
}

// SetLogger replaces the status logger.
func (h *InputHandler) SetLogger(l *log.Logger) {
	h.log = l
}

// Start begins the prompt loop. It returns nil when the user enters an
// empty line or input ends, and the read error otherwise.
func (h *InputHandler) Start() error {
	h.log.Printf("%s words loaded. Enter letters to unjumble, or an empty line to quit.",
		utils.FormatWithCommas(h.index.Len()))
	reader := bufio.NewReader(h.in)

	for {
		fmt.Fprint(h.out, h.prompt)
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		query := strings.TrimSpace(line)
		if query == "" {
			if err == nil {
				h.log.Printf("Bye! %d queries answered.", h.requestCount)
			}
			return nil
		}
		h.HandleInput(query)
		if err != nil {
			return nil
		}
	}
}

// HandleInput runs one query and reports the result.
func (h *InputHandler) HandleInput(query string) Outcome {
	h.requestCount++
	start := time.Now()
	result, err := h.index.QueryWord(query)
	elapsed := time.Since(start)

	var invalid *signature.InvalidCharacterError
	if errors.As(err, &invalid) {
		h.log.Errorf("Invalid character %q in '%s': only letters a-z are allowed", invalid.Char, query)
		return OutcomeInvalid
	}
	if err != nil {
		h.log.Errorf("Query '%s' failed: %v", query, err)
		return OutcomeInvalid
	}

	h.log.Debugf("Took [ %v ] for '%s'", elapsed, query)
	if len(result) == 0 {
		h.log.Warnf("No words found in '%s'", query)
		return OutcomeNoMatches
	}

	h.log.Printf("Found %s words in '%s':", utils.FormatWithCommas(len(result)), query)
	fmt.Fprintln(h.out, result.Join(h.separator))
	return OutcomeMatches
}
