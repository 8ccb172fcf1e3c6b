package index

import (
	"sort"
	"strings"

	"github.com/bastiangx/unjumble/pkg/signature"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Result lists matching words in index order.
type Result []string

// Join renders the words separated by sep.
func (r Result) Join(sep string) string {
	return strings.Join(r, sep)
}

func (r Result) String() string {
	return r.Join(", ")
}

// Query returns every indexed word whose signature divides target.
// A zero target matches nothing.
func (idx *Index) Query(target signature.Signature) Result {
	if target.IsZero() || len(idx.entries) == 0 {
		return Result{}
	}
	if idx.strategy == StrategyScan {
		return idx.scan(target)
	}
	return idx.walk(target)
}

// QueryWord computes the signature of query and runs Query. Invalid
// characters are reported as an error wrapping signature.ErrInvalidCharacter,
// which callers must keep apart from an empty Result.
func (idx *Index) QueryWord(query string) (Result, error) {
	target, err := signature.Of(query)
	if err != nil {
		return nil, err
	}
	return idx.Query(target), nil
}

func (idx *Index) scan(target signature.Signature) Result {
	result := make(Result, 0)
	for _, e := range idx.entries {
		if e.Sig.Divides(target) {
			result = append(result, e.Word)
		}
	}
	return result
}

func (idx *Index) walk(target signature.Signature) Result {
	var positions []int
	err := idx.trie.Visit(func(_ patricia.Prefix, item patricia.Item) error {
		g := item.(*group)
		if !g.sig.Divides(target) {
			return patricia.SkipSubtree
		}
		positions = append(positions, g.positions...)
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting index trie: %v", err)
	}

	sort.Ints(positions)
	result := make(Result, len(positions))
	for i, pos := range positions {
		result[i] = idx.entries[pos].Word
	}
	return result
}
