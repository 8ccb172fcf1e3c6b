/*
Package index holds the dictionary of sub-anagram candidates.

An Index is built once from word sources and is read-only afterwards, so any
number of goroutines may query it without locking.

	sources, _ := dictionary.Discover("words", nil)
	idx, stats := index.Build(sources, index.DefaultOptions())
	words, err := idx.QueryWord("trace")

Build keeps words in source order, then line order. Every query returns its
matches in that same order regardless of the lookup strategy.

# Filtering

Lines are trimmed and lowercased. Words with characters outside a-z are
dropped, as are one-letter words not listed in Options.SingleLetterWords
(by default "a" and "i"). With Options.Dedupe only the first occurrence of a
word is kept; without it every occurrence is kept and shows up once per
occurrence in results.

# Strategies

StrategyScan tests every entry's signature against the target. StrategyTrie
groups entries by alphagram in a patricia trie; since a key's descendants
contain all of its letters, a group that does not divide the target lets the
whole subtree be skipped. Both return identical results.
*/
package index

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bastiangx/unjumble/internal/utils"
	"github.com/bastiangx/unjumble/pkg/dictionary"
	"github.com/bastiangx/unjumble/pkg/signature"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Strategy selects how queries walk the index.
type Strategy string

const (
	StrategyScan Strategy = "scan"
	StrategyTrie Strategy = "trie"
)

// ParseStrategy resolves a strategy name; empty means StrategyTrie.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(strings.ToLower(name)) {
	case "", StrategyTrie:
		return StrategyTrie, nil
	case StrategyScan:
		return StrategyScan, nil
	}
	return "", fmt.Errorf("unknown index strategy %q", name)
}

// ErrInvalidEntry is returned by FromEntries for entries that do not hold
// a valid word with its own signature.
var ErrInvalidEntry = errors.New("invalid index entry")

// DefaultSingleLetterWords are the one-letter English words kept by default.
var DefaultSingleLetterWords = []string{"a", "i"}

// Options control how an index is built.
type Options struct {
	// SingleLetterWords lists the one-letter words that may be indexed.
	SingleLetterWords []string
	// Dedupe keeps only the first occurrence of each word.
	Dedupe bool
	// Strategy picks the query algorithm.
	Strategy Strategy
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		SingleLetterWords: append([]string(nil), DefaultSingleLetterWords...),
		Dedupe:            true,
		Strategy:          StrategyTrie,
	}
}

// Entry is an indexed word with its signature.
type Entry struct {
	Word string
	Sig  signature.Signature
}

// BuildStats counts what happened to each input line.
type BuildStats struct {
	Sources        int
	SkippedSources int
	Lines          int
	Blank          int
	Invalid        int
	TooShort       int
	Duplicates     int
	Entries        int
}

// Stats describes a built index.
type Stats struct {
	Entries  int
	Groups   int
	Strategy Strategy
}

// group collects the entry positions that share one alphagram.
type group struct {
	sig       signature.Signature
	positions []int
}

// Index is an immutable collection of entries.
type Index struct {
	entries  []Entry
	trie     *patricia.Trie
	groups   int
	strategy Strategy
}

type builder struct {
	opts    Options
	singles map[string]bool
	seen    *utils.WordFilter
	idx     *Index
	stats   BuildStats
}

func newBuilder(opts Options) (*builder, error) {
	strategy, err := ParseStrategy(string(opts.Strategy))
	if err != nil {
		return nil, err
	}
	singles := make(map[string]bool, len(opts.SingleLetterWords))
	for _, w := range opts.SingleLetterWords {
		singles[strings.ToLower(w)] = true
	}
	b := &builder{
		opts:    opts,
		singles: singles,
		idx: &Index{
			trie:     patricia.NewTrie(),
			strategy: strategy,
		},
	}
	if opts.Dedupe {
		b.seen = utils.NewWordFilter(1024)
	}
	return b, nil
}

// admit applies the length and duplicate rules to a validated word.
func (b *builder) admit(word string) bool {
	if len(word) < 2 && !b.singles[word] {
		b.stats.TooShort++
		return false
	}
	if b.seen != nil && !b.seen.ShouldInclude(word) {
		b.stats.Duplicates++
		return false
	}
	return true
}

func (b *builder) addLine(line string) {
	b.stats.Lines++
	word := strings.ToLower(strings.TrimSpace(line))
	if word == "" {
		b.stats.Blank++
		return
	}
	sig, err := signature.Of(word)
	if err != nil {
		b.stats.Invalid++
		return
	}
	if b.admit(word) {
		b.insert(word, sig)
	}
}

func (b *builder) insert(word string, sig signature.Signature) {
	// word is already validated, so Alphagram cannot fail here.
	key, _ := signature.Alphagram(word)
	pos := len(b.idx.entries)
	b.idx.entries = append(b.idx.entries, Entry{Word: word, Sig: sig})

	if item := b.idx.trie.Get(patricia.Prefix(key)); item != nil {
		g := item.(*group)
		g.positions = append(g.positions, pos)
		return
	}
	b.idx.trie.Insert(patricia.Prefix(key), &group{sig: sig, positions: []int{pos}})
	b.idx.groups++
}

func (b *builder) finish() (*Index, BuildStats) {
	b.stats.Entries = len(b.idx.entries)
	return b.idx, b.stats
}

// Build indexes every word of every source. Unreadable sources are logged
// and skipped; they never abort the build. An unknown Options.Strategy
// falls back to StrategyTrie.
func Build(sources []dictionary.Source, opts Options) (*Index, BuildStats) {
	b, err := newBuilder(opts)
	if err != nil {
		log.Warnf("%v, using %s", err, StrategyTrie)
		opts.Strategy = StrategyTrie
		b, _ = newBuilder(opts)
	}

	for _, src := range sources {
		b.stats.Sources++
		lines, err := src.Lines()
		if err != nil {
			log.Warnf("Skipping unreadable word list %s: %v", src.Name(), err)
			b.stats.SkippedSources++
			continue
		}
		for _, line := range lines {
			b.addLine(line)
		}
		log.Debugf("Indexed %s: %d lines", src.Name(), len(lines))
	}

	idx, stats := b.finish()
	log.Debugf("Index built: %d entries in %d groups (%d invalid, %d too short, %d duplicates, %d sources skipped)",
		stats.Entries, idx.groups, stats.Invalid, stats.TooShort, stats.Duplicates, stats.SkippedSources)
	return idx, stats
}

// FromEntries rebuilds an index from previously persisted entries. Each
// entry's signature is recomputed and must match the stored one. The
// single-letter and dedupe rules of opts are applied again, so a narrower
// policy than the one the entries were built with still holds.
func FromEntries(entries []Entry, opts Options) (*Index, error) {
	b, err := newBuilder(opts)
	if err != nil {
		return nil, err
	}
	for i, e := range entries {
		sig, err := signature.Of(e.Word)
		if err != nil || e.Word == "" || e.Word != strings.ToLower(e.Word) {
			return nil, fmt.Errorf("%w: entry %d word %q", ErrInvalidEntry, i, e.Word)
		}
		if !sig.Equal(e.Sig) {
			return nil, fmt.Errorf("%w: entry %d %q has signature %s, want %s", ErrInvalidEntry, i, e.Word, e.Sig, sig)
		}
		b.stats.Lines++
		if b.admit(e.Word) {
			b.insert(e.Word, sig)
		}
	}
	idx, _ := b.finish()
	return idx, nil
}

// Entries returns a copy of the indexed entries in index order.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Strategy returns the query strategy in use.
func (idx *Index) Strategy() Strategy {
	return idx.strategy
}

// Stats returns the entry and group counts.
func (idx *Index) Stats() Stats {
	return Stats{
		Entries:  len(idx.entries),
		Groups:   idx.groups,
		Strategy: idx.strategy,
	}
}
