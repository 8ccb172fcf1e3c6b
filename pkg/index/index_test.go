package index

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bastiangx/unjumble/pkg/dictionary"
	"github.com/bastiangx/unjumble/pkg/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingSource simulates a word list that cannot be read.
type failingSource struct{}

func (failingSource) Name() string { return "broken" }
func (failingSource) Lines() ([]string, error) { return nil, errors.New("permission denied") }
func (failingSource) ModTime() time.Time { return time.Time{} }
func (failingSource) Stamp() string { return "broken" }

func build(t *testing.T, opts Options, lists ...[]string) (*Index, BuildStats) {
	t.Helper()
	var sources []dictionary.Source
	for i, words := range lists {
		sources = append(sources, dictionary.NewMemorySource(fmt.Sprintf("list%d", i), words...))
	}
	return Build(sources, opts)
}

func bothStrategies(t *testing.T, fn func(t *testing.T, opts Options)) {
	for _, strategy := range []Strategy{StrategyScan, StrategyTrie} {
		t.Run(string(strategy), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Strategy = strategy
			fn(t, opts)
		})
	}
}

func TestQueryTrace(t *testing.T) {
	bothStrategies(t, func(t *testing.T, opts Options) {
		idx, stats := build(t, opts, []string{"cat", "act", "a", "car", "art"})
		require.Equal(t, 5, stats.Entries)

		got := idx.Query(signature.MustOf("trace"))
		assert.Equal(t, Result{"cat", "act", "a", "car", "art"}, got)
		assert.Equal(t, "cat, act, a, car, art", got.String())
		assert.Equal(t, "cat,act,a,car,art", got.Join(","))
	})
}

func TestQueryRespectsMultiplicity(t *testing.T) {
	bothStrategies(t, func(t *testing.T, opts Options) {
		idx, _ := build(t, opts, []string{"letter", "tells", "setter", "rest", "sell", "less"})

		got, err := idx.QueryWord("tellers")
		require.NoError(t, err)
		assert.Equal(t, Result{"tells", "rest", "sell"}, got)

		got, err = idx.QueryWord("TELLERS")
		require.NoError(t, err)
		assert.Equal(t, Result{"tells", "rest", "sell"}, got)
	})
}

func TestQueryWordInvalidVersusEmpty(t *testing.T) {
	bothStrategies(t, func(t *testing.T, opts Options) {
		idx, _ := build(t, opts, []string{"cat", "dog"})

		got, err := idx.QueryWord("c4t")
		assert.ErrorIs(t, err, signature.ErrInvalidCharacter)
		assert.Nil(t, got)

		got, err = idx.QueryWord("xyz")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)

		got, err = idx.QueryWord("")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestQueryZeroTarget(t *testing.T) {
	idx, _ := build(t, DefaultOptions(), []string{"cat"})
	assert.Empty(t, idx.Query(signature.Signature{}))

	empty, _ := build(t, DefaultOptions())
	assert.Empty(t, empty.Query(signature.MustOf("cat")))
}

func TestBuildFiltering(t *testing.T) {
	idx, stats := build(t, DefaultOptions(), []string{
		"  Cat  ",
		"don't",
		"x-ray",
		"",
		"   ",
		"b",
		"A",
		"I",
		"co-op",
		"e-mail",
		"r2d2",
		"ok\r",
	})

	assert.Equal(t, []Entry{
		{Word: "cat", Sig: signature.MustOf("cat")},
		{Word: "a", Sig: signature.MustOf("a")},
		{Word: "i", Sig: signature.MustOf("i")},
		{Word: "ok", Sig: signature.MustOf("ok")},
	}, idx.Entries())
	assert.Equal(t, BuildStats{
		Sources:  1,
		Lines:    12,
		Blank:    2,
		Invalid:  5,
		TooShort: 1,
		Entries:  4,
	}, stats)
}

func TestSingleLetterWordsLiteralRule(t *testing.T) {
	opts := DefaultOptions()
	opts.SingleLetterWords = []string{"a"}
	idx, stats := build(t, opts, []string{"a", "I", "i", "it"})

	got, err := idx.QueryWord("ita")
	require.NoError(t, err)
	assert.Equal(t, Result{"a", "it"}, got)
	assert.Equal(t, 2, stats.TooShort)
}

func TestDuplicates(t *testing.T) {
	lists := [][]string{{"cat", "act", "Cat"}, {"cat", "tac"}}

	t.Run("dedupe keeps first", func(t *testing.T) {
		idx, stats := build(t, DefaultOptions(), lists...)
		got := idx.Query(signature.MustOf("cat"))
		assert.Equal(t, Result{"cat", "act", "tac"}, got)
		assert.Equal(t, 2, stats.Duplicates)
	})

	t.Run("keep all occurrences", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Dedupe = false
		bothStrategies(t, func(t *testing.T, base Options) {
			opts.Strategy = base.Strategy
			idx, stats := build(t, opts, lists...)
			got := idx.Query(signature.MustOf("cat"))
			assert.Equal(t, Result{"cat", "act", "cat", "cat", "tac"}, got)
			assert.Zero(t, stats.Duplicates)
		})
	})
}

func TestBuildSkipsUnreadableSource(t *testing.T) {
	sources := []dictionary.Source{
		dictionary.NewMemorySource("first", "cat"),
		failingSource{},
		dictionary.NewMemorySource("second", "act"),
	}
	idx, stats := Build(sources, DefaultOptions())
	assert.Equal(t, 3, stats.Sources)
	assert.Equal(t, 1, stats.SkippedSources)
	assert.Equal(t, Result{"cat", "act"}, idx.Query(signature.MustOf("tack")))
}

func TestBuildUnknownStrategyFallsBack(t *testing.T) {
	opts := DefaultOptions()
	opts.Strategy = "bogus"
	idx, _ := build(t, opts, []string{"cat"})
	assert.Equal(t, StrategyTrie, idx.Strategy())

	_, err := FromEntries(nil, opts)
	assert.Error(t, err)
}

func TestParseStrategy(t *testing.T) {
	for name, want := range map[string]Strategy{"": StrategyTrie, "trie": StrategyTrie, "SCAN": StrategyScan} {
		got, err := ParseStrategy(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseStrategy("hash")
	assert.Error(t, err)
}

func TestStrategiesAgree(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	words := randomWords(rng, 3000)

	scanOpts := DefaultOptions()
	scanOpts.Strategy = StrategyScan
	scan, _ := build(t, scanOpts, words)
	trie, _ := build(t, DefaultOptions(), words)
	require.Equal(t, scan.Len(), trie.Len())
	assert.Less(t, trie.Stats().Groups, trie.Len())

	for i := 0; i < 300; i++ {
		query := randomWord(rng, 4+rng.IntN(10))
		target := signature.MustOf(query)
		want := scan.Query(target)
		got := trie.Query(target)
		require.Equal(t, want, got, "query %q", query)
		for _, w := range got {
			require.True(t, isSubMultiset(w, query), "%q is not in %q", w, query)
		}
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	words := randomWords(rng, 500)
	first, _ := build(t, DefaultOptions(), words)
	second, _ := build(t, DefaultOptions(), words)

	for i := 0; i < 50; i++ {
		target := signature.MustOf(randomWord(rng, 8))
		a, b := first.Query(target), second.Query(target)
		sort.Strings(a)
		sort.Strings(b)
		assert.Equal(t, a, b)
	}
}

func TestFromEntriesRoundTrip(t *testing.T) {
	idx, _ := build(t, DefaultOptions(), []string{"cat", "act", "a", "car", "art", "tea"})
	reloaded, err := FromEntries(idx.Entries(), DefaultOptions())
	require.NoError(t, err)

	for _, q := range []string{"trace", "eat", "zzz", "tacet"} {
		target := signature.MustOf(q)
		assert.Equal(t, idx.Query(target), reloaded.Query(target), q)
	}
	assert.Equal(t, idx.Stats(), reloaded.Stats())
}

func TestFromEntriesRejectsBadEntries(t *testing.T) {
	testCases := []struct {
		name  string
		entry Entry
	}{
		{"wrong signature", Entry{Word: "cat", Sig: signature.MustOf("dog")}},
		{"invalid word", Entry{Word: "c-t", Sig: signature.MustOf("ct")}},
		{"uppercase word", Entry{Word: "Cat", Sig: signature.MustOf("cat")}},
		{"empty word", Entry{Word: "", Sig: signature.One}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromEntries([]Entry{tc.entry}, DefaultOptions())
			assert.ErrorIs(t, err, ErrInvalidEntry)
		})
	}
}

func TestFromEntriesAppliesNarrowerPolicy(t *testing.T) {
	idx, _ := build(t, DefaultOptions(), []string{"a", "i", "it"})
	opts := DefaultOptions()
	opts.SingleLetterWords = []string{"a"}
	reloaded, err := FromEntries(idx.Entries(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())
}

func TestConcurrentQueries(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	words := randomWords(rng, 2000)
	idx, _ := build(t, DefaultOptions(), words)

	queries := make([]string, 64)
	want := make([]Result, len(queries))
	for i := range queries {
		queries[i] = randomWord(rng, 10)
		want[i] = idx.Query(signature.MustOf(queries[i]))
	}

	var wg sync.WaitGroup
	errs := make(chan string, len(queries)*8)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, q := range queries {
				got, err := idx.QueryWord(q)
				if err != nil || strings.Join(got, ",") != strings.Join(want[i], ",") {
					errs <- q
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for q := range errs {
		t.Errorf("concurrent query %q diverged", q)
	}
}

// randomWords draws from a small alphabet so anagram groups and
// sub-multisets are frequent.
func randomWords(rng *rand.Rand, n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = randomWord(rng, 1+rng.IntN(7))
	}
	return words
}

func randomWord(rng *rand.Rand, n int) string {
	const letters = "aeinrstlo"
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(letters[rng.IntN(len(letters))])
	}
	return b.String()
}

func isSubMultiset(small, big string) bool {
	var counts [26]int
	for i := 0; i < len(big); i++ {
		counts[big[i]-'a']++
	}
	for i := 0; i < len(small); i++ {
		counts[small[i]-'a']--
		if counts[small[i]-'a'] < 0 {
			return false
		}
	}
	return true
}
