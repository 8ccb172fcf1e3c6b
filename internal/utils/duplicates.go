package utils

import (
	"strings"
)

// WordFilter remembers accepted words so later repeats can be dropped.
// Not safe for concurrent use; the index builder owns one per build.
type WordFilter struct {
	seenWords map[string]bool
}

// NewWordFilter creates an empty filter sized for roughly capacity words.
func NewWordFilter(capacity int) *WordFilter {
	return &WordFilter{
		seenWords: make(map[string]bool, capacity),
	}
}

// ShouldInclude checks if a word should be included (not a duplicate).
// Comparison is case-insensitive. The first call for a word returns true,
// every later call false.
func (f *WordFilter) ShouldInclude(word string) bool {
	lowerWord := strings.ToLower(word)
	if f.seenWords[lowerWord] {
		return false
	}
	f.seenWords[lowerWord] = true
	return true
}

// Len returns how many distinct words have been seen.
func (f *WordFilter) Len() int {
	return len(f.seenWords)
}
