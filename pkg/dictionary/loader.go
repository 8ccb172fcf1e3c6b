/*
Package dictionary supplies raw word lists to the index builder.

A Source is anything that can hand back its lines; the builder does not care
whether they came from a file, an embedded list or a test fixture. Discover
walks a words directory with doublestar patterns and returns one FileSource
per matching file, in lexical order so repeated builds see the same input.
*/
package dictionary

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
)

// DefaultPatterns matches every file below the words directory.
var DefaultPatterns = []string{"**/*"}

// ErrNoSources is returned by Discover when no file matched.
var ErrNoSources = errors.New("no word lists found")

// Source is a single word list.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	// Lines returns the raw lines of the list.
	Lines() ([]string, error)
	// ModTime is used to decide whether a persisted index is stale.
	ModTime() time.Time
	// Stamp changes whenever the content of the list may have changed.
	// Persisted indexes record the stamps of the sources they came from.
	Stamp() string
}

// FileSource reads a word list from disk.
type FileSource struct {
	Path string
}

// NewFileSource creates a source for the file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Name() string {
	return s.Path
}

// Lines reads the whole file, one entry per line.
func (s *FileSource) Lines() ([]string, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list %s: %w", s.Path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list %s: %w", s.Path, err)
	}
	return lines, nil
}

// ModTime returns the file's modification time, or the zero time if the
// file cannot be stat'ed.
func (s *FileSource) ModTime() time.Time {
	info, err := os.Stat(s.Path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Stamp combines size and modification time, or "missing" when the file
// cannot be stat'ed.
func (s *FileSource) Stamp() string {
	info, err := os.Stat(s.Path)
	if err != nil {
		return "missing"
	}
	return fmt.Sprintf("%d:%d", info.Size(), info.ModTime().UnixNano())
}

// MemorySource serves an in-memory list.
type MemorySource struct {
	Label    string
	Words    []string
	Modified time.Time
}

// NewMemorySource wraps words under the given label.
func NewMemorySource(label string, words ...string) *MemorySource {
	return &MemorySource{Label: label, Words: words}
}

func (s *MemorySource) Name() string {
	return s.Label
}

func (s *MemorySource) Lines() ([]string, error) {
	lines := make([]string, len(s.Words))
	copy(lines, s.Words)
	return lines, nil
}

func (s *MemorySource) ModTime() time.Time {
	return s.Modified
}

// Stamp hashes the words, since an in-memory list has no reliable mtime.
func (s *MemorySource) Stamp() string {
	h := sha256.New()
	for _, w := range s.Words {
		h.Write([]byte(w))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// Discover expands patterns under root and returns a FileSource per match.
// Directories and dot-files are skipped.
func Discover(root string, patterns []string) ([]Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open words dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("words dir %s is not a directory", root)
	}
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var matches []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid word list pattern %q", pattern)
		}
		found, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to expand pattern %q: %w", pattern, err)
		}
		for _, rel := range found {
			if seen[rel] || isHidden(rel) {
				continue
			}
			seen[rel] = true
			matches = append(matches, rel)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w in %s (patterns %v)", ErrNoSources, root, patterns)
	}

	sort.Strings(matches)
	sources := make([]Source, 0, len(matches))
	for _, rel := range matches {
		sources = append(sources, NewFileSource(filepath.Join(root, filepath.FromSlash(rel))))
	}
	log.Debugf("Discovered %d word lists in %s", len(sources), root)
	return sources, nil
}

// isHidden reports whether any element of a slash-separated path is a dot-file.
func isHidden(rel string) bool {
	for _, part := range strings.Split(path.Clean(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// NewestModTime returns the latest ModTime among sources.
func NewestModTime(sources []Source) time.Time {
	var newest time.Time
	for _, src := range sources {
		if mt := src.ModTime(); mt.After(newest) {
			newest = mt
		}
	}
	return newest
}
