package cache

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bastiangx/unjumble/internal/utils"
	"github.com/bastiangx/unjumble/pkg/index"
	"github.com/bastiangx/unjumble/pkg/signature"
)

// Delimiter separates word and signature. It cannot occur in either.
const Delimiter = ","

// HeaderPrefix starts the first line, which carries the fingerprint.
const HeaderPrefix = "# fingerprint "

// TextStore keeps entries as "word,signature" lines below a fingerprint
// header line.
type TextStore struct {
	path string
}

// NewTextStore creates a text store at path.
func NewTextStore(path string) *TextStore {
	return &TextStore{path: path}
}

func (s *TextStore) Path() string {
	return s.path
}

func (s *TextStore) ModTime() (time.Time, error) {
	return statModTime(s.path)
}

// Load parses the header and every record. A missing header or the first
// malformed line fails the whole load with ErrCorrupt.
func (s *TextStore) Load() (Snapshot, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return Snapshot{}, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
		}
		return Snapshot{}, fmt.Errorf("%w: %s is empty", ErrCorrupt, s.path)
	}
	fingerprint, ok := strings.CutPrefix(scanner.Text(), HeaderPrefix)
	if !ok || fingerprint == "" {
		return Snapshot{}, fmt.Errorf("%w: %s has no fingerprint header", ErrCorrupt, s.path)
	}

	snap := Snapshot{Fingerprint: fingerprint}
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		entry, err := parseRecord(scanner.Text())
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: %s line %d: %v", ErrCorrupt, s.path, lineNo, err)
		}
		snap.Entries = append(snap.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return snap, nil
}

func parseRecord(line string) (index.Entry, error) {
	word, sigText, ok := strings.Cut(line, Delimiter)
	if !ok {
		return index.Entry{}, fmt.Errorf("missing delimiter in %q", line)
	}
	if word == "" {
		return index.Entry{}, fmt.Errorf("empty word in %q", line)
	}
	sig, err := signature.Parse(sigText)
	if err != nil {
		return index.Entry{}, err
	}
	return index.Entry{Word: word, Sig: sig}, nil
}

// Save writes the snapshot to a temporary file and renames it over the
// previous cache.
func (s *TextStore) Save(snap Snapshot) error {
	dir := filepath.Dir(s.path)
	if err := utils.EnsureDir(dir); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	fmt.Fprintf(w, "%s%s\n", HeaderPrefix, snap.Fingerprint)
	for _, e := range snap.Entries {
		if _, err := fmt.Fprintf(w, "%s%s%s\n", e.Word, Delimiter, e.Sig); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
