/*
Package cache persists built indexes between runs.

Two stores are provided. TextStore writes one "word,signature" record per
line after a fingerprint header and is easy to inspect or diff. BoltStore
keeps the same records in a bbolt database, msgpack-encoded under sequence
keys, with the fingerprint in its meta bucket.

The fingerprint covers the name and stamp of every source, in order, plus
the build options that decide which words are kept. A cache is only used
when its fingerprint matches the current sources and options, so switching
word directories, removing a list or restoring an older copy of one all
force a rebuild.

Both stores treat any malformed record as corruption of the whole file:
Load returns ErrCorrupt and LoadOrBuild rebuilds from the word sources and
overwrites the cache. A partially loaded index is never served, and an index
built while some source was unreadable is never saved.
*/
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/bastiangx/unjumble/pkg/dictionary"
	"github.com/bastiangx/unjumble/pkg/index"
	"github.com/charmbracelet/log"
)

var (
	// ErrNotFound is returned when no cache has been written yet.
	ErrNotFound = errors.New("cache not found")
	// ErrCorrupt is returned when a cache exists but cannot be trusted.
	ErrCorrupt = errors.New("cache corrupt")
	// ErrIncomplete is returned by Rebuild when some source could not be
	// read. The cache is left untouched.
	ErrIncomplete = errors.New("index incomplete")
)

// Snapshot is what a Store persists.
type Snapshot struct {
	// Fingerprint identifies the sources and options the entries came from.
	Fingerprint string
	Entries     []index.Entry
}

// Store loads and saves index snapshots.
type Store interface {
	Load() (Snapshot, error)
	Save(snap Snapshot) error
	ModTime() (time.Time, error)
	Path() string
}

// Fingerprint hashes source names and stamps in order together with the
// options that affect which entries are kept. The query strategy is left
// out since it does not change the entries.
func Fingerprint(sources []dictionary.Source, opts index.Options) string {
	singles := make([]string, 0, len(opts.SingleLetterWords))
	for _, w := range opts.SingleLetterWords {
		singles = append(singles, strings.ToLower(w))
	}
	slices.Sort(singles)
	singles = slices.Compact(singles)

	h := sha256.New()
	fmt.Fprintf(h, "dedupe=%t singles=%s\n", opts.Dedupe, strings.Join(singles, ","))
	for _, src := range sources {
		fmt.Fprintf(h, "%s\x00%s\n", src.Name(), src.Stamp())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Origin tells where an index came from.
type Origin string

const (
	OriginCache Origin = "cache"
	OriginBuild Origin = "build"
)

// Open returns the store for path. backend is "text", "bolt", or "auto"
// (or empty) to pick by file extension.
func Open(path, backend string) (Store, error) {
	var (
		format dictionary.FileFormat
		err    error
	)
	if backend == "" || backend == "auto" {
		format, err = dictionary.DetectCacheFormat(path)
	} else {
		format, err = dictionary.ParseFormat(backend)
	}
	if err != nil {
		return nil, err
	}

	switch format {
	case dictionary.FormatText:
		return NewTextStore(path), nil
	case dictionary.FormatBolt:
		return NewBoltStore(path), nil
	}
	return nil, fmt.Errorf("unsupported cache format %s", format)
}

func statModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// LoadOrBuild returns the cached index when the cache exists, matches the
// fingerprint of sources and opts, is no older than any source and loads
// cleanly. Otherwise it builds from sources and saves the result. A nil store
// disables caching. Save failures are logged and do not fail the call.
func LoadOrBuild(store Store, sources []dictionary.Source, opts index.Options) (*index.Index, Origin, error) {
	if _, err := index.ParseStrategy(string(opts.Strategy)); err != nil {
		return nil, "", err
	}
	if store == nil {
		idx, _ := build(nil, sources, opts, "")
		return idx, OriginBuild, nil
	}

	fingerprint := Fingerprint(sources, opts)
	idx, err := load(store, sources, opts, fingerprint)
	if err == nil {
		log.Debugf("Loaded %d entries from cache %s", idx.Len(), store.Path())
		return idx, OriginCache, nil
	}
	switch {
	case errors.Is(err, ErrNotFound):
		log.Debugf("No cache at %s, building index", store.Path())
	case errors.Is(err, ErrCorrupt):
		log.Warnf("Discarding cache: %v. Rebuilding index...", err)
	default:
		log.Infof("Rebuilding index: %v", err)
	}
	idx, _ = build(store, sources, opts, fingerprint)
	return idx, OriginBuild, nil
}

// Rebuild always builds from sources and overwrites the cache. When a source
// cannot be read the index is still returned, the cache is not written and
// the error wraps ErrIncomplete.
func Rebuild(store Store, sources []dictionary.Source, opts index.Options) (*index.Index, index.BuildStats, error) {
	if _, err := index.ParseStrategy(string(opts.Strategy)); err != nil {
		return nil, index.BuildStats{}, err
	}
	idx, stats := index.Build(sources, opts)
	if stats.SkippedSources > 0 {
		return idx, stats, fmt.Errorf("%w: %d of %d word lists were unreadable",
			ErrIncomplete, stats.SkippedSources, stats.Sources)
	}
	if store != nil {
		snap := Snapshot{Fingerprint: Fingerprint(sources, opts), Entries: idx.Entries()}
		if err := store.Save(snap); err != nil {
			return idx, stats, fmt.Errorf("failed to save cache %s: %w", store.Path(), err)
		}
	}
	return idx, stats, nil
}

var (
	errStale    = errors.New("cache is older than the word lists")
	errMismatch = errors.New("cache was built from other word lists or options")
)

func load(store Store, sources []dictionary.Source, opts index.Options, fingerprint string) (*index.Index, error) {
	cachedAt, err := store.ModTime()
	if err != nil {
		return nil, err
	}
	if newest := dictionary.NewestModTime(sources); newest.After(cachedAt) {
		return nil, errStale
	}
	snap, err := store.Load()
	if err != nil {
		return nil, err
	}
	if snap.Fingerprint != fingerprint {
		return nil, errMismatch
	}
	idx, err := index.FromEntries(snap.Entries, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return idx, nil
}

// build indexes sources and saves the result unless a source was skipped,
// in which case any existing cache is kept as it is.
func build(store Store, sources []dictionary.Source, opts index.Options, fingerprint string) (*index.Index, index.BuildStats) {
	idx, stats := index.Build(sources, opts)
	if stats.Entries == 0 {
		log.Warnf("Index is empty: %d of %d word lists were unreadable", stats.SkippedSources, stats.Sources)
	}
	if store == nil {
		return idx, stats
	}
	if stats.SkippedSources > 0 {
		log.Warnf("Not saving cache %s: %d of %d word lists were unreadable, the index is incomplete",
			store.Path(), stats.SkippedSources, stats.Sources)
		return idx, stats
	}
	snap := Snapshot{Fingerprint: fingerprint, Entries: idx.Entries()}
	if err := store.Save(snap); err != nil {
		log.Warnf("Failed to save cache %s: %v", store.Path(), err)
	} else {
		log.Debugf("Saved %d entries to %s", idx.Len(), store.Path())
	}
	return idx, stats
}
