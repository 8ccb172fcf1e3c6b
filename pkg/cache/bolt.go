package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/unjumble/internal/utils"
	"github.com/bastiangx/unjumble/pkg/index"
	"github.com/bastiangx/unjumble/pkg/signature"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

// Bucket keys
var (
	bucketEntries  = []byte("entries")
	bucketMeta     = []byte("meta")
	keyCount       = []byte("count")
	keyFingerprint = []byte("fingerprint")
)

// record is the msgpack form of one entry.
type record struct {
	Word string `msgpack:"w"`
	Sig  string `msgpack:"s"`
}

// BoltStore keeps entries in a bbolt database. The database is opened per
// call so the file is not held locked between loads.
type BoltStore struct {
	path    string
	timeout time.Duration
}

// NewBoltStore creates a bolt store at path.
func NewBoltStore(path string) *BoltStore {
	return &BoltStore{path: path, timeout: time.Second}
}

func (s *BoltStore) Path() string {
	return s.path
}

func (s *BoltStore) ModTime() (time.Time, error) {
	return statModTime(s.path)
}

func seqKey(i int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(i))
	return key
}

// Load reads entries in key order and checks them against the stored count.
func (s *BoltStore) Load() (Snapshot, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return Snapshot{}, err
	}

	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: s.timeout, ReadOnly: true})
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: bbolt open %s: %v", ErrCorrupt, s.path, err)
	}
	defer db.Close()

	var snap Snapshot
	err = db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		b := tx.Bucket(bucketEntries)
		if meta == nil || b == nil {
			return errors.New("missing buckets")
		}
		raw := meta.Get(keyCount)
		if len(raw) != 8 {
			return errors.New("missing entry count")
		}
		count := binary.BigEndian.Uint64(raw)
		fingerprint := meta.Get(keyFingerprint)
		if len(fingerprint) == 0 {
			return errors.New("missing fingerprint")
		}
		snap.Fingerprint = string(fingerprint)
		entries := make([]index.Entry, 0, count)

		if err := b.ForEach(func(k, v []byte) error {
			var rec record
			if err := msgpack.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("record %x: %w", k, err)
			}
			if rec.Word == "" {
				return fmt.Errorf("record %x: empty word", k)
			}
			sig, err := signature.Parse(rec.Sig)
			if err != nil {
				return fmt.Errorf("record %x: %w", k, err)
			}
			entries = append(entries, index.Entry{Word: rec.Word, Sig: sig})
			return nil
		}); err != nil {
			return err
		}

		if uint64(len(entries)) != count {
			return fmt.Errorf("found %d records, header says %d", len(entries), count)
		}
		snap.Entries = entries
		return nil
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return snap, nil
}

// Save writes a fresh database next to the target and renames it into place.
func (s *BoltStore) Save(snap Snapshot) error {
	dir := filepath.Dir(s.path)
	if err := utils.EnsureDir(dir); err != nil {
		return err
	}
	tmpPath := s.path + ".tmp"
	os.Remove(tmpPath)

	db, err := bolt.Open(tmpPath, 0600, &bolt.Options{Timeout: s.timeout})
	if err != nil {
		return fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucket(bucketEntries)
		if err != nil {
			return err
		}
		// Keys are appended in order.
		b.FillPercent = 1.0
		for i, e := range snap.Entries {
			data, err := msgpack.Marshal(record{Word: e.Word, Sig: e.Sig.String()})
			if err != nil {
				return err
			}
			if err := b.Put(seqKey(i), data); err != nil {
				return err
			}
		}
		meta, err := tx.CreateBucket(bucketMeta)
		if err != nil {
			return err
		}
		if err := meta.Put(keyFingerprint, []byte(snap.Fingerprint)); err != nil {
			return err
		}
		return meta.Put(keyCount, seqKey(len(snap.Entries)))
	})
	if closeErr := db.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("bbolt save: %w", err)
	}
	return os.Rename(tmpPath, s.path)
}
