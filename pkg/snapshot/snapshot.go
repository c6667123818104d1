// Package snapshot dumps a point-in-time image of a record store into
// a pebble database on disk and loads such images back into a fresh
// store.
//
// The store itself is deliberately non-durable; snapshots are tooling
// around it, not a durability layer inside it. An image holds one
// pebble key per live record (a one-byte prefix plus the big-endian
// recid) and a manifest recording the snapshot ID and the geometry of
// the store it came from.
package snapshot

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/munindb/munin/pkg/store"
)

const recordPrefix = 'r'

var manifestKey = []byte("!munin/manifest")

// Manifest describes one snapshot image.
type Manifest struct {
	ID        string    `json:"id"` // ksuid, sortable by creation time
	CreatedAt time.Time `json:"created_at"`
	PageSize  int       `json:"page_size"`
	MaxRecids int       `json:"max_recids"`
	ArenaSize int       `json:"arena_size"`
	Records   int       `json:"records"`
}

// Entry names one record inside a snapshot image.
type Entry struct {
	Recid store.Recid
	Size  int
}

func recordKey(recid store.Recid) []byte {
	key := make([]byte, 9)
	key[0] = recordPrefix
	binary.BigEndian.PutUint64(key[1:], uint64(recid))
	return key
}

// Export writes every live, materialized record of s into a new
// pebble database at dir and returns the manifest it stored alongside
// them.
func Export(s *store.RecordStore, dir string) (*Manifest, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot at %s: %w", dir, err)
	}
	defer db.Close()

	records := 0
	err = s.GetAll(func(recid store.Recid, payload []byte) error {
		records++
		return db.Set(recordKey(recid), payload, pebble.NoSync)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to export records: %w", err)
	}

	geometry := s.Config()
	manifest := &Manifest{
		ID:        ksuid.New().String(),
		CreatedAt: time.Now().UTC(),
		PageSize:  geometry.PageSize,
		MaxRecids: geometry.MaxRecids,
		ArenaSize: geometry.ArenaSize,
		Records:   records,
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	// The manifest lands last, synced: a readable manifest means a
	// complete image.
	if err := db.Set(manifestKey, data, pebble.Sync); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	return manifest, nil
}

// Import loads the image at dir into s, restoring every record under
// its original recid. The target store must share the geometry the
// manifest records and is normally fresh; a recid collision surfaces
// as store.ErrRecidInUse.
func Import(dir string, s *store.RecordStore) (*Manifest, error) {
	db, err := pebble.Open(dir, &pebble.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot at %s: %w", dir, err)
	}
	defer db.Close()

	manifest, err := readManifest(db)
	if err != nil {
		return nil, err
	}

	// Refuse a geometry mismatch up front rather than letting it
	// surface as a confusing per-record error halfway through.
	geometry := s.Config()
	if manifest.PageSize != geometry.PageSize ||
		manifest.MaxRecids != geometry.MaxRecids ||
		manifest.ArenaSize != geometry.ArenaSize {
		return nil, fmt.Errorf(
			"snapshot geometry (page_size=%d max_recids=%d arena_size=%d) does not match store geometry (page_size=%d max_recids=%d arena_size=%d)",
			manifest.PageSize, manifest.MaxRecids, manifest.ArenaSize,
			geometry.PageSize, geometry.MaxRecids, geometry.ArenaSize)
	}

	err = walkRecords(db, func(recid store.Recid, payload []byte) error {
		return s.RestoreRaw(recid, payload)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import records: %w", err)
	}

	return manifest, nil
}

// List returns the manifest and the record inventory of the image at
// dir without touching a store.
func List(dir string) (*Manifest, []Entry, error) {
	db, err := pebble.Open(dir, &pebble.Options{ReadOnly: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open snapshot at %s: %w", dir, err)
	}
	defer db.Close()

	manifest, err := readManifest(db)
	if err != nil {
		return nil, nil, err
	}

	var entries []Entry
	err = walkRecords(db, func(recid store.Recid, payload []byte) error {
		entries = append(entries, Entry{Recid: recid, Size: len(payload)})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return manifest, entries, nil
}

func readManifest(db *pebble.DB) (*Manifest, error) {
	data, closer, err := db.Get(manifestKey)
	if err != nil {
		return nil, fmt.Errorf("snapshot has no manifest: %w", err)
	}
	defer closer.Close()

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &manifest, nil
}

// walkRecords visits record keys in ascending recid order, matching
// the recid order GetAll produced at export time.
func walkRecords(db *pebble.DB, fn func(recid store.Recid, payload []byte) error) error {
	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: []byte{recordPrefix},
		UpperBound: []byte{recordPrefix + 1},
	})
	if err != nil {
		return fmt.Errorf("failed to iterate snapshot: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		key := iter.Key()
		if len(key) != 9 {
			return fmt.Errorf("malformed record key %x", key)
		}
		recid := store.Recid(binary.BigEndian.Uint64(key[1:]))
		// The iterator owns its buffers; hand the callback a copy.
		payload := append([]byte(nil), iter.Value()...)
		if err := fn(recid, payload); err != nil {
			return err
		}
	}
	return iter.Error()
}
