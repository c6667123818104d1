// Package store implements MuninDB's in-memory record store: small
// integer recids mapped to serialized payloads inside one fixed-size
// byte arena, located through a fixed-size table of packed
// descriptors.
//
// The store performs no internal locking (see IsThreadSafe) and no
// I/O. Callers that share a store across goroutines must serialize
// access externally; pkg/api does exactly that for the HTTP surface.
package store

import "github.com/munindb/munin/pkg/codec"

// RecordStore maps recids to serialized byte payloads. It owns the
// arena, the index table and both free lists exclusively; nothing is
// shared and nothing grows after construction.
//
// Typed access goes through the generic package-level functions (Put,
// Get, Update, ...); the methods on RecordStore speak raw bytes.
type RecordStore struct {
	config Config
	index  *indexTable
	arena  *arena
	recids *allocator
	pages  *allocator
}

// New builds a store with the given geometry.
func New(config Config) (*RecordStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	pageSize := uint64(config.PageSize)
	return &RecordStore{
		config: config,
		index:  newIndexTable(config.MaxRecids),
		arena:  newArena(config.ArenaSize, config.PageSize),
		recids: newAllocator(1, 1, uint64(config.MaxRecids)+1),
		pages:  newAllocator(pageSize, pageSize, uint64(config.ArenaSize)),
	}, nil
}

// Config returns the geometry the store was built with.
func (s *RecordStore) Config() Config {
	return s.config
}

// Preallocate reserves a fresh recid without assigning a payload or a
// page. The recid will not be handed out again until it is freed, but
// it cannot be read, updated or deleted until PreallocatePutRaw
// materializes it.
func (s *RecordStore) Preallocate() (Recid, error) {
	recid, err := s.recids.alloc()
	if err != nil {
		return 0, err
	}
	s.index.set(Recid(recid), codec.Location{Kind: codec.KindPrealloc}.Pack())
	return Recid(recid), nil
}

// PreallocatePutRaw materializes a preallocated recid with payload.
// One-shot: a recid that is unallocated, already materialized or
// deleted is rejected with ErrNotPreallocated.
func (s *RecordStore) PreallocatePutRaw(recid Recid, payload []byte) error {
	packed := s.index.get(recid)
	if packed == 0 || codec.Unpack(packed).Kind != codec.KindPrealloc {
		return ErrNotPreallocated
	}
	if len(payload) > s.config.PageSize {
		return ErrPayloadTooLarge
	}
	page, err := s.pages.alloc()
	if err != nil {
		return err
	}
	s.arena.writePage(page, payload)
	s.index.set(recid, codec.Location{
		Kind: codec.KindRecord,
		Size: uint16(len(payload)),
		Page: page,
	}.Pack())
	return nil
}

// PutRaw stores payload in a fresh page under a fresh recid.
func (s *RecordStore) PutRaw(payload []byte) (Recid, error) {
	if len(payload) > s.config.PageSize {
		return 0, ErrPayloadTooLarge
	}
	page, err := s.pages.alloc()
	if err != nil {
		return 0, err
	}
	recid, err := s.recids.alloc()
	if err != nil {
		// Hand the page back so a failed put leaves no state behind.
		s.pages.release(page)
		return 0, err
	}
	s.arena.writePage(page, payload)
	s.index.set(Recid(recid), codec.Location{
		Kind: codec.KindRecord,
		Size: uint16(len(payload)),
		Page: page,
	}.Pack())
	return Recid(recid), nil
}

// locate checks that recid names a live, materialized record and
// returns its location. The guard order matches the read path
// contract: unallocated beats preallocated.
func (s *RecordStore) locate(recid Recid) (codec.Location, error) {
	packed := s.index.get(recid)
	if packed == 0 {
		return codec.Location{}, ErrRecordNotFound
	}
	loc := codec.Unpack(packed)
	if loc.Kind == codec.KindPrealloc {
		return codec.Location{}, ErrPreallocAccess
	}
	return loc, nil
}

// GetRaw returns a copy of the payload stored under recid.
func (s *RecordStore) GetRaw(recid Recid) ([]byte, error) {
	loc, err := s.locate(recid)
	if err != nil {
		return nil, err
	}
	return s.arena.read(loc.Page, int(loc.Size)), nil
}

// UpdateRaw overwrites the payload under recid in place. The record
// keeps its page, so it can shrink or grow up to the page size but
// never beyond it.
func (s *RecordStore) UpdateRaw(recid Recid, payload []byte) error {
	loc, err := s.locate(recid)
	if err != nil {
		return err
	}
	if len(payload) > s.config.PageSize {
		return ErrPayloadTooLarge
	}
	s.arena.writePage(loc.Page, payload)
	s.index.set(recid, codec.Location{
		Kind: codec.KindRecord,
		Size: uint16(len(payload)),
		Page: loc.Page,
	}.Pack())
	return nil
}

// Delete frees recid and its page. The page is zero-filled before it
// returns to the free list; the recid becomes recyclable immediately.
func (s *RecordStore) Delete(recid Recid) error {
	loc, err := s.locate(recid)
	if err != nil {
		return err
	}
	s.index.clear(recid)
	s.recids.release(uint64(recid))
	s.arena.zeroPage(loc.Page)
	s.pages.release(loc.Page)
	return nil
}

// GetAndDeleteRaw reads the payload and frees the record as one
// logical step. Not atomic against concurrent callers; nothing in
// this store is.
func (s *RecordStore) GetAndDeleteRaw(recid Recid) ([]byte, error) {
	payload, err := s.GetRaw(recid)
	if err != nil {
		return nil, err
	}
	if err := s.Delete(recid); err != nil {
		return nil, err
	}
	return payload, nil
}

// RestoreRaw installs payload under a caller-chosen recid. It exists
// so a snapshot import can rebuild a fresh store with the original
// recids; normal writes go through PutRaw.
func (s *RecordStore) RestoreRaw(recid Recid, payload []byte) error {
	if !s.index.inRange(recid) {
		return ErrCapacityExhausted
	}
	if s.index.get(recid) != 0 {
		return ErrRecidInUse
	}
	if len(payload) > s.config.PageSize {
		return ErrPayloadTooLarge
	}
	if err := s.recids.reserve(uint64(recid)); err != nil {
		return err
	}
	page, err := s.pages.alloc()
	if err != nil {
		s.recids.release(uint64(recid))
		return err
	}
	s.arena.writePage(page, payload)
	s.index.set(recid, codec.Location{
		Kind: codec.KindRecord,
		Size: uint16(len(payload)),
		Page: page,
	}.Pack())
	return nil
}

// GetAll calls fn once per live, materialized record in ascending
// recid order, passing a copy of the raw payload. Preallocated and
// unallocated slots are skipped. A non-nil error from fn stops the
// walk and is returned as-is.
func (s *RecordStore) GetAll(fn func(recid Recid, payload []byte) error) error {
	for recid := Recid(1); uint64(recid) < s.recids.tail; recid++ {
		packed := s.index.get(recid)
		if packed == 0 {
			continue
		}
		loc := codec.Unpack(packed)
		if loc.Kind == codec.KindPrealloc {
			continue
		}
		if err := fn(recid, s.arena.read(loc.Page, int(loc.Size))); err != nil {
			return err
		}
	}
	return nil
}

// IsEmpty reports whether every recid ever issued has since been
// freed.
func (s *RecordStore) IsEmpty() bool {
	return s.recids.freeCount() == s.recids.issued()
}

// Stats walks the index table and summarizes occupancy.
func (s *RecordStore) Stats() Stats {
	stats := Stats{
		FreeRecids: s.recids.freeCount(),
		FreePages:  s.pages.freeCount(),
		PageSize:   s.config.PageSize,
		ArenaSize:  s.config.ArenaSize,
	}
	for recid := Recid(1); uint64(recid) < s.recids.tail; recid++ {
		packed := s.index.get(recid)
		if packed == 0 {
			continue
		}
		loc := codec.Unpack(packed)
		if loc.Kind == codec.KindPrealloc {
			stats.PreallocatedRecords++
			continue
		}
		stats.LiveRecords++
		stats.PagesInUse++
		stats.BytesInUse += int64(loc.Size)
	}
	return stats
}

// IsThreadSafe reports false: the store performs no internal locking,
// by contract. Callers serialize access themselves.
func (s *RecordStore) IsThreadSafe() bool {
	return false
}

// Verify is a deliberate no-op. This store variant has no structural
// invariants to check beyond what every operation enforces inline;
// the method exists because collaborators built against the wider
// store surface expect to be able to call it.
func (s *RecordStore) Verify() {}

// Commit is a deliberate no-op. There is no durability layer and
// therefore nothing to flush.
func (s *RecordStore) Commit() {}

// Compact is a deliberate no-op. Pages are fixed-size and recycled
// whole, so there is no fragmentation to reclaim.
func (s *RecordStore) Compact() {}

// Close is a deliberate no-op. The store holds no file handles or
// other resources needing teardown; the arena is garbage once the
// store is unreachable.
func (s *RecordStore) Close() error {
	return nil
}
