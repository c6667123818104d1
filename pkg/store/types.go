package store

import "github.com/munindb/munin/pkg/codec"

// Geometry bounds imposed by the descriptor layout.
const (
	maxPageSize  = codec.MaxSize
	maxArenaSize = codec.MaxPageOffset + 1
)

// Recid identifies one logical record. Zero is reserved and never a
// valid handle; deleted recids are recycled oldest-first.
type Recid uint64

// Config fixes the store geometry. Everything here is set at
// construction and never changes; the store does not grow.
type Config struct {
	PageSize  int // bytes per page, every record occupies exactly one page
	MaxRecids int // index table capacity, valid recids run 1..MaxRecids
	ArenaSize int // total arena bytes, must be a multiple of PageSize
}

// DefaultConfig returns the stock geometry: 1 KiB pages, 100k recids,
// a 64 MiB arena.
func DefaultConfig() Config {
	return Config{
		PageSize:  1024,
		MaxRecids: 100_000,
		ArenaSize: 64 << 20,
	}
}

// Validate checks that the geometry is usable.
func (c Config) Validate() error {
	if c.PageSize <= 0 {
		return &StoreError{"page size must be positive"}
	}
	if c.PageSize > maxPageSize {
		return &StoreError{"page size exceeds descriptor size field"}
	}
	if c.MaxRecids <= 0 {
		return &StoreError{"max recids must be positive"}
	}
	if c.ArenaSize <= c.PageSize {
		return &StoreError{"arena must hold at least two pages"}
	}
	if c.ArenaSize%c.PageSize != 0 {
		return &StoreError{"arena size must be a multiple of page size"}
	}
	if uint64(c.ArenaSize) > maxArenaSize {
		return &StoreError{"arena size exceeds descriptor page offset field"}
	}
	return nil
}

// Stats is a point-in-time summary of store occupancy.
type Stats struct {
	LiveRecords         int   // materialized records
	PreallocatedRecords int   // reserved but unmaterialized recids
	BytesInUse          int64 // sum of live payload sizes
	PagesInUse          int   // pages backing live records
	FreeRecids          int   // recids waiting on the free list
	FreePages           int   // pages waiting on the free list
	PageSize            int
	ArenaSize           int
}

// Errors
var (
	ErrRecordNotFound    = &StoreError{"record not found"}
	ErrPreallocAccess    = &StoreError{"record is preallocated and holds no data"}
	ErrNotPreallocated   = &StoreError{"record is not in preallocated state"}
	ErrPayloadTooLarge   = &StoreError{"serialized record exceeds page size"}
	ErrCapacityExhausted = &StoreError{"store capacity exhausted"}
	ErrRecidInUse        = &StoreError{"recid already in use"}
)

// StoreError represents a record store error.
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}
