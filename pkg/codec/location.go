package codec

// Record kinds stored in the top byte of a packed descriptor.
const (
	KindUnallocated uint8 = 0 // slot has never been allocated, or was deleted
	KindRecord      uint8 = 1 // materialized record, Size and Page are valid
	KindPrealloc    uint8 = 2 // reserved recid, Size and Page are meaningless
)

// Bit layout: [Kind(8)][Size(16)][PageOffset(40)]
const (
	kindShift = 56
	sizeShift = 40
	sizeMask  = 0xFFFF
	pageMask  = 0xFF_FFFF_FFFF
)

// MaxPageOffset is the largest arena offset a descriptor can address.
const MaxPageOffset = uint64(pageMask)

// MaxSize is the largest payload length a descriptor can record.
const MaxSize = int(sizeMask)

// Location describes where one record lives inside the arena.
type Location struct {
	Kind uint8  // KindRecord or KindPrealloc
	Size uint16 // payload length in bytes
	Page uint64 // byte offset of the record's page, multiple of the page size
}

// Pack composes the location into a single 64-bit descriptor.
func (l Location) Pack() uint64 {
	return uint64(l.Kind)<<kindShift |
		uint64(l.Size)<<sizeShift |
		l.Page&pageMask
}

// Unpack splits a packed descriptor back into its fields.
func Unpack(v uint64) Location {
	return Location{
		Kind: uint8(v >> kindShift),
		Size: uint16(v >> sizeShift & sizeMask),
		Page: v & pageMask,
	}
}
