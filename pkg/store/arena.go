package store

// arena is the single flat buffer backing every record payload. Each
// live record occupies a prefix of exactly one page; pages never
// overlap and never span the arena boundary.
type arena struct {
	pageSize int
	data     []byte
}

func newArena(size, pageSize int) *arena {
	return &arena{
		pageSize: pageSize,
		data:     make([]byte, size),
	}
}

// writePage copies payload into the page starting at off. The caller
// has already checked len(payload) against the page size.
func (a *arena) writePage(off uint64, payload []byte) {
	copy(a.data[off:], payload)
}

// read returns a copy of n bytes starting at off. Callers get their
// own buffer so a later write to the page cannot mutate a payload
// already handed out.
func (a *arena) read(off uint64, n int) []byte {
	out := make([]byte, n)
	copy(out, a.data[off:int(off)+n])
	return out
}

// zeroPage clears the whole page at off before it goes back on the
// free list, so a stale read of a recycled page sees zeroes rather
// than a previous occupant's bytes.
func (a *arena) zeroPage(off uint64) {
	clear(a.data[off : int(off)+a.pageSize])
}
