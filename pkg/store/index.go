package store

// indexTable maps recids to packed location descriptors. A slot value
// of zero means the recid is unallocated. Slot 0 exists but is never
// used; recid 0 is reserved.
type indexTable struct {
	slots []uint64
}

func newIndexTable(maxRecids int) *indexTable {
	return &indexTable{slots: make([]uint64, maxRecids+1)}
}

// inRange reports whether recid names a slot at all.
func (t *indexTable) inRange(recid Recid) bool {
	return recid >= 1 && int(recid) < len(t.slots)
}

// get returns the packed descriptor for recid, or zero when recid is
// out of range or unallocated.
func (t *indexTable) get(recid Recid) uint64 {
	if !t.inRange(recid) {
		return 0
	}
	return t.slots[recid]
}

func (t *indexTable) set(recid Recid, packed uint64) {
	t.slots[recid] = packed
}

func (t *indexTable) clear(recid Recid) {
	t.slots[recid] = 0
}
