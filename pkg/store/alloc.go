package store

// allocator hands out values from a monotonically advancing tail and
// recycles freed values oldest-first. The store runs two instances of
// the same pattern: one for recids (start 1, step 1) and one for page
// offsets (start pageSize, step pageSize; offset 0 is never issued,
// so a zero page can double as "no page").
type allocator struct {
	start uint64
	step  uint64
	limit uint64 // first value past the end of the range
	tail  uint64
	free  []uint64 // FIFO, oldest freed first
}

func newAllocator(start, step, limit uint64) *allocator {
	return &allocator{start: start, step: step, limit: limit, tail: start}
}

// alloc returns the oldest freed value if any, otherwise advances the
// tail. Exhausting the fixed range is an error, never a wraparound.
func (a *allocator) alloc() (uint64, error) {
	if len(a.free) > 0 {
		v := a.free[0]
		a.free = a.free[1:]
		return v, nil
	}
	if a.tail >= a.limit {
		return 0, ErrCapacityExhausted
	}
	v := a.tail
	a.tail += a.step
	return v, nil
}

// release puts v back on the free queue. The tail never shrinks.
func (a *allocator) release(v uint64) {
	a.free = append(a.free, v)
}

// reserve claims a specific value, used when restoring a snapshot into
// a fresh store. Values the tail skips over become immediately
// recyclable; a value already sitting on the free queue is pulled out
// of it.
func (a *allocator) reserve(v uint64) error {
	if v >= a.limit {
		return ErrCapacityExhausted
	}
	if v >= a.tail {
		for skipped := a.tail; skipped < v; skipped += a.step {
			a.free = append(a.free, skipped)
		}
		a.tail = v + a.step
		return nil
	}
	for i, f := range a.free {
		if f == v {
			a.free = append(a.free[:i], a.free[i+1:]...)
			return nil
		}
	}
	return ErrRecidInUse
}

// freeCount reports how many values are waiting on the free queue.
func (a *allocator) freeCount() int {
	return len(a.free)
}

// issued reports how many values the tail has ever handed out.
func (a *allocator) issued() int {
	return int((a.tail - a.start) / a.step)
}
