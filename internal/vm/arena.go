package vm

// arena is a bump allocator for string results produced during one
// evaluation. Reset makes all previously returned slices dead without
// freeing the backing storage, so repeated evaluations stop allocating
// once the buffer has grown to the expression's working size.
type arena struct {
	buf []byte
}

// reset discards all allocations, keeping capacity.
func (a *arena) reset() {
	a.buf = a.buf[:0]
}

// alloc returns a zeroed slice of n bytes. Earlier allocations stay
// readable even if the backing buffer grows.
func (a *arena) alloc(n int) []byte {
	start := len(a.buf)
	if start+n > cap(a.buf) {
		// Grow without disturbing slices into the old backing array.
		grown := make([]byte, start, max(2*cap(a.buf), start+n))
		copy(grown, a.buf)
		a.buf = grown
	}
	a.buf = a.buf[:start+n]
	s := a.buf[start : start+n : start+n]
	for i := range s {
		s[i] = 0
	}
	return s
}

// dup copies b into the arena.
func (a *arena) dup(b []byte) []byte {
	s := a.alloc(len(b))
	copy(s, b)
	return s
}
