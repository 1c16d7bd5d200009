package app

// historyRing is a fixed-capacity circular buffer that overwrites the oldest
// entry when full. It is not safe for concurrent use; CallStore guards it.
type historyRing[T any] struct {
	buf   []T
	head  int
	count int
}

func newHistoryRing[T any](capacity int) *historyRing[T] {
	return &historyRing[T]{buf: make([]T, capacity)}
}

// Push appends item. When the ring was full the overwritten entry is
// returned with ok set.
func (r *historyRing[T]) Push(item T) (evicted T, ok bool) {
	idx := (r.head + r.count) % len(r.buf)
	if r.count == len(r.buf) {
		evicted, ok = r.buf[idx], true
		r.head = (r.head + 1) % len(r.buf)
	} else {
		r.count++
	}
	r.buf[idx] = item
	return evicted, ok
}

// Newest returns a copy of the entries, most recent first.
func (r *historyRing[T]) Newest() []T {
	out := make([]T, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.head+r.count-1-i)%len(r.buf)]
	}
	return out
}

func (r *historyRing[T]) Len() int { return r.count }
