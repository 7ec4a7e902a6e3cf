package history

const DefaultMaxSize = 100

// Ring keeps the most recent items up to a fixed capacity, evicting the
// oldest first. It is not safe for concurrent use.
type Ring[T any] struct {
	data  []T
	start int
	size  int
}

func New[T any](maxSize int) *Ring[T] {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Ring[T]{data: make([]T, maxSize)}
}

func (r *Ring[T]) Append(v T) {
	if r.size < len(r.data) {
		r.data[(r.start+r.size)%len(r.data)] = v
		r.size++
		return
	}
	r.data[r.start] = v
	r.start = (r.start + 1) % len(r.data)
}

// Snapshot returns the retained items, oldest first.
func (r *Ring[T]) Snapshot() []T {
	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.data[(r.start+i)%len(r.data)]
	}
	return out
}

func (r *Ring[T]) Len() int { return r.size }

func (r *Ring[T]) Cap() int { return len(r.data) }

func (r *Ring[T]) Clear() {
	var zero T
	for i := range r.data {
		r.data[i] = zero
	}
	r.start, r.size = 0, 0
}
