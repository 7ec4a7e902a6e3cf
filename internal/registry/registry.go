package registry

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

const DefaultShards = 16

// Entry is one live registration under an effect id.
type Entry struct {
	ID    string
	Token string
	Kind  string
	// State is kind-specific bookkeeping. It is only read or written inside
	// a Compute callback for the entry's id.
	State any

	dispose func()
	once    sync.Once
}

// NewEntry creates a registration with a fresh token. dispose may be nil.
func NewEntry(id, kind string, dispose func()) *Entry {
	return &Entry{
		ID:      id,
		Token:   uuid.New().String(),
		Kind:    kind,
		dispose: dispose,
	}
}

// Dispose runs the cleanup at most once, however many times it is called.
func (e *Entry) Dispose() {
	e.once.Do(func() {
		if e.dispose != nil {
			e.dispose()
		}
	})
}

// Registry maps effect ids to their single live Entry.
//
// Ids are spread over shards by hash; all operations on one id go through the
// same shard lock, which gives every id a total order while unrelated ids do
// not contend. Disposal always happens after the shard lock is released.
type Registry struct {
	shards []*shard
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

func New(numShards int) *Registry {
	if numShards <= 0 {
		numShards = DefaultShards
	}
	shards := make([]*shard, numShards)
	for i := range shards {
		shards[i] = &shard{entries: make(map[string]*Entry)}
	}
	return &Registry{shards: shards}
}

func (r *Registry) shardOf(id string) *shard {
	return r.shards[getIndexByHash(id, len(r.shards))]
}

func getIndexByHash(key string, numShards int) int {
	switch numShards {
	case 0:
		panic("number of shards cannot be 0")
	case 1:
		return 0
	default:
		return int(xxhash.Sum64String(key) % uint64(numShards))
	}
}

// Compute atomically replaces the entry under id with the one returned by fn.
// fn receives the current entry (nil when absent) and may return it unchanged,
// a new entry, or nil to delete. A replaced or deleted entry is disposed.
// fn runs under the shard lock and must not call back into the registry.
func (r *Registry) Compute(id string, fn func(cur *Entry) *Entry) *Entry {
	s := r.shardOf(id)

	s.mu.Lock()
	cur := s.entries[id]
	next := fn(cur)
	if next == nil {
		delete(s.entries, id)
	} else {
		s.entries[id] = next
	}
	s.mu.Unlock()

	if cur != nil && cur != next {
		cur.Dispose()
	}
	return next
}

// Register installs e under e.ID, disposing the previous registration.
func (r *Registry) Register(e *Entry) {
	r.Compute(e.ID, func(*Entry) *Entry { return e })
}

// Release removes e without disposing it, but only while e is still the live
// registration for its id. It reports whether e was removed.
func (r *Registry) Release(e *Entry) bool {
	s := r.shardOf(e.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries[e.ID] != e {
		return false
	}
	delete(s.entries, e.ID)
	return true
}

// IsLive reports whether e is still the registration for its id.
func (r *Registry) IsLive(e *Entry) bool {
	s := r.shardOf(e.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[e.ID] == e
}

// Cancel removes and disposes whatever is registered under id.
func (r *Registry) Cancel(id string) (*Entry, bool) {
	var cancelled *Entry
	r.Compute(id, func(cur *Entry) *Entry {
		cancelled = cur
		return nil
	})
	return cancelled, cancelled != nil
}

func (r *Registry) Lookup(id string) (*Entry, bool) {
	s := r.shardOf(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	return e, ok
}

// CancelAll empties the registry, disposing every entry exactly once.
func (r *Registry) CancelAll() []*Entry {
	var drained []*Entry
	for _, s := range r.shards {
		s.mu.Lock()
		for id, e := range s.entries {
			drained = append(drained, e)
			delete(s.entries, id)
		}
		s.mu.Unlock()
	}
	for _, e := range drained {
		e.Dispose()
	}
	return drained
}

func (r *Registry) Len() int {
	n := 0
	for _, s := range r.shards {
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

// IDs lists the ids with a live registration, in no particular order.
func (r *Registry) IDs() []string {
	var ids []string
	for _, s := range r.shards {
		s.mu.Lock()
		for id := range s.entries {
			ids = append(ids, id)
		}
		s.mu.Unlock()
	}
	return ids
}
