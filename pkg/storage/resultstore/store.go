// Package resultstore holds named, appendable pools of task results.
//
// A pool maps a per-pool slot id to a result string. Slot ids start at 0 and
// grow by 1 for every result appended to that pool, independent of any task
// identifiers. Pools outlive the queue that feeds them: a Store can be shared
// between managers and read long after the last worker has exited.
package resultstore

import "sync"

// Store is a concurrency-safe collection of named result pools.
// The zero value is not usable; construct with New.
type Store struct {
	mu     sync.RWMutex
	pools  map[string]map[int]string
	nextID map[string]int
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		pools:  make(map[string]map[int]string),
		nextID: make(map[string]int),
	}
}

// Append deposits result into the named pool at the next free slot and
// returns the slot id it was assigned. The pool is created on first use.
func (s *Store) Append(pool, result string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pools[pool]
	if !ok {
		p = make(map[int]string)
		s.pools[pool] = p
	}

	id := s.nextID[pool]
	p[id] = result
	s.nextID[pool] = id + 1
	return id
}

// Pool returns a point-in-time copy of one pool. An unknown name yields an
// empty map, not an error. Mutating the returned map does not affect the Store.
func (s *Store) Pool(name string) map[int]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int]string, len(s.pools[name]))
	for id, result := range s.pools[name] {
		out[id] = result
	}
	return out
}

// Pools returns a fully materialized copy of every pool. Callers must re-query
// to observe later appends; the copy is never a live view.
func (s *Store) Pools() map[string]map[int]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]map[int]string, len(s.pools))
	for name, p := range s.pools {
		cp := make(map[int]string, len(p))
		for id, result := range p {
			cp[id] = result
		}
		out[name] = cp
	}
	return out
}

// Clear atomically empties one pool. The pool's slot counter is NOT reset:
// the next Append continues from where the counter left off, so slot ids stay
// unique for the life of the pool. Other pools and their counters are
// untouched. Clearing an unknown name is a no-op.
func (s *Store) Clear(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pools[name]; ok {
		s.pools[name] = make(map[int]string)
	}
}

// Len returns the number of results currently held in one pool.
func (s *Store) Len(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pools[name])
}

// Names returns the names of all pools that have ever received a result,
// including cleared ones.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.pools))
	for name := range s.pools {
		names = append(names, name)
	}
	return names
}
