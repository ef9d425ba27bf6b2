// Package keylock serializes work per integer key. Each key gets its own
// mutex, created on first use and dropped when nobody holds or waits for it.
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Map is a set of per-key mutexes. The zero value is ready to use.
type Map struct {
	mu    sync.Mutex
	locks map[int64]*entry
}

// Lock blocks until key is free and returns its unlock function. Different
// keys never block each other.
func (m *Map) Lock(key int64) func() {
	m.mu.Lock()
	if m.locks == nil {
		m.locks = make(map[int64]*entry)
	}
	e, ok := m.locks[key]
	if !ok {
		e = &entry{}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()

		m.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(m.locks, key)
		}
		m.mu.Unlock()
	}
}

// Do runs fn while holding key.
func (m *Map) Do(key int64, fn func()) {
	unlock := m.Lock(key)
	defer unlock()
	fn()
}

// Len is the number of keys currently held or waited on.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
