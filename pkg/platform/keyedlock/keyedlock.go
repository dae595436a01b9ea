// Package keyedlock serializes critical sections per string key.
//
// The ceiling checks in the rule services (daily order count, open-order
// count, cart size) are read-then-validate-then-act; they are only safe when
// writes for the same user or session do not interleave. Application
// services take the key's lock around the whole check-and-act sequence.
package keyedlock

import "sync"

// Mutex provides one lock per key. Keys are never evicted; the expected
// cardinality (active users and sessions in one process) is small.
type Mutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *Mutex {
	return &Mutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for key, creating it on first use.
func (m *Mutex) Lock(key string) {
	m.lockFor(key).Lock()
}

// Unlock releases the lock for key.
func (m *Mutex) Unlock(key string) {
	m.lockFor(key).Unlock()
}

// Do runs fn while holding the lock for key.
func (m *Mutex) Do(key string, fn func() error) error {
	l := m.lockFor(key)
	l.Lock()
	defer l.Unlock()
	return fn()
}

func (m *Mutex) lockFor(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}
