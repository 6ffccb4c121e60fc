// Package locker provides in-process mutual exclusion keyed by an
// arbitrary string, used to serialize plan-change requests that target
// the same billing subscription.
package locker

import (
	"sync"
)

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// KeyedLocker hands out one mutex per key. Entries are dropped once the
// last holder releases, so the map does not grow with the key space.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{
		locks: make(map[string]*lockEntry),
	}
}

// Lock blocks until the lock for key is held and returns the release
// function. The release function must be called exactly once.
func (l *KeyedLocker) Lock(key string) func() {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &lockEntry{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()

			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.locks, key)
			}
			l.mu.Unlock()
		})
	}
}
