package lock

import (
	"context"
	"sync"
	"time"
)

type memoryLockEntry struct {
	mu   sync.Mutex
	refs int
}

// MemoryLock serializes callers in-process. Unlike RedisLock it blocks
// until the key is free, so a losing racer proceeds after the winner
// and observes the winner's status change. Entries are refcounted and
// evicted once the last holder or waiter releases, so the map does not
// grow with the number of keys ever locked.
type MemoryLock struct {
	mu    sync.Mutex
	locks map[string]*memoryLockEntry
}

func NewMemoryLock() *MemoryLock {
	return &MemoryLock{locks: make(map[string]*memoryLockEntry)}
}

func (m *MemoryLock) Lock(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &memoryLockEntry{}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()
	return true, nil
}

func (m *MemoryLock) Unlock(_ context.Context, key string) error {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
	m.mu.Unlock()

	e.mu.Unlock()
	return nil
}

func (m *MemoryLock) Close() error { return nil }
