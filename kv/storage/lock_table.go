package storage

import "sync"

// lockTable is a per-key lock map. There is one lock per user key, taken by a
// transaction before its first access to the key and held until the
// transaction finishes. Access to the map is guarded by a single mutex; since
// that mutex is global to the store it would cause contention in a large
// deployment, but it keeps acquisition atomic.
type lockTable struct {
	// mu must be held for any change to locks.
	mu    sync.Mutex
	locks map[string]*sync.WaitGroup
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.WaitGroup)}
}

// acquire tries to lock key. On success it returns nil. If the key is held by
// another transaction it returns that holder's WaitGroup for the caller to
// wait on.
func (t *lockTable) acquire(key string) *sync.WaitGroup {
	t.mu.Lock()
	defer t.mu.Unlock()

	if wg, ok := t.locks[key]; ok {
		return wg
	}

	wg := new(sync.WaitGroup)
	wg.Add(1)
	t.locks[key] = wg

	return nil
}

// wait locks key, blocking until the current holder releases it. May block
// for an unbounded length of time.
func (t *lockTable) wait(key string) {
	for {
		wg := t.acquire(key)
		if wg == nil {
			return
		}
		wg.Wait()
	}
}

// release unlocks key and wakes any transactions blocked on it. key must be
// held by the caller.
func (t *lockTable) release(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	wg := t.locks[key]
	delete(t.locks, key)
	wg.Done()
}
