package engine

import "sync"

// lockTable hands out one mutex per session id. Reservations for different
// sessions run fully in parallel; only same-session commits serialize.
// Entries are never evicted: the session population is small and fixed by
// the provisioned schedule.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

// acquire blocks until the session's exclusive lock is held and returns the
// release function. The caller must release on every exit path.
func (t *lockTable) acquire(sessionID string) func() {
	t.mu.Lock()
	lock, ok := t.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[sessionID] = lock
	}
	t.mu.Unlock()

	lock.Lock()

	return lock.Unlock
}
