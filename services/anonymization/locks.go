package anonymization

import "sync"

// tableLocks serializes anonymization and reversal runs per table id. The
// single-shot check and the clone are not one storage-level transaction, so
// without this lock two concurrent requests for the same table could both
// pass the check before either completes the clone.
type tableLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newTableLocks() *tableLocks {
	return &tableLocks{locks: make(map[uint]*sync.Mutex)}
}

// lock acquires the advisory lock for a table id and returns its release func.
func (l *tableLocks) lock(tableID uint) func() {
	l.mu.Lock()
	m, ok := l.locks[tableID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[tableID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
