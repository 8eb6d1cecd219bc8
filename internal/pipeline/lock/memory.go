package lock

import (
	"context"
	"sync"

	id "labfhir/pkg/domain"
)

// MemoryLocker is a keyed lock registry for single-process deployments.
// Entries are reference-counted and dropped when the last holder or waiter
// leaves, so the registry never grows with the number of reports seen.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[id.ReportID]*lockEntry
}

type lockEntry struct {
	ch   chan struct{}
	refs int
}

// NewMemory constructs an empty in-memory locker.
func NewMemory() *MemoryLocker {
	return &MemoryLocker{locks: make(map[id.ReportID]*lockEntry)}
}

func (l *MemoryLocker) Acquire(ctx context.Context, reportID id.ReportID) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[reportID]
	if !ok {
		entry = &lockEntry{ch: make(chan struct{}, 1)}
		l.locks[reportID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
		var once sync.Once
		release := func() {
			once.Do(func() {
				<-entry.ch
				l.unref(reportID, entry)
			})
		}
		return release, nil
	case <-ctx.Done():
		l.unref(reportID, entry)
		return nil, ctx.Err()
	}
}

func (l *MemoryLocker) unref(reportID id.ReportID, entry *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, reportID)
	}
}
