package memory

import (
	"context"
	"sync"

	"github.com/calltime/callboard/internal/callboard/store"
)

// AccessLog is an in-memory append-only audit log for tests and dev.
type AccessLog struct {
	mu      sync.Mutex
	entries []store.AccessEntry
}

func NewAccessLog() *AccessLog {
	return &AccessLog{}
}

func (l *AccessLog) Record(_ context.Context, e store.AccessEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return nil
}

// Entries returns a copy of all recorded entries.  Test-only helper.
func (l *AccessLog) Entries() []store.AccessEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]store.AccessEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
