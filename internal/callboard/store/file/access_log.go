package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/calltime/callboard/internal/callboard/store"
)

// AccessLog appends audit entries to a plain text file, one line per
// request, in the format the operators' existing tooling greps for:
//
//	[2026-08-28 09:15:02] GET request from 203.0.113.7
//	[2026-08-28 09:15:40] POST request from 203.0.113.7 - Saved 12 items
type AccessLog struct {
	mu   sync.Mutex
	path string
}

func NewAccessLog(path string) *AccessLog {
	return &AccessLog{path: path}
}

func (l *AccessLog) Record(_ context.Context, e store.AccessEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("access log dir: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open access log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatEntry(e) + "\n"); err != nil {
		return fmt.Errorf("append access log: %w", err)
	}
	return nil
}

// FormatEntry renders one audit entry as the legacy log line.
func FormatEntry(e store.AccessEntry) string {
	line := fmt.Sprintf("[%s] %s request from %s",
		e.At.UTC().Format("2006-01-02 15:04:05"), e.Kind.Method(), e.RemoteAddr)
	if e.SavedItems != nil {
		line += fmt.Sprintf(" - Saved %d items", *e.SavedItems)
	}
	return line
}
