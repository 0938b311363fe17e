package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/calltime/callboard/internal/callboard/store"
)

// DocumentStore keeps the call-status document in a single JSON file.
// All access goes through one mutex, which closes the race between two
// clients hitting an uninitialized store at the same time, and writes go
// through a temp file plus rename so readers never observe a partial
// document even if the process dies mid-write.
type DocumentStore struct {
	mu   sync.Mutex
	path string
}

func NewDocumentStore(path string) *DocumentStore {
	return &DocumentStore{path: path}
}

func (s *DocumentStore) Load(_ context.Context) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		doc := store.EmptyDocument()
		if err := s.writeLocked(doc); err != nil {
			return nil, fmt.Errorf("initialize document: %w", err)
		}
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return json.RawMessage(b), nil
}

func (s *DocumentStore) Save(_ context.Context, doc json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeLocked(doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// writeLocked replaces the backing file atomically. Callers must hold mu.
func (s *DocumentStore) writeLocked(doc json.RawMessage) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, doc, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
