package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/calltime/callboard/internal/callboard/store"
)

// DocumentStore holds the document in memory. Intended for tests and
// dev environments; contents are lost on restart.
type DocumentStore struct {
	mu  sync.Mutex
	doc json.RawMessage
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{}
}

func (s *DocumentStore) Load(_ context.Context) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		s.doc = store.EmptyDocument()
	}
	out := make(json.RawMessage, len(s.doc))
	copy(out, s.doc)
	return out, nil
}

func (s *DocumentStore) Save(_ context.Context, doc json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = make(json.RawMessage, len(doc))
	copy(s.doc, doc)
	return nil
}
