package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/calltime/callboard/internal/callboard/store"
)

var (
	ErrInvalidPayload = errors.New("body must be valid non-null JSON")
)

// Client identifies the caller for audit purposes.
type Client struct {
	RemoteAddr string
	RequestID  string
}

// StatusService owns the shared call-status document: it serves the
// persisted document, replaces it wholesale, and records every access
// in the audit log. Replace is last-writer-wins by contract — browser
// clients always send the full document, so two operators saving
// concurrently means the later save stands.
type StatusService struct {
	docs   store.DocumentStore
	audit  store.AccessLog
	logger *log.Logger
}

func NewStatusService(docs store.DocumentStore, audit store.AccessLog, logger *log.Logger) *StatusService {
	return &StatusService{docs: docs, audit: audit, logger: logger}
}

// Fetch returns the current document. It never fails: a document that
// cannot be read or is not valid JSON degrades to the empty object so
// the public report stays renderable. The second return reports whether
// that degradation happened.
func (s *StatusService) Fetch(ctx context.Context, client Client) (json.RawMessage, bool) {
	degraded := false

	doc, err := s.docs.Load(ctx)
	switch {
	case err != nil:
		s.logger.Printf("fetch: load failed, serving empty document: %v", err)
		doc = store.EmptyDocument()
		degraded = true
	case !json.Valid(doc):
		s.logger.Printf("fetch: persisted document is not valid JSON, serving empty document")
		doc = store.EmptyDocument()
		degraded = true
	}

	s.record(ctx, client, store.KindRead, nil)
	return doc, degraded
}

// Replace validates body as a non-null JSON value and persists it as
// the new document, overwriting whatever was stored before. It returns
// the number of top-level keys in the new document; a non-object
// document counts as zero.
func (s *StatusService) Replace(ctx context.Context, client Client, body []byte) (int, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if v == nil {
		return 0, ErrInvalidPayload
	}

	items := 0
	if m, ok := v.(map[string]any); ok {
		items = len(m)
	}

	if err := s.docs.Save(ctx, json.RawMessage(body)); err != nil {
		return 0, fmt.Errorf("persist document: %w", err)
	}

	s.record(ctx, client, store.KindWrite, &items)
	return items, nil
}

// record appends an audit entry. Errors are intentionally not returned
// to the caller — the audit log is for external review, and a failed
// append must not block operators from seeing or saving statuses.
func (s *StatusService) record(ctx context.Context, client Client, kind store.Kind, items *int) {
	err := s.audit.Record(ctx, store.AccessEntry{
		At:         time.Now().UTC(),
		RemoteAddr: client.RemoteAddr,
		RequestID:  client.RequestID,
		Kind:       kind,
		SavedItems: items,
	})
	if err != nil {
		s.logger.Printf("access log append failed: %v", err)
	}
}
