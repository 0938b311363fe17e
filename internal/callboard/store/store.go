package store

import (
	"context"
	"encoding/json"
	"time"
)

// EmptyDocument returns the document an uninitialized store serves: a
// JSON object with no keys. A fresh slice is returned each call so
// callers cannot mutate a shared value.
func EmptyDocument() json.RawMessage {
	return json.RawMessage(`{}`)
}

// DocumentStore persists the single shared call-status document as an
// opaque JSON value. The store never inspects individual keys; every
// Save is a whole-document overwrite.
type DocumentStore interface {
	// Load returns the current document, materializing an empty one
	// first if nothing has ever been written. Implementations must make
	// that first materialization idempotent under concurrent use.
	Load(ctx context.Context) (json.RawMessage, error)

	// Save replaces the document in its entirety. The new content must
	// become visible atomically: a concurrent Load observes either the
	// previous document or the new one, never a torn mix.
	Save(ctx context.Context, doc json.RawMessage) error
}

// Kind distinguishes the two operations recorded in the access log.
type Kind string

const (
	KindRead  Kind = "read"
	KindWrite Kind = "write"
)

// Method maps the operation kind onto the HTTP verb browser clients use
// for it, which is what the legacy log line format carries.
func (k Kind) Method() string {
	if k == KindWrite {
		return "POST"
	}
	return "GET"
}

// AccessEntry is one audit record. SavedItems is set for writes only and
// holds the number of top-level keys in the stored document.
type AccessEntry struct {
	At         time.Time
	RemoteAddr string
	RequestID  string
	Kind       Kind
	SavedItems *int
}

// AccessLog persists audit entries append-only. The service never reads
// them back; they exist for external audit.
type AccessLog interface {
	Record(ctx context.Context, e AccessEntry) error
}
