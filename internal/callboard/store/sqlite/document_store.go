package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	dbpkg "github.com/calltime/callboard/internal/db"

	"github.com/calltime/callboard/internal/callboard/store"
)

// DocumentStore keeps the call-status document in a single-row SQLite
// table. Reads go straight to the connection; writes are serialized
// through the shared db.Writer so a save and an audit append never race
// on SQLite's single writer.
type DocumentStore struct {
	db     *sql.DB
	writer *dbpkg.Writer
}

func NewDocumentStore(db *sql.DB, writer *dbpkg.Writer) *DocumentStore {
	return &DocumentStore{db: db, writer: writer}
}

func (s *DocumentStore) Load(ctx context.Context) (json.RawMessage, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM status_document WHERE id = 1;`,
	).Scan(&body)
	if err == nil {
		return json.RawMessage(body), nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("load document: %w", err)
	}

	// First fetch against an empty store: materialize the empty
	// document. INSERT OR IGNORE keeps concurrent first fetches from
	// clobbering each other (or a document written in between).
	doc := store.EmptyDocument()
	err = s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO status_document(id, body, updated_at_ms)
VALUES (1, ?, ?);`, string(doc), time.Now().UTC().UnixMilli())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("initialize document: %w", err)
	}
	return doc, nil
}

func (s *DocumentStore) Save(ctx context.Context, doc json.RawMessage) error {
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO status_document(id, body, updated_at_ms)
VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  body = excluded.body,
  updated_at_ms = excluded.updated_at_ms;`,
			string(doc), time.Now().UTC().UnixMilli())
		return err
	})
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}
