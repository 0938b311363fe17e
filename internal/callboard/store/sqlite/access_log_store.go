package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/calltime/callboard/internal/db"

	"github.com/calltime/callboard/internal/callboard/store"
)

// AccessLog persists audit entries as append-only rows. Unlike the text
// file backend it keeps the request ID, so an entry can be correlated
// with the server log line for the same request.
type AccessLog struct {
	db     *sql.DB
	writer *dbpkg.Writer
}

func NewAccessLog(db *sql.DB, writer *dbpkg.Writer) *AccessLog {
	return &AccessLog{db: db, writer: writer}
}

func (l *AccessLog) Record(ctx context.Context, e store.AccessEntry) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	var requestID any
	if e.RequestID != "" {
		requestID = e.RequestID
	}

	var savedItems any
	if e.SavedItems != nil {
		savedItems = *e.SavedItems
	}

	err := l.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO access_log(at_ms, remote_addr, request_id, kind, saved_items)
VALUES (?, ?, ?, ?, ?);`,
			e.At.UTC().UnixMilli(), e.RemoteAddr, requestID, string(e.Kind), savedItems)
		return err
	})
	if err != nil {
		return fmt.Errorf("record access entry: %w", err)
	}
	return nil
}
