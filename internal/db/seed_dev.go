package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedDev installs a small sample document so the report page has
// something to show against a fresh dev database. It never overwrites
// an existing document.
func SeedDev(ctx context.Context, db *sql.DB) error {
	now := time.Now().UTC()
	sample := fmt.Sprintf(
		`{"rec-1001":{"status":"called","timestamp":%q},"rec-1002":{"status":"pending","timestamp":%q}}`,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)

	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO status_document(id, body, updated_at_ms)
VALUES (1, ?, ?);`, sample, now.UnixMilli()); err != nil {
		return fmt.Errorf("seed status document: %w", err)
	}

	return nil
}
