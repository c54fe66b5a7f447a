package migrations

import (
	"database/sql"
	"fmt"
	"log"
)

// AddSyncQueueIndexes adds the indexes the drain pass and the per-user
// pending scan rely on.
func AddSyncQueueIndexes(db *sql.DB) error {
	log.Println("Running AddSyncQueueIndexes migration")

	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_sync_queue_created_at ON sync_queue(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sync_queue_attempts ON sync_queue(attempts);`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_sync_status ON submissions(user_id, sync_status);`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_report ON submissions(report_id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
