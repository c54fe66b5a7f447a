package migrations

import (
	"database/sql"
	"fmt"
	"log"
)

// AddRemoteCredentialsTable creates the single-row table holding the
// encrypted token the sync engine presents to the remote backend.
func AddRemoteCredentialsTable(db *sql.DB) error {
	log.Println("Running AddRemoteCredentialsTable migration")

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS remote_credentials (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token TEXT,
			updated_at TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create remote credentials table: %w", err)
	}

	return nil
}
