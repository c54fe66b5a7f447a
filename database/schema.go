package database

import "database/sql"

// createSchema creates the seven collections the data layer owns. Every
// statement is IF NOT EXISTS so repeated initialization is a no-op.
func createSchema(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			owner_id TEXT NOT NULL,
			primary_color TEXT,
			secondary_color TEXT,
			allow_offline BOOLEAN NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			fields TEXT NOT NULL,
			permissions TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft',
			created_by TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS report_versions (
			id TEXT PRIMARY KEY,
			report_id TEXT NOT NULL,
			version INTEGER NOT NULL,
			fields TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE(report_id, version)
		);`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			report_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			data TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft',
			submitted_at TIMESTAMP,
			last_modified TIMESTAMP NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			is_offline BOOLEAN NOT NULL DEFAULT 0,
			sync_status TEXT NOT NULL DEFAULT 'pending'
		);`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			message TEXT NOT NULL,
			entity_id TEXT,
			read BOOLEAN NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sync_queue (
			id TEXT PRIMARY KEY,
			entity_type TEXT NOT NULL,
			action TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			payload TEXT,
			attempts INTEGER NOT NULL DEFAULT 0,
			last_attempt TIMESTAMP,
			error TEXT,
			created_at TIMESTAMP NOT NULL
		);`,
	}

	for _, stmt := range tables {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
