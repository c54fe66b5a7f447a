package database

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var DB *sql.DB

// Persistent is false when the store fell back to an in-memory database
// because no durable path was usable. In that mode everything still works,
// but nothing survives a restart, so "nothing to sync" may simply mean
// "storage disabled" rather than "caught up".
var Persistent = true

// InitDB opens the SQLite database and creates any missing schema.
// Initialization is idempotent: calling it again on an existing database
// leaves the data alone.
func InitDB(dataDir string) error {
	var dbPath string
	if os.Getenv("TEST_DB") == "1" {
		dbPath = ":memory:"
		Persistent = false
	} else {
		if dataDir == "" {
			dataDir = "."
		}
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			log.Printf("Warning: data directory %s unusable (%v), falling back to in-memory store", dataDir, err)
			dbPath = ":memory:"
			Persistent = false
		} else {
			dbPath = filepath.Join(dataDir, "fieldform.db")
		}
	}

	var err error
	// Connection parameters to better handle concurrency. The in-memory
	// store needs a shared cache or every pooled connection would see its
	// own empty database.
	dsn := dbPath + "?_journal=WAL&_timeout=10000&_busy_timeout=10000"
	if dbPath == ":memory:" {
		dsn = "file::memory:?cache=shared&_busy_timeout=10000"
	}
	DB, err = sql.Open("sqlite3", dsn)
	if err != nil {
		return err
	}

	DB.SetMaxOpenConns(5)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxLifetime(time.Minute * 5)

	_, err = DB.Exec("PRAGMA journal_mode=WAL;")
	if err != nil {
		return err
	}

	_, err = DB.Exec("PRAGMA busy_timeout=5000;")
	if err != nil {
		return err
	}

	// Test the connection; if the file can't be opened, degrade to a
	// non-persistent store instead of failing startup.
	err = DB.Ping()
	if err != nil && dbPath != ":memory:" {
		log.Printf("Warning: could not open %s (%v), falling back to in-memory store", dbPath, err)
		DB, err = sql.Open("sqlite3", "file::memory:?cache=shared&_busy_timeout=10000")
		if err != nil {
			return err
		}
		Persistent = false
	} else if err != nil {
		return err
	}

	if err := createSchema(DB); err != nil {
		return err
	}

	return RunMigrations()
}
