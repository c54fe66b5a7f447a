package migrations

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"
)

// SeedDevData seeds sample data for development environments.
// This should never run in production.
func SeedDevData(db *sql.DB) error {
	if os.Getenv("APP_ENV") == "production" || os.Getenv("ENVIRONMENT") == "production" {
		log.Println("Refusing to seed dev data in production environment")
		return nil
	}

	if os.Getenv("SEED_DEV_DATA") != "true" {
		return nil
	}

	log.Println("Seeding dev data...")

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("failed to check users: %w", err)
	}
	if count > 0 {
		log.Println("Users already present, skipping dev seed")
		return nil
	}

	now := time.Now().UTC()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// First registrant is the admin
	_, err = tx.Exec(`
		INSERT INTO users (id, email, name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		"dev-admin", "admin@fieldform.local", "Dev Admin", "admin", now, now)
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO projects (id, name, description, owner_id, primary_color, secondary_color, allow_offline, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"dev-project", "Sample Project", "Seeded for development", "dev-admin", "#3498DB", "#1ABC9C", true, now, now)
	if err != nil {
		return fmt.Errorf("failed to seed project: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dev seed: %w", err)
	}

	log.Println("Dev data seeded")
	return nil
}
