package store

import (
	"fmt"

	"fieldform/backend/database"
	"fieldform/backend/security"
)

// SaveRemoteToken stores the token the sync engine presents to the remote
// backend, encrypted at rest.
func SaveRemoteToken(token string) error {
	encrypted, err := security.Encrypt(token)
	if err != nil {
		return fmt.Errorf("error encrypting remote token: %w", err)
	}

	_, err = database.DB.Exec(`
		INSERT INTO remote_credentials (id, token, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		encrypted, nowUTC())
	if err != nil {
		return fmt.Errorf("error saving remote token: %w", err)
	}
	return nil
}

// GetRemoteToken returns the decrypted remote token, or "" if none is set.
func GetRemoteToken() (string, error) {
	var encrypted string
	rows, err := database.DB.Query("SELECT token FROM remote_credentials WHERE id = 1")
	if err != nil {
		return "", fmt.Errorf("error querying remote token: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return "", rows.Err()
	}
	if err := rows.Scan(&encrypted); err != nil {
		return "", fmt.Errorf("error scanning remote token: %w", err)
	}
	if encrypted == "" {
		return "", nil
	}

	token, err := security.Decrypt(encrypted)
	if err != nil {
		return "", fmt.Errorf("error decrypting remote token: %w", err)
	}
	return token, nil
}
