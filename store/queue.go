package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"fieldform/backend/database"
	"fieldform/backend/models"
)

func validEntityType(t string) bool {
	switch t {
	case models.EntitySubmission, models.EntityReport, models.EntityUser, models.EntityProject:
		return true
	}
	return false
}

func validAction(a string) bool {
	switch a {
	case models.ActionCreate, models.ActionUpdate, models.ActionDelete:
		return true
	}
	return false
}

// Enqueue appends a pending remote operation. The entry starts at zero
// attempts and is only ever touched again by the sync engine.
func Enqueue(entityType, action, entityID string, payload json.RawMessage) (string, error) {
	if !validEntityType(entityType) {
		return "", fmt.Errorf("%w: invalid entity type %q", ErrConstraintViolation, entityType)
	}
	if !validAction(action) {
		return "", fmt.Errorf("%w: invalid action %q", ErrConstraintViolation, action)
	}
	if entityID == "" {
		return "", fmt.Errorf("%w: entityId is required", ErrConstraintViolation)
	}

	id := newID()
	_, err := database.DB.Exec(`
		INSERT INTO sync_queue (id, entity_type, action, entity_id, payload, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`,
		id, entityType, action, entityID, string(payload), nowUTC())
	if err != nil {
		return "", fmt.Errorf("error enqueueing sync entry: %w", err)
	}

	return id, nil
}

const selectQueueEntry = `
	SELECT id, entity_type, action, entity_id, payload, attempts, last_attempt, error, created_at
	FROM sync_queue`

func scanQueueEntry(rows *sql.Rows) (*models.SyncQueueEntry, error) {
	var e models.SyncQueueEntry
	var payload, errMsg sql.NullString
	var lastAttempt sql.NullTime
	err := rows.Scan(&e.ID, &e.EntityType, &e.Action, &e.EntityID,
		&payload, &e.Attempts, &lastAttempt, &errMsg, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error scanning sync entry: %w", err)
	}
	if payload.Valid {
		e.Payload = json.RawMessage(payload.String)
	}
	if lastAttempt.Valid {
		t := lastAttempt.Time
		e.LastAttempt = &t
	}
	e.Error = errMsg.String
	return &e, nil
}

// ListActive returns entries still eligible for draining, oldest first.
// FIFO ordering keeps early failures from being starved by newer work.
func ListActive(maxAttempts int) ([]models.SyncQueueEntry, error) {
	rows, err := database.DB.Query(
		selectQueueEntry+" WHERE attempts < ? ORDER BY created_at ASC, rowid ASC", maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("error querying sync queue: %w", err)
	}
	defer rows.Close()

	var entries []models.SyncQueueEntry
	for rows.Next() {
		e, err := scanQueueEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// GetQueueEntry returns the entry, or nil if absent.
func GetQueueEntry(id string) (*models.SyncQueueEntry, error) {
	rows, err := database.DB.Query(selectQueueEntry+" WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("error querying sync entry: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanQueueEntry(rows)
}

// RecordAttempt records the outcome of one delivery attempt: success deletes
// the entry, failure increments attempts and keeps the error message.
func RecordAttempt(id string, success bool, attemptErr string) error {
	if success {
		result, err := database.DB.Exec("DELETE FROM sync_queue WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("error removing sync entry: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("error checking delete result: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: sync entry %s", ErrNotFound, id)
		}
		return nil
	}

	result, err := database.DB.Exec(`
		UPDATE sync_queue SET attempts = attempts + 1, last_attempt = ?, error = ?
		WHERE id = ?`,
		nowUTC(), attemptErr, id)
	if err != nil {
		return fmt.Errorf("error recording failed attempt: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: sync entry %s", ErrNotFound, id)
	}
	return nil
}

// CountExhausted returns how many entries have hit the attempt cap and are
// waiting for manual clearing.
func CountExhausted(maxAttempts int) (int, error) {
	var count int
	err := database.DB.QueryRow("SELECT COUNT(*) FROM sync_queue WHERE attempts >= ?", maxAttempts).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting exhausted entries: %w", err)
	}
	return count, nil
}

// ClearExhausted deletes entries at or past the attempt cap. This is
// operator-invoked maintenance, never automatic.
func ClearExhausted(maxAttempts int) (int, error) {
	result, err := database.DB.Exec("DELETE FROM sync_queue WHERE attempts >= ?", maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("error clearing exhausted entries: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error checking delete result: %w", err)
	}
	return int(affected), nil
}
