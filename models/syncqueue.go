package models

import (
	"encoding/json"
	"time"
)

// SyncQueueEntry is one pending remote operation. Entries are appended when a
// local mutation must reach the remote system, deleted on success, and kept
// with an incremented attempt count on failure. Only the sync engine mutates
// entries after creation.
type SyncQueueEntry struct {
	ID          string          `json:"id"`
	EntityType  string          `json:"entityType"` // submission, report, user, project
	Action      string          `json:"action"`     // create, update, delete
	EntityID    string          `json:"entityId"`
	Payload     json.RawMessage `json:"payload"`
	Attempts    int             `json:"attempts"`
	LastAttempt *time.Time      `json:"lastAttempt,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}
