// Package store is the durable entity store: CRUD for users, projects,
// report definitions, submissions and notifications, plus the sync queue.
// All writes go through database.DB and are durable before returning.
package store

import (
	"time"

	"github.com/google/uuid"
)

// newID generates entity ids locally so that create operations can be
// retried against the remote side and deduplicated by id.
func newID() string {
	return uuid.NewString()
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
