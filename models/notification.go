package models

import "time"

// Notification tells a user about a remote-driven change, e.g. a submission
// that was approved or rejected by the server.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	EntityID  string    `json:"entityId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
