package store

import (
	"database/sql"
	"fmt"

	"fieldform/backend/database"
	"fieldform/backend/models"
)

// CreateNotification records a message for a user, typically after the
// remote side changed one of their submissions.
func CreateNotification(userID, message, entityID string) (*models.Notification, error) {
	if userID == "" || message == "" {
		return nil, fmt.Errorf("%w: userId and message are required", ErrConstraintViolation)
	}

	n := &models.Notification{
		ID:        newID(),
		UserID:    userID,
		Message:   message,
		EntityID:  entityID,
		CreatedAt: nowUTC(),
	}

	_, err := database.DB.Exec(`
		INSERT INTO notifications (id, user_id, message, entity_id, read, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`,
		n.ID, n.UserID, n.Message, n.EntityID, n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting notification: %w", err)
	}

	return n, nil
}

// ListNotificationsByUser returns a user's notifications, newest first.
func ListNotificationsByUser(userID string) ([]models.Notification, error) {
	rows, err := database.DB.Query(`
		SELECT id, user_id, message, entity_id, read, created_at
		FROM notifications WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		var entityID sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &entityID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning notification: %w", err)
		}
		n.EntityID = entityID.String
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead marks a notification as read.
func MarkNotificationRead(id string) error {
	result, err := database.DB.Exec("UPDATE notifications SET read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: notification %s", ErrNotFound, id)
	}
	return nil
}
