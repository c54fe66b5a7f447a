package store

import (
	"database/sql"
	"fmt"
	"time"

	"fieldform/backend/database"
	"fieldform/backend/models"
)

func validSubmissionStatus(status string) bool {
	switch status {
	case models.SubmissionStatusDraft, models.SubmissionStatusSubmitted,
		models.SubmissionStatusApproved, models.SubmissionStatusRejected:
		return true
	}
	return false
}

func validSyncStatus(status string) bool {
	switch status {
	case models.SyncStatusSynced, models.SyncStatusPending, models.SyncStatusError:
		return true
	}
	return false
}

// CreateSubmission persists a new submission. The id is generated locally;
// version starts at 1 and is not bumped by later updates.
func CreateSubmission(reportID, userID string, data models.SubmissionData, isOffline bool) (*models.Submission, error) {
	if reportID == "" || userID == "" {
		return nil, fmt.Errorf("%w: reportId and userId are required", ErrConstraintViolation)
	}

	encoded, err := data.Encode()
	if err != nil {
		return nil, err
	}

	now := nowUTC()
	sub := &models.Submission{
		ID:           newID(),
		ReportID:     reportID,
		UserID:       userID,
		Data:         data,
		Status:       models.SubmissionStatusDraft,
		LastModified: now,
		Version:      1,
		IsOffline:    isOffline,
		SyncStatus:   models.SyncStatusPending,
	}

	_, err = database.DB.Exec(`
		INSERT INTO submissions (id, report_id, user_id, data, status, submitted_at, last_modified, version, is_offline, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.ReportID, sub.UserID, encoded, sub.Status, nil,
		sub.LastModified, sub.Version, sub.IsOffline, sub.SyncStatus)
	if err != nil {
		return nil, fmt.Errorf("error inserting submission: %w", err)
	}

	return sub, nil
}

const selectSubmission = `
	SELECT id, report_id, user_id, data, status, submitted_at, last_modified, version, is_offline, sync_status
	FROM submissions`

func scanSubmission(rows *sql.Rows) (*models.Submission, error) {
	var s models.Submission
	var encoded string
	var submittedAt sql.NullTime
	err := rows.Scan(&s.ID, &s.ReportID, &s.UserID, &encoded, &s.Status,
		&submittedAt, &s.LastModified, &s.Version, &s.IsOffline, &s.SyncStatus)
	if err != nil {
		return nil, fmt.Errorf("error scanning submission: %w", err)
	}
	if submittedAt.Valid {
		t := submittedAt.Time
		s.SubmittedAt = &t
	}

	s.Data, err = models.DecodeSubmissionData(encoded)
	if err != nil {
		return nil, fmt.Errorf("error decoding data for submission %s: %w", s.ID, err)
	}
	return &s, nil
}

// GetSubmissionByID returns the submission, or nil if absent.
func GetSubmissionByID(id string) (*models.Submission, error) {
	rows, err := database.DB.Query(selectSubmission+" WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("error querying submission: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanSubmission(rows)
}

func listSubmissions(query string, args ...any) ([]models.Submission, error) {
	rows, err := database.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

// ListSubmissionsByUser returns a user's submissions, most recently
// modified first.
func ListSubmissionsByUser(userID string) ([]models.Submission, error) {
	return listSubmissions(selectSubmission+" WHERE user_id = ? ORDER BY last_modified DESC", userID)
}

// ListSubmissionsByReport returns a report's submissions, most recently
// modified first.
func ListSubmissionsByReport(reportID string) ([]models.Submission, error) {
	return listSubmissions(selectSubmission+" WHERE report_id = ? ORDER BY last_modified DESC", reportID)
}

// GetDraftSubmission returns the user's draft for a report, or nil. Fill
// actions re-enter an existing draft instead of piling up new ones.
func GetDraftSubmission(reportID, userID string) (*models.Submission, error) {
	rows, err := database.DB.Query(
		selectSubmission+" WHERE report_id = ? AND user_id = ? AND status = ? ORDER BY last_modified DESC LIMIT 1",
		reportID, userID, models.SubmissionStatusDraft)
	if err != nil {
		return nil, fmt.Errorf("error querying draft submission: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanSubmission(rows)
}

// ListPendingSubmissions returns the user's submissions whose latest local
// state has not reached the remote side yet.
func ListPendingSubmissions(userID string) ([]models.Submission, error) {
	return listSubmissions(
		selectSubmission+" WHERE user_id = ? AND sync_status = ? ORDER BY last_modified ASC",
		userID, models.SyncStatusPending)
}

// SubmissionUpdate holds the fields UpdateSubmission may change. Updating
// Data marks the submission pending again; it does not bump version.
type SubmissionUpdate struct {
	Data        models.SubmissionData
	Status      *string
	SubmittedAt *time.Time
}

// UpdateSubmission merges the supplied fields, always refreshes
// lastModified, and resets syncStatus to pending since the local state now
// differs from the remote mirror.
func UpdateSubmission(id string, update SubmissionUpdate) error {
	if update.Status != nil && !validSubmissionStatus(*update.Status) {
		return fmt.Errorf("%w: invalid submission status %q", ErrConstraintViolation, *update.Status)
	}

	query := "UPDATE submissions SET last_modified = ?, sync_status = ?"
	args := []any{nowUTC(), models.SyncStatusPending}

	if update.Data != nil {
		encoded, err := update.Data.Encode()
		if err != nil {
			return err
		}
		query += ", data = ?"
		args = append(args, encoded)
	}
	if update.Status != nil {
		query += ", status = ?"
		args = append(args, *update.Status)
	}
	if update.SubmittedAt != nil {
		query += ", submitted_at = ?"
		args = append(args, *update.SubmittedAt)
	}

	query += " WHERE id = ?"
	args = append(args, id)

	result, err := database.DB.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("error updating submission: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: submission %s", ErrNotFound, id)
	}
	return nil
}

// SetSubmissionSyncStatus records the outcome of a sync attempt. Allowed
// transitions: pending->synced, pending->error, error->pending. A synced
// submission only goes back to pending through a local edit
// (UpdateSubmission), never through this call.
func SetSubmissionSyncStatus(id, status string) error {
	if !validSyncStatus(status) {
		return fmt.Errorf("%w: invalid sync status %q", ErrConstraintViolation, status)
	}

	sub, err := GetSubmissionByID(id)
	if err != nil {
		return err
	}
	if sub == nil {
		return fmt.Errorf("%w: submission %s", ErrNotFound, id)
	}

	if sub.SyncStatus == models.SyncStatusSynced && status == models.SyncStatusPending {
		return fmt.Errorf("%w: submission %s is already synced", ErrConstraintViolation, id)
	}

	_, err = database.DB.Exec("UPDATE submissions SET sync_status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("error setting sync status: %w", err)
	}
	return nil
}

// ApplyRemoteSubmission overwrites a submission with an authoritative
// snapshot returned by the remote side. Unlike UpdateSubmission this does
// not mark the submission pending: the remote state is by definition the
// mirrored state, so syncStatus becomes synced.
func ApplyRemoteSubmission(id, status string, data models.SubmissionData, submittedAt *time.Time) error {
	if !validSubmissionStatus(status) {
		return fmt.Errorf("%w: invalid submission status %q", ErrConstraintViolation, status)
	}

	query := "UPDATE submissions SET status = ?, sync_status = ?, last_modified = ?"
	args := []any{status, models.SyncStatusSynced, nowUTC()}

	if data != nil {
		encoded, err := data.Encode()
		if err != nil {
			return err
		}
		query += ", data = ?"
		args = append(args, encoded)
	}
	if submittedAt != nil {
		query += ", submitted_at = ?"
		args = append(args, *submittedAt)
	}

	query += " WHERE id = ?"
	args = append(args, id)

	result, err := database.DB.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("error applying remote submission: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: submission %s", ErrNotFound, id)
	}
	return nil
}

// DeleteSubmission removes a submission.
func DeleteSubmission(id string) error {
	result, err := database.DB.Exec("DELETE FROM submissions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error deleting submission: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: submission %s", ErrNotFound, id)
	}
	return nil
}
