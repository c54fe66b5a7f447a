// Package services holds the business logic between the HTTP surface and
// the store: the submission lifecycle, and the mutation helpers that pair a
// durable local write with a sync queue entry.
package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"fieldform/backend/models"
	"fieldform/backend/store"
)

// SaveDraft creates or updates the user's draft for a report. The local
// write is durable before this returns; delivery to the remote side is
// asynchronous and observable only through syncStatus. isOffline records
// whether the draft was created without connectivity.
func SaveDraft(reportID, userID string, data models.SubmissionData, isOffline bool) (*models.Submission, error) {
	report, err := store.GetReportByID(reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fmt.Errorf("%w: report %s", store.ErrNotFound, reportID)
	}
	if !models.Allows(report.Permissions.CanFill, userID) {
		return nil, fmt.Errorf("%w: user %s may not fill report %s", store.ErrConstraintViolation, userID, reportID)
	}
	if err := validateData(report, data, false); err != nil {
		return nil, err
	}

	existing, err := store.GetDraftSubmission(reportID, userID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if err := store.UpdateSubmission(existing.ID, store.SubmissionUpdate{Data: data}); err != nil {
			return nil, err
		}
		updated, err := store.GetSubmissionByID(existing.ID)
		if err != nil {
			return nil, err
		}
		if err := enqueueSubmission(updated, models.ActionUpdate); err != nil {
			return nil, err
		}
		return updated, nil
	}

	sub, err := store.CreateSubmission(reportID, userID, data, isOffline)
	if err != nil {
		return nil, err
	}
	if err := enqueueSubmission(sub, models.ActionCreate); err != nil {
		return nil, err
	}
	return sub, nil
}

// Submit moves the user's draft to submitted and stamps submittedAt. When
// no draft exists yet, the submission is created and submitted in one step.
// Already-submitted work is never touched; submitting again starts a new
// submission.
func Submit(reportID, userID string, data models.SubmissionData, isOffline bool) (*models.Submission, error) {
	report, err := store.GetReportByID(reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fmt.Errorf("%w: report %s", store.ErrNotFound, reportID)
	}
	if !models.Allows(report.Permissions.CanFill, userID) {
		return nil, fmt.Errorf("%w: user %s may not fill report %s", store.ErrConstraintViolation, userID, reportID)
	}
	if err := validateData(report, data, true); err != nil {
		return nil, err
	}

	existing, err := store.GetDraftSubmission(reportID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	status := models.SubmissionStatusSubmitted

	if existing != nil {
		err := store.UpdateSubmission(existing.ID, store.SubmissionUpdate{
			Data:        data,
			Status:      &status,
			SubmittedAt: &now,
		})
		if err != nil {
			return nil, err
		}
		updated, err := store.GetSubmissionByID(existing.ID)
		if err != nil {
			return nil, err
		}
		if err := enqueueSubmission(updated, models.ActionUpdate); err != nil {
			return nil, err
		}
		return updated, nil
	}

	sub, err := store.CreateSubmission(reportID, userID, data, isOffline)
	if err != nil {
		return nil, err
	}
	err = store.UpdateSubmission(sub.ID, store.SubmissionUpdate{
		Status:      &status,
		SubmittedAt: &now,
	})
	if err != nil {
		return nil, err
	}
	sub, err = store.GetSubmissionByID(sub.ID)
	if err != nil {
		return nil, err
	}
	if err := enqueueSubmission(sub, models.ActionCreate); err != nil {
		return nil, err
	}
	return sub, nil
}

// ApplyRemoteSubmission writes an authoritative snapshot from the remote
// side into the store. approved/rejected are only reachable this way, and
// only from submitted: a draft never jumps straight to a terminal state.
// A status change to a terminal state notifies the submission's owner.
func ApplyRemoteSubmission(id, status string, data models.SubmissionData, submittedAt *time.Time) error {
	current, err := store.GetSubmissionByID(id)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("%w: submission %s", store.ErrNotFound, id)
	}

	terminal := status == models.SubmissionStatusApproved || status == models.SubmissionStatusRejected
	if terminal && current.Status == models.SubmissionStatusDraft {
		return fmt.Errorf("%w: submission %s cannot go from draft to %s", store.ErrConstraintViolation, id, status)
	}

	if err := store.ApplyRemoteSubmission(id, status, data, submittedAt); err != nil {
		return err
	}

	if terminal && current.Status != status {
		message := fmt.Sprintf("Your submission was %s", status)
		if _, err := store.CreateNotification(current.UserID, message, id); err != nil {
			log.Printf("Error creating notification for submission %s: %v", id, err)
		}
	}

	return nil
}

// RetrySubmissionSync re-enqueues a submission that exhausted its sync
// attempts: syncStatus goes back to pending and a fresh queue entry is
// appended.
func RetrySubmissionSync(id string) error {
	sub, err := store.GetSubmissionByID(id)
	if err != nil {
		return err
	}
	if sub == nil {
		return fmt.Errorf("%w: submission %s", store.ErrNotFound, id)
	}
	if sub.SyncStatus != models.SyncStatusError {
		return fmt.Errorf("%w: submission %s is not in sync error state", store.ErrConstraintViolation, id)
	}

	if err := store.SetSubmissionSyncStatus(id, models.SyncStatusPending); err != nil {
		return err
	}

	sub.SyncStatus = models.SyncStatusPending
	return enqueueSubmission(sub, models.ActionUpdate)
}

func enqueueSubmission(sub *models.Submission, action string) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("error encoding submission payload: %w", err)
	}
	if _, err := store.Enqueue(models.EntitySubmission, action, sub.ID, payload); err != nil {
		return err
	}
	return nil
}

// validateData checks submitted values against the report's field list.
// Drafts may be partial; a final submit requires every required field.
func validateData(report *models.ReportDefinition, data models.SubmissionData, final bool) error {
	fields := make(map[string]models.Field, len(report.Fields))
	for _, f := range report.Fields {
		fields[f.ID] = f
	}

	for fieldID, value := range data {
		field, ok := fields[fieldID]
		if !ok {
			return fmt.Errorf("%w: unknown field %s", store.ErrConstraintViolation, fieldID)
		}
		if field.Type == models.FieldTypeCheckbox {
			if value.Kind == models.ValueString {
				return fmt.Errorf("%w: field %s expects a boolean", store.ErrConstraintViolation, fieldID)
			}
		} else if value.Kind == models.ValueBool {
			return fmt.Errorf("%w: field %s expects a string", store.ErrConstraintViolation, fieldID)
		}
		if field.Type == models.FieldTypeSelect && value.Kind == models.ValueString {
			valid := false
			for _, opt := range field.Options {
				if opt == value.Str {
					valid = true
					break
				}
			}
			if !valid {
				return fmt.Errorf("%w: %q is not an option of field %s", store.ErrConstraintViolation, value.Str, fieldID)
			}
		}
	}

	if final {
		for _, f := range report.Fields {
			if !f.Required {
				continue
			}
			value, ok := data[f.ID]
			if !ok || value.Kind == models.ValueNull || (value.Kind == models.ValueString && value.Str == "") {
				return fmt.Errorf("%w: required field %s is missing", store.ErrConstraintViolation, f.ID)
			}
		}
	}

	return nil
}
