package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"fieldform/backend/database"
	"fieldform/backend/models"
)

func validReportStatus(status string) bool {
	switch status {
	case models.ReportStatusDraft, models.ReportStatusActive, models.ReportStatusArchived:
		return true
	}
	return false
}

func validFieldType(t string) bool {
	switch t {
	case models.FieldTypeText, models.FieldTypeTextarea, models.FieldTypeCheckbox,
		models.FieldTypeSelect, models.FieldTypeFile, models.FieldTypeImage:
		return true
	}
	return false
}

func validateFields(fields []models.Field) error {
	for _, f := range fields {
		if !validFieldType(f.Type) {
			return fmt.Errorf("%w: invalid field type %q", ErrConstraintViolation, f.Type)
		}
		if len(f.Options) > 0 && f.Type != models.FieldTypeSelect {
			return fmt.Errorf("%w: options are only valid on select fields", ErrConstraintViolation)
		}
	}
	return nil
}

// CreateReport persists a new report definition. Field and permission
// structures are stored JSON-encoded.
func CreateReport(report *models.ReportDefinition) (*models.ReportDefinition, error) {
	if report.ProjectID == "" || report.Title == "" || report.CreatedBy == "" {
		return nil, fmt.Errorf("%w: projectId, title and createdBy are required", ErrConstraintViolation)
	}
	if report.Status == "" {
		report.Status = models.ReportStatusDraft
	}
	if !validReportStatus(report.Status) {
		return nil, fmt.Errorf("%w: invalid report status %q", ErrConstraintViolation, report.Status)
	}
	if err := validateFields(report.Fields); err != nil {
		return nil, err
	}

	fieldsJSON, err := json.Marshal(report.Fields)
	if err != nil {
		return nil, fmt.Errorf("error encoding fields: %w", err)
	}
	permsJSON, err := json.Marshal(report.Permissions)
	if err != nil {
		return nil, fmt.Errorf("error encoding permissions: %w", err)
	}

	now := nowUTC()
	report.ID = newID()
	report.CreatedAt = now
	report.UpdatedAt = now

	_, err = database.DB.Exec(`
		INSERT INTO reports (id, project_id, title, description, fields, permissions, status, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.ProjectID, report.Title, report.Description,
		string(fieldsJSON), string(permsJSON), report.Status, report.CreatedBy,
		report.CreatedAt, report.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting report: %w", err)
	}

	return report, nil
}

const selectReport = `
	SELECT id, project_id, title, description, fields, permissions, status, created_by, created_at, updated_at
	FROM reports`

func scanReport(rows *sql.Rows) (*models.ReportDefinition, error) {
	var r models.ReportDefinition
	var description sql.NullString
	var fieldsJSON, permsJSON string
	err := rows.Scan(&r.ID, &r.ProjectID, &r.Title, &description,
		&fieldsJSON, &permsJSON, &r.Status, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error scanning report: %w", err)
	}
	r.Description = description.String

	if err := json.Unmarshal([]byte(fieldsJSON), &r.Fields); err != nil {
		return nil, fmt.Errorf("error decoding fields for report %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(permsJSON), &r.Permissions); err != nil {
		return nil, fmt.Errorf("error decoding permissions for report %s: %w", r.ID, err)
	}
	return &r, nil
}

// GetReportByID returns the report definition, or nil if absent.
func GetReportByID(id string) (*models.ReportDefinition, error) {
	rows, err := database.DB.Query(selectReport+" WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("error querying report: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanReport(rows)
}

// ListReportsByProject returns a project's reports, newest first.
func ListReportsByProject(projectID string) ([]models.ReportDefinition, error) {
	rows, err := database.DB.Query(selectReport+" WHERE project_id = ? ORDER BY created_at DESC", projectID)
	if err != nil {
		return nil, fmt.Errorf("error querying reports: %w", err)
	}
	defer rows.Close()

	var reports []models.ReportDefinition
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

// ReportUpdate holds the fields UpdateReport may change.
type ReportUpdate struct {
	Title       *string
	Description *string
	Fields      []models.Field
	Permissions *models.ReportPermissions
	Status      *string
}

// UpdateReport merges the supplied fields and refreshes updatedAt. When the
// field list changes, the previous definition is snapshotted into
// report_versions first so older submissions stay interpretable.
func UpdateReport(id string, update ReportUpdate) error {
	if update.Status != nil && !validReportStatus(*update.Status) {
		return fmt.Errorf("%w: invalid report status %q", ErrConstraintViolation, *update.Status)
	}
	if update.Fields != nil {
		if err := validateFields(update.Fields); err != nil {
			return err
		}
	}

	current, err := GetReportByID(id)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("%w: report %s", ErrNotFound, id)
	}

	if update.Fields != nil {
		if err := snapshotReportVersion(current); err != nil {
			return err
		}
	}

	query := "UPDATE reports SET updated_at = ?"
	args := []any{nowUTC()}

	if update.Title != nil {
		query += ", title = ?"
		args = append(args, *update.Title)
	}
	if update.Description != nil {
		query += ", description = ?"
		args = append(args, *update.Description)
	}
	if update.Fields != nil {
		fieldsJSON, err := json.Marshal(update.Fields)
		if err != nil {
			return fmt.Errorf("error encoding fields: %w", err)
		}
		query += ", fields = ?"
		args = append(args, string(fieldsJSON))
	}
	if update.Permissions != nil {
		permsJSON, err := json.Marshal(update.Permissions)
		if err != nil {
			return fmt.Errorf("error encoding permissions: %w", err)
		}
		query += ", permissions = ?"
		args = append(args, string(permsJSON))
	}
	if update.Status != nil {
		query += ", status = ?"
		args = append(args, *update.Status)
	}

	query += " WHERE id = ?"
	args = append(args, id)

	if _, err := database.DB.Exec(query, args...); err != nil {
		return fmt.Errorf("error updating report: %w", err)
	}
	return nil
}

// snapshotReportVersion records the report's current field list under the
// next version number.
func snapshotReportVersion(report *models.ReportDefinition) error {
	var maxVersion sql.NullInt64
	err := database.DB.QueryRow(
		"SELECT MAX(version) FROM report_versions WHERE report_id = ?", report.ID).Scan(&maxVersion)
	if err != nil {
		return fmt.Errorf("error checking report versions: %w", err)
	}

	fieldsJSON, err := json.Marshal(report.Fields)
	if err != nil {
		return fmt.Errorf("error encoding fields for version snapshot: %w", err)
	}

	_, err = database.DB.Exec(`
		INSERT INTO report_versions (id, report_id, version, fields, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		newID(), report.ID, maxVersion.Int64+1, string(fieldsJSON), nowUTC())
	if err != nil {
		return fmt.Errorf("error inserting report version: %w", err)
	}
	return nil
}

// ListReportVersions returns a report's snapshots, newest first.
func ListReportVersions(reportID string) ([]models.ReportVersion, error) {
	rows, err := database.DB.Query(`
		SELECT id, report_id, version, fields, created_at
		FROM report_versions WHERE report_id = ? ORDER BY version DESC`, reportID)
	if err != nil {
		return nil, fmt.Errorf("error querying report versions: %w", err)
	}
	defer rows.Close()

	var versions []models.ReportVersion
	for rows.Next() {
		var v models.ReportVersion
		var fieldsJSON string
		if err := rows.Scan(&v.ID, &v.ReportID, &v.Version, &fieldsJSON, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning report version: %w", err)
		}
		if err := json.Unmarshal([]byte(fieldsJSON), &v.Fields); err != nil {
			return nil, fmt.Errorf("error decoding version fields: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// DeleteReport removes a report definition. Dependent submissions are
// deleted first in an explicit step so no orphans are left behind.
func DeleteReport(id string) error {
	result, err := database.DB.Exec("DELETE FROM submissions WHERE report_id = ?", id)
	if err != nil {
		return fmt.Errorf("error deleting report submissions: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		log.Printf("Deleted %d submissions for report %s", n, id)
	}

	if _, err := database.DB.Exec("DELETE FROM report_versions WHERE report_id = ?", id); err != nil {
		return fmt.Errorf("error deleting report versions: %w", err)
	}

	result, err = database.DB.Exec("DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error deleting report: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: report %s", ErrNotFound, id)
	}
	return nil
}
