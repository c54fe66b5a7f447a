package handlers

import (
	"encoding/json"
	"net/http"

	"fieldform/backend/middleware"
	"fieldform/backend/models"
	"fieldform/backend/services"
	"fieldform/backend/store"

	"github.com/gorilla/mux"
)

type createReportRequest struct {
	ProjectID   string                    `json:"projectId"`
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Fields      []models.Field            `json:"fields"`
	Permissions *models.ReportPermissions `json:"permissions"`
	Status      string                    `json:"status"`
}

// CreateReport creates a report definition in the given project.
func CreateReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	report := &models.ReportDefinition{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Fields:      req.Fields,
		Status:      req.Status,
		CreatedBy:   userID,
	}
	if req.Permissions != nil {
		report.Permissions = *req.Permissions
	} else {
		// Creator-only until permissions are granted
		report.Permissions = models.ReportPermissions{
			CanFill: []string{userID},
			CanEdit: []string{userID},
			CanView: []string{userID},
		}
	}

	created, err := services.CreateReport(report)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetReports lists a project's reports, filtered down to those the caller
// may view.
func GetReports(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	projectID := r.URL.Query().Get("projectId")
	if projectID == "" {
		http.Error(w, "projectId query parameter is required", http.StatusBadRequest)
		return
	}

	reports, err := store.ListReportsByProject(projectID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	visible := []models.ReportDefinition{}
	for _, report := range reports {
		if report.CreatedBy == userID || middleware.CheckReportPermission(userID, report.Permissions.CanView) {
			visible = append(visible, report)
		}
	}
	writeJSON(w, http.StatusOK, visible)
}

// GetReport returns one report definition by id.
func GetReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	report, err := store.GetReportByID(mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if report == nil {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}
	if report.CreatedBy != userID &&
		!middleware.CheckReportPermission(userID, report.Permissions.CanView) &&
		!middleware.CheckReportPermission(userID, report.Permissions.CanFill) {
		http.Error(w, "Forbidden: No view permission", http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type updateReportRequest struct {
	Title       *string                   `json:"title"`
	Description *string                   `json:"description"`
	Fields      []models.Field            `json:"fields"`
	Permissions *models.ReportPermissions `json:"permissions"`
	Status      *string                   `json:"status"`
}

// UpdateReport applies a partial update. Changing the field list snapshots
// the previous version.
func UpdateReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	report, err := store.GetReportByID(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if report == nil {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}
	if report.CreatedBy != userID && !middleware.CheckReportPermission(userID, report.Permissions.CanEdit) {
		http.Error(w, "Forbidden: No edit permission", http.StatusForbidden)
		return
	}

	var req updateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := services.UpdateReport(id, store.ReportUpdate{
		Title:       req.Title,
		Description: req.Description,
		Fields:      req.Fields,
		Permissions: req.Permissions,
		Status:      req.Status,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteReport removes a report definition and its submissions.
func DeleteReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	report, err := store.GetReportByID(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if report == nil {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}
	if report.CreatedBy != userID && !middleware.CheckReportPermission(userID, report.Permissions.CanEdit) {
		http.Error(w, "Forbidden: No edit permission", http.StatusForbidden)
		return
	}

	if err := services.DeleteReport(id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetReportVersions lists a report's archived field-list snapshots.
func GetReportVersions(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	versions, err := store.ListReportVersions(mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if versions == nil {
		versions = []models.ReportVersion{}
	}
	writeJSON(w, http.StatusOK, versions)
}
