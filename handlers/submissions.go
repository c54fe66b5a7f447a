package handlers

import (
	"encoding/json"
	"net/http"

	"fieldform/backend/models"
	"fieldform/backend/services"
	"fieldform/backend/store"

	"github.com/gorilla/mux"
)

type submissionRequest struct {
	Data models.SubmissionData `json:"data"`
}

// SaveDraft creates or updates the caller's draft for a report. The write
// is durable locally before the response; delivery happens in the
// background.
func SaveDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	sub, err := services.SaveDraft(mux.Vars(r)["id"], userID, req.Data, isOffline())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	requestSync()
	writeJSON(w, http.StatusOK, sub)
}

// SubmitReport finalizes the caller's draft for a report.
func SubmitReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	sub, err := services.Submit(mux.Vars(r)["id"], userID, req.Data, isOffline())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	requestSync()
	writeJSON(w, http.StatusOK, sub)
}

// GetSubmission returns one submission. Only the owner may read it.
func GetSubmission(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	sub, err := store.GetSubmissionByID(mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if sub == nil {
		http.Error(w, "Submission not found", http.StatusNotFound)
		return
	}
	if sub.UserID != userID {
		http.Error(w, "Forbidden: Not your submission", http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// GetMySubmissions lists the caller's submissions, newest first.
func GetMySubmissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	subs, err := store.ListSubmissionsByUser(userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// GetReportSubmissions lists a report's submissions for reviewers.
func GetReportSubmissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	reportID := mux.Vars(r)["id"]
	report, err := store.GetReportByID(reportID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if report == nil {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}
	if report.CreatedBy != userID && !models.Allows(report.Permissions.CanConsolidate, userID) {
		http.Error(w, "Forbidden: No consolidate permission", http.StatusForbidden)
		return
	}

	subs, err := store.ListSubmissionsByReport(reportID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// RetrySubmissionSync re-queues a submission whose delivery attempts were
// exhausted.
func RetrySubmissionSync(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	sub, err := store.GetSubmissionByID(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if sub == nil {
		http.Error(w, "Submission not found", http.StatusNotFound)
		return
	}
	if sub.UserID != userID {
		http.Error(w, "Forbidden: Not your submission", http.StatusForbidden)
		return
	}

	if err := services.RetrySubmissionSync(id); err != nil {
		writeStoreError(w, err)
		return
	}

	requestSync()
	w.WriteHeader(http.StatusAccepted)
}
