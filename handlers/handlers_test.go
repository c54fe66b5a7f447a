package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gorilla/mux"

	"fieldform/backend/connectivity"
	"fieldform/backend/database"
	"fieldform/backend/models"
	"fieldform/backend/store"
	"fieldform/backend/syncer"
)

func TestMain(m *testing.M) {
	os.Setenv("TEST_DB", "1")

	if err := database.InitDB(""); err != nil {
		panic(err)
	}

	code := m.Run()

	database.DB.Close()
	os.Exit(code)
}

func clearTables(t *testing.T) {
	t.Helper()
	tables := []string{"users", "projects", "reports", "report_versions", "submissions", "notifications", "sync_queue"}
	for _, table := range tables {
		if _, err := database.DB.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("Error clearing %s: %v", table, err)
		}
	}
}

// testRouter registers the submission and sync routes the way main does.
func testRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/users", RegisterUser).Methods("POST")
	r.HandleFunc("/api/users/{id}", GetUser).Methods("GET")
	r.HandleFunc("/api/projects", CreateProject).Methods("POST")
	r.HandleFunc("/api/projects", GetProjects).Methods("GET")
	r.HandleFunc("/api/reports", CreateReport).Methods("POST")
	r.HandleFunc("/api/reports/{id}", GetReport).Methods("GET")
	r.HandleFunc("/api/reports/{id}/draft", SaveDraft).Methods("POST")
	r.HandleFunc("/api/reports/{id}/submit", SubmitReport).Methods("POST")
	r.HandleFunc("/api/reports/{id}/submissions", GetReportSubmissions).Methods("GET")
	r.HandleFunc("/api/submissions", GetMySubmissions).Methods("GET")
	r.HandleFunc("/api/submissions/{id}", GetSubmission).Methods("GET")
	r.HandleFunc("/api/submissions/{id}/retry", RetrySubmissionSync).Methods("POST")
	r.HandleFunc("/api/sync/status", GetSyncStatus).Methods("GET")
	r.HandleFunc("/api/sync/trigger", TriggerSync).Methods("POST")
	r.HandleFunc("/api/notifications", GetNotifications).Methods("GET")
	r.HandleFunc("/api/health", HealthCheck).Methods("GET")
	return r
}

func seedHandlerReport(t *testing.T) *models.ReportDefinition {
	t.Helper()
	report, err := store.CreateReport(&models.ReportDefinition{
		ProjectID: "project-1",
		Title:     "Incident Report",
		Fields: []models.Field{
			{ID: "f1", Type: models.FieldTypeText, Label: "Summary", Required: true, Order: 0},
		},
		Permissions: models.ReportPermissions{
			CanFill: []string{models.PermissionAny},
			CanView: []string{models.PermissionAny},
		},
		Status:    models.ReportStatusActive,
		CreatedBy: TestUserID,
	})
	if err != nil {
		t.Fatalf("Error creating report: %v", err)
	}
	return report
}

func TestRegisterUserHandler(t *testing.T) {
	clearTables(t)
	router := testRouter()

	req := NewAuthenticatedRequest("POST", "/api/users", map[string]string{
		"email": "first@example.com",
		"name":  "First",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var user models.User
	if err := json.NewDecoder(rec.Body).Decode(&user); err != nil {
		t.Fatalf("Error decoding response: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("Expected first user to be admin, got %s", user.Role)
	}

	// Duplicate email is a 400
	req = NewAuthenticatedRequest("POST", "/api/users", map[string]string{
		"email": "first@example.com",
		"name":  "Again",
	})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for duplicate email, got %d", rec.Code)
	}
}

func TestUnauthenticatedRequestIsRejected(t *testing.T) {
	clearTables(t)
	router := testRouter()

	req := httptest.NewRequest("GET", "/api/submissions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without auth context, got %d", rec.Code)
	}
}

func TestSaveDraftAndSubmitFlow(t *testing.T) {
	clearTables(t)
	InitSync(nil, connectivity.NewMonitor(false))
	defer InitSync(nil, nil)

	report := seedHandlerReport(t)
	router := testRouter()

	req := NewAuthenticatedRequest("POST", "/api/reports/"+report.ID+"/draft", map[string]any{
		"data": map[string]any{"f1": "half done"},
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 saving draft, got %d: %s", rec.Code, rec.Body.String())
	}

	var draft models.Submission
	if err := json.NewDecoder(rec.Body).Decode(&draft); err != nil {
		t.Fatalf("Error decoding draft: %v", err)
	}
	if draft.Status != models.SubmissionStatusDraft {
		t.Errorf("Expected draft status, got %s", draft.Status)
	}
	if !draft.IsOffline {
		t.Error("Expected offline flag while monitor reports offline")
	}

	req = NewAuthenticatedRequest("POST", "/api/reports/"+report.ID+"/submit", map[string]any{
		"data": map[string]any{"f1": "all done"},
	})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 submitting, got %d: %s", rec.Code, rec.Body.String())
	}

	var submitted models.Submission
	if err := json.NewDecoder(rec.Body).Decode(&submitted); err != nil {
		t.Fatalf("Error decoding submission: %v", err)
	}
	if submitted.ID != draft.ID {
		t.Errorf("Expected the draft to be submitted, got %s", submitted.ID)
	}
	if submitted.Status != models.SubmissionStatusSubmitted {
		t.Errorf("Expected submitted status, got %s", submitted.Status)
	}
	if submitted.SubmittedAt == nil {
		t.Error("Expected submittedAt to be set")
	}
}

func TestSubmitMissingRequiredFieldIs400(t *testing.T) {
	clearTables(t)
	report := seedHandlerReport(t)
	router := testRouter()

	req := NewAuthenticatedRequest("POST", "/api/reports/"+report.ID+"/submit", map[string]any{
		"data": map[string]any{},
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing required field, got %d", rec.Code)
	}
}

func TestGetSubmissionOwnership(t *testing.T) {
	clearTables(t)
	report := seedHandlerReport(t)
	router := testRouter()

	sub, err := store.CreateSubmission(report.ID, "someone-else", models.SubmissionData{}, false)
	if err != nil {
		t.Fatalf("Error creating submission: %v", err)
	}

	req := NewAuthenticatedRequest("GET", "/api/submissions/"+sub.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 reading another user's submission, got %d", rec.Code)
	}

	req = NewAuthenticatedRequest("GET", "/api/submissions/no-such-id", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing submission, got %d", rec.Code)
	}
}

func TestSyncStatusReportsQueueDepth(t *testing.T) {
	clearTables(t)
	monitor := connectivity.NewMonitor(false)
	engine := syncer.New(nil, monitor)
	InitSync(engine, monitor)
	defer InitSync(nil, nil)

	report := seedHandlerReport(t)
	router := testRouter()

	req := NewAuthenticatedRequest("POST", "/api/reports/"+report.ID+"/draft", map[string]any{
		"data": map[string]any{"f1": "queued"},
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 saving draft, got %d", rec.Code)
	}

	req = NewAuthenticatedRequest("GET", "/api/sync/status", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from sync status, got %d", rec.Code)
	}

	var status syncStatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("Error decoding status: %v", err)
	}
	if status.Online {
		t.Error("Expected offline status")
	}
	if status.QueueLength != 1 {
		t.Errorf("Expected queue length 1, got %d", status.QueueLength)
	}
	if status.Failed != 0 {
		t.Errorf("Expected 0 failed entries, got %d", status.Failed)
	}
}

func TestProjectOwnershipEnforced(t *testing.T) {
	clearTables(t)
	router := testRouter()

	req := NewAuthenticatedRequest("POST", "/api/projects", map[string]any{
		"name": "Field Ops",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating project, got %d: %s", rec.Code, rec.Body.String())
	}

	var project models.Project
	if err := json.NewDecoder(rec.Body).Decode(&project); err != nil {
		t.Fatalf("Error decoding project: %v", err)
	}
	if project.OwnerID != TestUserID {
		t.Errorf("Expected owner %s, got %s", TestUserID, project.OwnerID)
	}

	req = NewAuthenticatedRequest("GET", "/api/projects", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 listing projects, got %d", rec.Code)
	}
	var projects []models.Project
	if err := json.NewDecoder(rec.Body).Decode(&projects); err != nil {
		t.Fatalf("Error decoding projects: %v", err)
	}
	if len(projects) != 1 {
		t.Errorf("Expected 1 project, got %d", len(projects))
	}
}

func TestHealthCheck(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from health check, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Error decoding health response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected ok status, got %v", body["status"])
	}
}
