package store

import (
	"errors"
	"os"
	"testing"

	"fieldform/backend/database"
	"fieldform/backend/models"
	"fieldform/backend/security"
)

func TestMain(m *testing.M) {
	os.Setenv("TEST_DB", "1")

	if err := database.InitDB(""); err != nil {
		panic(err)
	}
	security.InitializeEncryption("store-test-passphrase")

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

func TestFirstUserBecomesAdmin(t *testing.T) {
	clearTables(t)

	first, err := CreateUser("first@example.com", "First")
	if err != nil {
		t.Fatalf("Error creating first user: %v", err)
	}
	if first.Role != models.RoleAdmin {
		t.Errorf("Expected first user role admin, got %s", first.Role)
	}

	second, err := CreateUser("second@example.com", "Second")
	if err != nil {
		t.Fatalf("Error creating second user: %v", err)
	}
	if second.Role != models.RoleUser {
		t.Errorf("Expected second user role user, got %s", second.Role)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	clearTables(t)

	if _, err := CreateUser("dup@example.com", "One"); err != nil {
		t.Fatalf("Error creating user: %v", err)
	}

	_, err := CreateUser("dup@example.com", "Two")
	if !errors.Is(err, ErrConstraintViolation) {
		t.Errorf("Expected constraint violation for duplicate email, got %v", err)
	}
}

func TestGetUserAbsenceIsNotAnError(t *testing.T) {
	clearTables(t)

	user, err := GetUserByID("no-such-user")
	if err != nil {
		t.Fatalf("Expected no error for missing user, got %v", err)
	}
	if user != nil {
		t.Errorf("Expected nil for missing user, got %+v", user)
	}
}

func TestUpdateUserNotFound(t *testing.T) {
	clearTables(t)

	name := "Someone"
	err := UpdateUser("no-such-user", UserUpdate{Name: &name})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestProjectsByOwnerDescending(t *testing.T) {
	clearTables(t)

	u1, err := CreateUser("owner1@example.com", "Owner One")
	if err != nil {
		t.Fatal(err)
	}
	u2, err := CreateUser("owner2@example.com", "Owner Two")
	if err != nil {
		t.Fatal(err)
	}

	pOld, err := CreateProject("Older", "", u1.ID, models.ProjectSettings{AllowOffline: true})
	if err != nil {
		t.Fatal(err)
	}
	pNew, err := CreateProject("Newer", "", u1.ID, models.ProjectSettings{AllowOffline: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := CreateProject("Other owner", "", u2.ID, models.ProjectSettings{}); err != nil {
		t.Fatal(err)
	}

	projects, err := ListProjectsByOwner(u1.ID)
	if err != nil {
		t.Fatalf("Error listing projects: %v", err)
	}

	if len(projects) != 2 {
		t.Fatalf("Expected 2 projects for owner, got %d", len(projects))
	}
	if projects[0].ID != pNew.ID || projects[1].ID != pOld.ID {
		t.Errorf("Expected newest-first ordering, got %s then %s", projects[0].Name, projects[1].Name)
	}
}

func TestReportFieldsRoundTrip(t *testing.T) {
	clearTables(t)

	report, err := CreateReport(&models.ReportDefinition{
		ProjectID: "p1",
		Title:     "Site Inspection",
		CreatedBy: "u1",
		Status:    models.ReportStatusActive,
		Fields: []models.Field{
			{ID: "f1", Type: models.FieldTypeText, Label: "Location", Required: true, Order: 1},
			{ID: "f2", Type: models.FieldTypeSelect, Label: "Severity", Options: []string{"low", "high"}, Order: 2},
		},
		Permissions: models.ReportPermissions{
			CanFill: []string{models.PermissionAny},
			CanView: []string{"u1"},
		},
	})
	if err != nil {
		t.Fatalf("Error creating report: %v", err)
	}

	got, err := GetReportByID(report.ID)
	if err != nil {
		t.Fatalf("Error getting report: %v", err)
	}
	if got == nil {
		t.Fatal("Expected report, got nil")
	}

	if len(got.Fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(got.Fields))
	}
	if got.Fields[1].Options[1] != "high" {
		t.Errorf("Expected select options to survive round trip, got %v", got.Fields[1].Options)
	}
	if !models.Allows(got.Permissions.CanFill, "anyone-at-all") {
		t.Error("Expected wildcard canFill permission")
	}
}

func TestCreateReportRejectsBadField(t *testing.T) {
	clearTables(t)

	_, err := CreateReport(&models.ReportDefinition{
		ProjectID: "p1",
		Title:     "Bad",
		CreatedBy: "u1",
		Fields:    []models.Field{{ID: "f1", Type: "dropdown", Label: "Nope"}},
	})
	if !errors.Is(err, ErrConstraintViolation) {
		t.Errorf("Expected constraint violation for bad field type, got %v", err)
	}

	_, err = CreateReport(&models.ReportDefinition{
		ProjectID: "p1",
		Title:     "Bad",
		CreatedBy: "u1",
		Fields:    []models.Field{{ID: "f1", Type: models.FieldTypeText, Label: "X", Options: []string{"a"}}},
	})
	if !errors.Is(err, ErrConstraintViolation) {
		t.Errorf("Expected constraint violation for options on text field, got %v", err)
	}
}

func TestUpdateReportSnapshotsVersion(t *testing.T) {
	clearTables(t)

	report, err := CreateReport(&models.ReportDefinition{
		ProjectID: "p1",
		Title:     "Versioned",
		CreatedBy: "u1",
		Fields:    []models.Field{{ID: "f1", Type: models.FieldTypeText, Label: "Old", Order: 1}},
	})
	if err != nil {
		t.Fatal(err)
	}

	newFields := []models.Field{
		{ID: "f1", Type: models.FieldTypeText, Label: "New", Order: 1},
		{ID: "f2", Type: models.FieldTypeCheckbox, Label: "Added", Order: 2},
	}
	if err := UpdateReport(report.ID, ReportUpdate{Fields: newFields}); err != nil {
		t.Fatalf("Error updating report: %v", err)
	}

	versions, err := ListReportVersions(report.ID)
	if err != nil {
		t.Fatalf("Error listing versions: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("Expected 1 version snapshot, got %d", len(versions))
	}
	if versions[0].Version != 1 || versions[0].Fields[0].Label != "Old" {
		t.Errorf("Expected snapshot of previous fields, got %+v", versions[0])
	}

	got, err := GetReportByID(report.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Fields) != 2 || got.Fields[0].Label != "New" {
		t.Errorf("Expected updated fields, got %+v", got.Fields)
	}
}

func TestDeleteReportCascadesSubmissions(t *testing.T) {
	clearTables(t)

	report, err := CreateReport(&models.ReportDefinition{
		ProjectID: "p1",
		Title:     "Doomed",
		CreatedBy: "u1",
	})
	if err != nil {
		t.Fatal(err)
	}

	sub, err := CreateSubmission(report.ID, "u1", models.SubmissionData{"f1": models.StringValue("x")}, false)
	if err != nil {
		t.Fatal(err)
	}

	if err := DeleteReport(report.ID); err != nil {
		t.Fatalf("Error deleting report: %v", err)
	}

	gone, err := GetSubmissionByID(sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gone != nil {
		t.Error("Expected dependent submission to be deleted with its report")
	}

	goneReport, err := GetReportByID(report.ID)
	if err != nil {
		t.Fatal(err)
	}
	if goneReport != nil {
		t.Error("Expected report to be deleted")
	}
}

func TestSubmissionVersionStaysFixed(t *testing.T) {
	clearTables(t)

	// The version field is stamped at creation and deliberately not bumped
	// on update; this pins the behavior down.
	sub, err := CreateSubmission("r1", "u1", models.SubmissionData{"f1": models.StringValue("a")}, false)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Version != 1 {
		t.Fatalf("Expected initial version 1, got %d", sub.Version)
	}

	err = UpdateSubmission(sub.ID, SubmissionUpdate{Data: models.SubmissionData{"f1": models.StringValue("b")}})
	if err != nil {
		t.Fatal(err)
	}

	got, err := GetSubmissionByID(sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != 1 {
		t.Errorf("Expected version to stay 1 after update, got %d", got.Version)
	}
	if got.SyncStatus != models.SyncStatusPending {
		t.Errorf("Expected update to mark submission pending, got %s", got.SyncStatus)
	}
}

func TestSyncStatusTransitions(t *testing.T) {
	clearTables(t)

	sub, err := CreateSubmission("r1", "u1", models.SubmissionData{}, false)
	if err != nil {
		t.Fatal(err)
	}

	// pending -> synced
	if err := SetSubmissionSyncStatus(sub.ID, models.SyncStatusSynced); err != nil {
		t.Fatalf("Error setting synced: %v", err)
	}

	// synced -> pending is only allowed through a local edit
	err = SetSubmissionSyncStatus(sub.ID, models.SyncStatusPending)
	if !errors.Is(err, ErrConstraintViolation) {
		t.Errorf("Expected constraint violation for synced->pending, got %v", err)
	}

	// A local edit does mark it pending again
	if err := UpdateSubmission(sub.ID, SubmissionUpdate{Data: models.SubmissionData{}}); err != nil {
		t.Fatal(err)
	}
	got, _ := GetSubmissionByID(sub.ID)
	if got.SyncStatus != models.SyncStatusPending {
		t.Errorf("Expected pending after local edit, got %s", got.SyncStatus)
	}

	// pending -> error, then error -> pending (re-enqueue path)
	if err := SetSubmissionSyncStatus(sub.ID, models.SyncStatusError); err != nil {
		t.Fatal(err)
	}
	if err := SetSubmissionSyncStatus(sub.ID, models.SyncStatusPending); err != nil {
		t.Errorf("Expected error->pending to be allowed, got %v", err)
	}
}

func TestNotifications(t *testing.T) {
	clearTables(t)

	n, err := CreateNotification("u1", "Your submission was approved", "s1")
	if err != nil {
		t.Fatalf("Error creating notification: %v", err)
	}

	list, err := ListNotificationsByUser("u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Read {
		t.Fatalf("Expected one unread notification, got %+v", list)
	}

	if err := MarkNotificationRead(n.ID); err != nil {
		t.Fatal(err)
	}
	list, _ = ListNotificationsByUser("u1")
	if !list[0].Read {
		t.Error("Expected notification to be marked read")
	}
}

func TestRemoteTokenRoundTrip(t *testing.T) {
	if err := SaveRemoteToken("secret-token"); err != nil {
		t.Fatalf("Error saving remote token: %v", err)
	}

	// Stored value must not be the plaintext
	var stored string
	if err := database.DB.QueryRow("SELECT token FROM remote_credentials WHERE id = 1").Scan(&stored); err != nil {
		t.Fatal(err)
	}
	if stored == "secret-token" {
		t.Error("Expected token to be encrypted at rest")
	}

	token, err := GetRemoteToken()
	if err != nil {
		t.Fatalf("Error getting remote token: %v", err)
	}
	if token != "secret-token" {
		t.Errorf("Expected round-tripped token, got %q", token)
	}
}
