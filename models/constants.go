package models

// User roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Report statuses
const (
	ReportStatusDraft    = "draft"
	ReportStatusActive   = "active"
	ReportStatusArchived = "archived"
)

// Submission statuses
const (
	SubmissionStatusDraft     = "draft"
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusApproved  = "approved"
	SubmissionStatusRejected  = "rejected"
)

// Sync statuses
const (
	SyncStatusSynced  = "synced"
	SyncStatusPending = "pending"
	SyncStatusError   = "error"
)

// Entity types carried on sync queue entries
const (
	EntitySubmission = "submission"
	EntityReport     = "report"
	EntityUser       = "user"
	EntityProject    = "project"
)

// Sync queue actions
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Field types for report definitions
const (
	FieldTypeText     = "text"
	FieldTypeTextarea = "textarea"
	FieldTypeCheckbox = "checkbox"
	FieldTypeSelect   = "select"
	FieldTypeFile     = "file"
	FieldTypeImage    = "image"
)

// PermissionAny grants a report permission to every user.
const PermissionAny = "any"

// MaxSyncAttempts is the retry cap for sync queue entries. Entries at or
// above the cap are excluded from draining but kept until cleared.
const MaxSyncAttempts = 3
