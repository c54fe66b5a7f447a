package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Submission is one user's answers to a report. Data maps field IDs to
// values. SyncStatus tracks whether the latest local state has reached the
// remote side; Status is the review state machine
// (draft -> submitted -> approved/rejected).
type Submission struct {
	ID           string         `json:"id"`
	ReportID     string         `json:"reportId"`
	UserID       string         `json:"userId"`
	Data         SubmissionData `json:"data"`
	Status       string         `json:"status"`
	SubmittedAt  *time.Time     `json:"submittedAt,omitempty"`
	LastModified time.Time      `json:"lastModified"`
	Version      int            `json:"version"`
	IsOffline    bool           `json:"isOffline"`
	SyncStatus   string         `json:"syncStatus"` // synced, pending, error
}

type SubmissionData map[string]FieldValue

// ValueKind tags the type of a field value.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueString
	ValueBool
)

// FieldValue is a single answer: a string, a boolean, or null. Values are
// kept tagged rather than as interface{} so JSON round-trips are exact.
type FieldValue struct {
	Kind ValueKind
	Str  string
	Bool bool
}

func StringValue(s string) FieldValue { return FieldValue{Kind: ValueString, Str: s} }
func BoolValue(b bool) FieldValue     { return FieldValue{Kind: ValueBool, Bool: b} }
func NullValue() FieldValue           { return FieldValue{Kind: ValueNull} }

func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueString:
		return json.Marshal(v.Str)
	case ValueBool:
		return json.Marshal(v.Bool)
	default:
		return []byte("null"), nil
	}
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = FieldValue{Kind: ValueNull}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = FieldValue{Kind: ValueString, Str: s}
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = FieldValue{Kind: ValueBool, Bool: b}
		return nil
	}
	return fmt.Errorf("field value must be a string, boolean, or null: %s", data)
}

// Encode serializes submission data for storage.
func (d SubmissionData) Encode() (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("error encoding submission data: %w", err)
	}
	return string(raw), nil
}

// DecodeSubmissionData parses the stored representation of submission data.
func DecodeSubmissionData(raw string) (SubmissionData, error) {
	if raw == "" {
		return SubmissionData{}, nil
	}
	var d SubmissionData
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("error decoding submission data: %w", err)
	}
	return d, nil
}
