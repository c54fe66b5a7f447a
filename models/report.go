package models

import "time"

// ReportDefinition describes a fillable form: an ordered list of fields plus
// who may fill, edit, view, or consolidate the resulting submissions.
type ReportDefinition struct {
	ID          string            `json:"id"`
	ProjectID   string            `json:"projectId"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Fields      []Field           `json:"fields"`
	Permissions ReportPermissions `json:"permissions"`
	Status      string            `json:"status"` // draft, active, archived
	CreatedBy   string            `json:"createdBy"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type Field struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"` // text, textarea, checkbox, select, file, image
	Label       string   `json:"label"`
	Placeholder string   `json:"placeholder,omitempty"`
	Required    bool     `json:"required"`
	Options     []string `json:"options,omitempty"` // select only
	Order       int      `json:"order"`
}

// ReportPermissions holds sets of user IDs, or the single wildcard "any".
type ReportPermissions struct {
	CanFill        []string `json:"canFill"`
	CanEdit        []string `json:"canEdit"`
	CanView        []string `json:"canView"`
	CanConsolidate []string `json:"canConsolidate"`
}

// Allows reports whether userID appears in the given permission set.
func Allows(set []string, userID string) bool {
	for _, id := range set {
		if id == PermissionAny || id == userID {
			return true
		}
	}
	return false
}

// ReportVersion is a snapshot of a report definition taken before an update,
// kept for audit and consolidation against older submissions.
type ReportVersion struct {
	ID        string    `json:"id"`
	ReportID  string    `json:"reportId"`
	Version   int       `json:"version"`
	Fields    []Field   `json:"fields"`
	CreatedAt time.Time `json:"createdAt"`
}
