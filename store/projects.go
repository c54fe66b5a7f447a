package store

import (
	"database/sql"
	"fmt"

	"fieldform/backend/database"
	"fieldform/backend/models"
)

// CreateProject persists a new project owned by ownerID. The id is generated
// here; createdAt/updatedAt are stamped.
func CreateProject(name, description, ownerID string, settings models.ProjectSettings) (*models.Project, error) {
	if name == "" || ownerID == "" {
		return nil, fmt.Errorf("%w: name and ownerId are required", ErrConstraintViolation)
	}

	now := nowUTC()
	project := &models.Project{
		ID:          newID(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		Settings:    settings,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := database.DB.Exec(`
		INSERT INTO projects (id, name, description, owner_id, primary_color, secondary_color, allow_offline, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID, project.Name, project.Description, project.OwnerID,
		settings.PrimaryColor, settings.SecondaryColor, settings.AllowOffline,
		project.CreatedAt, project.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting project: %w", err)
	}

	return project, nil
}

// GetProjectByID returns the project, or nil if there is no such project.
func GetProjectByID(id string) (*models.Project, error) {
	rows, err := database.DB.Query(selectProject+" WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("error querying project: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	p, err := scanProject(rows)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjectsByOwner returns the owner's projects, newest first.
func ListProjectsByOwner(ownerID string) ([]models.Project, error) {
	rows, err := database.DB.Query(selectProject+" WHERE owner_id = ? ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, fmt.Errorf("error querying projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

const selectProject = `
	SELECT id, name, description, owner_id, primary_color, secondary_color, allow_offline, created_at, updated_at
	FROM projects`

func scanProject(rows *sql.Rows) (*models.Project, error) {
	var p models.Project
	var description, primary, secondary sql.NullString
	err := rows.Scan(&p.ID, &p.Name, &description, &p.OwnerID,
		&primary, &secondary, &p.Settings.AllowOffline, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error scanning project: %w", err)
	}
	p.Description = description.String
	p.Settings.PrimaryColor = primary.String
	p.Settings.SecondaryColor = secondary.String
	return &p, nil
}

// ProjectUpdate holds the fields UpdateProject may change.
type ProjectUpdate struct {
	Name        *string
	Description *string
	Settings    *models.ProjectSettings
}

// UpdateProject merges the supplied fields and refreshes updatedAt.
func UpdateProject(id string, update ProjectUpdate) error {
	query := "UPDATE projects SET updated_at = ?"
	args := []any{nowUTC()}

	if update.Name != nil {
		query += ", name = ?"
		args = append(args, *update.Name)
	}
	if update.Description != nil {
		query += ", description = ?"
		args = append(args, *update.Description)
	}
	if update.Settings != nil {
		query += ", primary_color = ?, secondary_color = ?, allow_offline = ?"
		args = append(args, update.Settings.PrimaryColor, update.Settings.SecondaryColor, update.Settings.AllowOffline)
	}

	query += " WHERE id = ?"
	args = append(args, id)

	result, err := database.DB.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("error updating project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: project %s", ErrNotFound, id)
	}
	return nil
}

// DeleteProject removes a project. Reports under the project are not
// cascaded; deleting an owner's data wholesale is out of scope.
func DeleteProject(id string) error {
	result, err := database.DB.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error deleting project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: project %s", ErrNotFound, id)
	}
	return nil
}
