package services

import (
	"fieldform/backend/models"
	"fieldform/backend/store"
)

// CreateProject creates a project locally and queues it for the remote
// backend.
func CreateProject(name, description, ownerID string, settings models.ProjectSettings) (*models.Project, error) {
	project, err := store.CreateProject(name, description, ownerID, settings)
	if err != nil {
		return nil, err
	}
	if err := enqueueEntity(models.EntityProject, models.ActionCreate, project.ID, project); err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProject applies a partial update and queues the new state.
func UpdateProject(id string, update store.ProjectUpdate) (*models.Project, error) {
	if err := store.UpdateProject(id, update); err != nil {
		return nil, err
	}
	project, err := store.GetProjectByID(id)
	if err != nil {
		return nil, err
	}
	if err := enqueueEntity(models.EntityProject, models.ActionUpdate, id, project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes a project locally and queues the deletion.
func DeleteProject(id string) error {
	if err := store.DeleteProject(id); err != nil {
		return err
	}
	if _, err := store.Enqueue(models.EntityProject, models.ActionDelete, id, nil); err != nil {
		return err
	}
	return nil
}
