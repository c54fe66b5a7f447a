package handlers

import (
	"encoding/json"
	"net/http"

	"fieldform/backend/models"
	"fieldform/backend/services"
	"fieldform/backend/store"

	"github.com/gorilla/mux"
)

type projectRequest struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Settings    *models.ProjectSettings `json:"settings"`
}

// CreateProject creates a project owned by the authenticated user.
func CreateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	settings := models.ProjectSettings{}
	if req.Settings != nil {
		settings = *req.Settings
	}

	project, err := services.CreateProject(req.Name, req.Description, userID, settings)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// GetProjects lists the authenticated user's projects, newest first.
func GetProjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	projects, err := store.ListProjectsByOwner(userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// GetProject returns one project by id.
func GetProject(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	project, err := store.GetProjectByID(mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if project == nil {
		http.Error(w, "Project not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

type updateProjectRequest struct {
	Name        *string                 `json:"name"`
	Description *string                 `json:"description"`
	Settings    *models.ProjectSettings `json:"settings"`
}

// UpdateProject applies a partial update. Only the owner may update.
func UpdateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	if !ownsProject(w, id, userID) {
		return
	}

	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	project, err := services.UpdateProject(id, store.ProjectUpdate{
		Name:        req.Name,
		Description: req.Description,
		Settings:    req.Settings,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// DeleteProject removes a project. Only the owner may delete.
func DeleteProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	if !ownsProject(w, id, userID) {
		return
	}

	if err := services.DeleteProject(id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownsProject writes an error response and returns false unless userID owns
// the project.
func ownsProject(w http.ResponseWriter, projectID, userID string) bool {
	project, err := store.GetProjectByID(projectID)
	if err != nil {
		writeStoreError(w, err)
		return false
	}
	if project == nil {
		http.Error(w, "Project not found", http.StatusNotFound)
		return false
	}
	if project.OwnerID != userID {
		http.Error(w, "Forbidden: Not the project owner", http.StatusForbidden)
		return false
	}
	return true
}
