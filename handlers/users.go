package handlers

import (
	"encoding/json"
	"net/http"

	"fieldform/backend/services"
	"fieldform/backend/store"

	"github.com/gorilla/mux"
)

type registerUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// RegisterUser creates a local user account. The first registered account
// becomes the admin.
func RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := services.RegisterUser(req.Email, req.Name)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// GetUsers lists all users. Admin only.
func GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUser returns one user by id.
func GetUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	user, err := store.GetUserByID(mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if user == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateUserRequest struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
}

// UpdateUser applies a partial update to a user. Role changes are admin
// only, enforced by the route wiring.
func UpdateUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := services.UpdateUser(mux.Vars(r)["id"], store.UserUpdate{
		Name: req.Name,
		Role: req.Role,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
