// Package handlers exposes the local HTTP API the app UI talks to. Every
// mutation is written to the local store first; nothing here waits on the
// network.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"fieldform/backend/middleware"
	"fieldform/backend/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeStoreError maps store errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, store.ErrConstraintViolation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// requireUser pulls the authenticated user id out of the request, writing a
// 401 when it is missing.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserIDFromContext(r)
	if userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return "", false
	}
	// The most recent authenticated caller is the session whose pending
	// submissions the sync engine re-scans.
	if syncEngine != nil {
		syncEngine.SetSessionUser(userID)
	}
	return userID, true
}
