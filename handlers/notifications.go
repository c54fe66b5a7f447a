package handlers

import (
	"net/http"

	"fieldform/backend/models"
	"fieldform/backend/store"

	"github.com/gorilla/mux"
)

// GetNotifications lists the caller's notifications, newest first.
func GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	notifications, err := store.ListNotificationsByUser(userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

// MarkNotificationRead marks one notification as read.
func MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	if err := store.MarkNotificationRead(mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
