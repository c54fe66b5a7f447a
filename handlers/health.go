package handlers

import (
	"net/http"

	"fieldform/backend/database"
)

// HealthCheck reports process liveness and store health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	if err := database.DB.Ping(); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":     status,
		"persistent": database.Persistent,
	})
}
