package handlers

import (
	"encoding/json"
	"net/http"

	"fieldform/backend/connectivity"
	"fieldform/backend/database"
	"fieldform/backend/models"
	"fieldform/backend/security"
	"fieldform/backend/store"
	"fieldform/backend/syncer"
)

var (
	syncEngine *syncer.Engine
	netMonitor *connectivity.Monitor
)

// InitSync hands the handlers their references to the sync engine and the
// connectivity monitor. Called once from main before the router is built.
func InitSync(engine *syncer.Engine, monitor *connectivity.Monitor) {
	syncEngine = engine
	netMonitor = monitor
}

// isOffline reports whether the device currently lacks connectivity, so
// submissions created now carry the offline flag.
func isOffline() bool {
	return netMonitor != nil && !netMonitor.IsOnline()
}

// requestSync nudges the engine after a local mutation. A pass already in
// progress absorbs the trigger.
func requestSync() {
	if syncEngine != nil && netMonitor != nil && netMonitor.IsOnline() {
		syncEngine.TriggerSync()
	}
}

type syncStatusResponse struct {
	Online      bool `json:"online"`
	Syncing     bool `json:"syncing"`
	QueueLength int  `json:"queueLength"`
	Failed      int  `json:"failed"`
	Persistent  bool `json:"persistent"`
}

// GetSyncStatus reports connectivity, queue depth and whether the store
// survived onto disk.
func GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	entries, err := store.ListActive(models.MaxSyncAttempts)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	failed, err := store.CountExhausted(models.MaxSyncAttempts)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	resp := syncStatusResponse{
		Online:      netMonitor != nil && netMonitor.IsOnline(),
		Syncing:     syncEngine != nil && syncEngine.Draining(),
		QueueLength: len(entries),
		Failed:      failed,
		Persistent:  database.Persistent,
	}
	writeJSON(w, http.StatusOK, resp)
}

// TriggerSync forces a sync pass, e.g. behind a "sync now" button.
func TriggerSync(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	if syncEngine == nil {
		http.Error(w, "Sync engine not running", http.StatusServiceUnavailable)
		return
	}

	syncEngine.TriggerSync()
	w.WriteHeader(http.StatusAccepted)
}

// ClearExhausted drops queue entries that ran out of delivery attempts.
// Admin only.
func ClearExhausted(w http.ResponseWriter, r *http.Request) {
	cleared, err := store.ClearExhausted(models.MaxSyncAttempts)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"cleared": cleared})
}

type remoteTokenRequest struct {
	Token string `json:"token"`
}

// SaveRemoteToken stores the bearer token the transport presents to the
// remote backend. The token is encrypted at rest. Admin only.
func SaveRemoteToken(w http.ResponseWriter, r *http.Request) {
	var req remoteTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}
	if !security.IsEncryptionInitialized() {
		http.Error(w, "Encryption not configured", http.StatusServiceUnavailable)
		return
	}

	if err := store.SaveRemoteToken(req.Token); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
