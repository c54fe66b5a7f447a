package syncer

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"fieldform/backend/connectivity"
	"fieldform/backend/models"
	"fieldform/backend/services"
	"fieldform/backend/store"
)

// DefaultInterval is the periodic re-trigger cadence while online.
const DefaultInterval = 30 * time.Second

// stopper is what a scheduled trigger hands back so it can be cancelled.
// *time.Timer satisfies it; tests substitute their own.
type stopper interface {
	Stop() bool
}

// Engine drains the sync queue. At most one drain pass runs at a time: a
// trigger that arrives mid-pass is dropped, not queued, and the next
// periodic tick picks up whatever work remains.
type Engine struct {
	transport   Transport
	monitor     *connectivity.Monitor
	interval    time.Duration
	maxAttempts int

	mu            sync.Mutex
	draining      bool
	timer         stopper
	sessionUserID string

	// schedule is a seam for tests; the default arms a real timer.
	schedule func(d time.Duration, fn func()) stopper
}

// New creates an engine over the given transport and connectivity monitor.
func New(transport Transport, monitor *connectivity.Monitor) *Engine {
	return &Engine{
		transport:   transport,
		monitor:     monitor,
		interval:    DefaultInterval,
		maxAttempts: models.MaxSyncAttempts,
		schedule: func(d time.Duration, fn func()) stopper {
			return time.AfterFunc(d, fn)
		},
	}
}

// SetInterval overrides the periodic cadence. Must be called before Start.
func (e *Engine) SetInterval(d time.Duration) {
	e.interval = d
}

// SetSessionUser records whose pending submissions the drain pass re-scans.
func (e *Engine) SetSessionUser(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessionUserID = userID
}

func (e *Engine) sessionUser() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionUserID
}

// Draining reports whether a pass is currently running.
func (e *Engine) Draining() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draining
}

// Start wires the engine to connectivity transitions: coming online starts
// a pass, going offline cancels the periodic timer. In-flight network calls
// are never aborted; offline only prevents further scheduling.
func (e *Engine) Start() {
	e.monitor.Subscribe(func(online bool) {
		if online {
			go e.SyncNow()
		} else {
			e.cancelTimer()
		}
	})

	if e.monitor.IsOnline() {
		go e.SyncNow()
	}
}

// TriggerSync requests an asynchronous pass, e.g. from the force-sync
// endpoint or the periodic timer.
func (e *Engine) TriggerSync() {
	go e.SyncNow()
}

// SyncNow runs one drain pass synchronously. Returns false without doing
// anything if a pass is already in progress.
func (e *Engine) SyncNow() bool {
	e.mu.Lock()
	if e.draining {
		e.mu.Unlock()
		return false
	}
	e.draining = true
	e.cancelTimerLocked()
	e.mu.Unlock()

	e.drainQueue()
	e.pushPendingSubmissions()

	e.mu.Lock()
	e.draining = false
	if e.monitor.IsOnline() {
		e.timer = e.schedule(e.interval, e.TriggerSync)
	}
	e.mu.Unlock()
	return true
}

func (e *Engine) cancelTimer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelTimerLocked()
}

func (e *Engine) cancelTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// drainQueue sends every active queue entry, oldest first. No store lock is
// held across the network call: the delivery and the bookkeeping that
// follows it are independent steps, so a crash between them leaves the
// entry queued and the retry relies on id-based dedupe remotely.
func (e *Engine) drainQueue() {
	entries, err := store.ListActive(e.maxAttempts)
	if err != nil {
		log.Printf("Sync: error listing active queue entries: %v", err)
		return
	}
	if len(entries) == 0 {
		return
	}

	log.Printf("Sync: draining %d queue entries", len(entries))

	for _, entry := range entries {
		result, sendErr := e.transport.Send(entry.EntityType, entry.Action, entry.EntityID, entry.Payload)
		if sendErr != nil {
			log.Printf("Sync: entry %s (%s %s %s) failed: %v",
				entry.ID, entry.Action, entry.EntityType, entry.EntityID, sendErr)
			if err := store.RecordAttempt(entry.ID, false, sendErr.Error()); err != nil {
				log.Printf("Sync: error recording failed attempt: %v", err)
				continue
			}
			// Mark the submission itself once retries are exhausted
			if entry.EntityType == models.EntitySubmission && entry.Attempts+1 >= e.maxAttempts {
				e.markSubmissionSync(entry.EntityID, models.SyncStatusError)
			}
			continue
		}

		if err := store.RecordAttempt(entry.ID, true, ""); err != nil {
			log.Printf("Sync: error removing delivered entry %s: %v", entry.ID, err)
		}

		if entry.EntityType == models.EntitySubmission && entry.Action != models.ActionDelete {
			e.applyDeliveryResult(entry.EntityID, result)
		}
	}
}

// pushPendingSubmissions is the submission-specific path layered on top of
// the generic queue: every pending submission of the session user is pushed
// with its full current state.
func (e *Engine) pushPendingSubmissions() {
	userID := e.sessionUser()
	if userID == "" {
		return
	}

	pending, err := store.ListPendingSubmissions(userID)
	if err != nil {
		log.Printf("Sync: error listing pending submissions: %v", err)
		return
	}

	for _, sub := range pending {
		payload, err := json.Marshal(sub)
		if err != nil {
			log.Printf("Sync: error encoding submission %s: %v", sub.ID, err)
			continue
		}

		result, sendErr := e.transport.Send(models.EntitySubmission, models.ActionUpdate, sub.ID, payload)
		if sendErr != nil {
			log.Printf("Sync: pending submission %s failed: %v", sub.ID, sendErr)
			e.markSubmissionSync(sub.ID, models.SyncStatusError)
			continue
		}

		e.applyDeliveryResult(sub.ID, result)
	}
}

// applyDeliveryResult marks a submission synced, or writes back the
// authoritative snapshot when the remote side returned one.
func (e *Engine) applyDeliveryResult(submissionID string, result *Result) {
	if result != nil && result.Snapshot != nil {
		snap := result.Snapshot
		err := services.ApplyRemoteSubmission(snap.ID, snap.Status, snap.Data, snap.SubmittedAt)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Printf("Sync: error applying remote snapshot for %s: %v", snap.ID, err)
		}
		return
	}
	e.markSubmissionSync(submissionID, models.SyncStatusSynced)
}

func (e *Engine) markSubmissionSync(submissionID, status string) {
	err := store.SetSubmissionSyncStatus(submissionID, status)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("Sync: error setting sync status for %s: %v", submissionID, err)
	}
}
