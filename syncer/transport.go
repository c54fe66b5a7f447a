// Package syncer drains the sync queue against the remote backend whenever
// connectivity allows, and re-pushes pending submissions for the active
// session.
package syncer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"fieldform/backend/models"
)

// ErrTransport marks a failed remote delivery. Transport failures are never
// surfaced to the caller that made the local mutation; they are recorded on
// the queue entry and retried.
var ErrTransport = errors.New("transport failure")

// Result is what a successful delivery returns. Snapshot, when present, is
// an authoritative submission state the engine writes back into the store.
type Result struct {
	Snapshot *RemoteSubmission
}

// RemoteSubmission is the authoritative entity snapshot the remote side may
// return, e.g. after a reviewer approved or rejected a submission.
type RemoteSubmission struct {
	ID          string                `json:"id"`
	Status      string                `json:"status"`
	Data        models.SubmissionData `json:"data,omitempty"`
	SubmittedAt *time.Time            `json:"submittedAt,omitempty"`
}

// Transport delivers one queued operation to the remote backend. It must
// enforce its own timeout and surface failure promptly; the engine never
// cancels an in-flight call.
type Transport interface {
	Send(entityType, action, entityID string, payload json.RawMessage) (*Result, error)
}

// HTTPTransport talks to a REST-like backend: one path per entity, verbs
// mapped from queue actions. Entity ids are generated locally, so the
// remote side can deduplicate replayed creates by id.
type HTTPTransport struct {
	BaseURL string
	// TokenSource returns the bearer token to present, or "" for none.
	TokenSource func() (string, error)
	Client      *http.Client
}

// NewHTTPTransport creates a transport for the given base URL.
func NewHTTPTransport(baseURL string, tokenSource func() (string, error)) *HTTPTransport {
	return &HTTPTransport{
		BaseURL:     baseURL,
		TokenSource: tokenSource,
		Client:      &http.Client{Timeout: 10 * time.Second},
	}
}

var collectionPaths = map[string]string{
	models.EntitySubmission: "submissions",
	models.EntityReport:     "reports",
	models.EntityUser:       "users",
	models.EntityProject:    "projects",
}

var actionMethods = map[string]string{
	models.ActionCreate: http.MethodPost,
	models.ActionUpdate: http.MethodPut,
	models.ActionDelete: http.MethodDelete,
}

// Send delivers one operation. Any network error or non-2xx status is a
// transport failure.
func (t *HTTPTransport) Send(entityType, action, entityID string, payload json.RawMessage) (*Result, error) {
	collection, ok := collectionPaths[entityType]
	if !ok {
		return nil, fmt.Errorf("unknown entity type %q", entityType)
	}
	method, ok := actionMethods[action]
	if !ok {
		return nil, fmt.Errorf("unknown action %q", action)
	}

	url := fmt.Sprintf("%s/%s/%s", t.BaseURL, collection, entityID)

	var body io.Reader
	if len(payload) > 0 && action != models.ActionDelete {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if t.TokenSource != nil {
		token, err := t.TokenSource()
		if err != nil {
			return nil, fmt.Errorf("error loading remote token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: error reading response: %v", ErrTransport, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s %s returned %s: %s", ErrTransport, method, url, resp.Status, respBody)
	}

	result := &Result{}
	if len(respBody) > 0 {
		// The remote side may return an authoritative snapshot; anything
		// else in the body is ignored.
		var snapshot RemoteSubmission
		if err := json.Unmarshal(respBody, &snapshot); err == nil && snapshot.ID != "" {
			result.Snapshot = &snapshot
		}
	}

	return result, nil
}
