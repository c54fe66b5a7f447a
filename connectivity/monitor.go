// Package connectivity abstracts the platform's reachability signal into
// online/offline transition events. Consumers hold a *Monitor and subscribe;
// there is no package-level flag.
package connectivity

import (
	"log"
	"net/http"
	"sync"
	"time"
)

// Monitor tracks whether the remote side is reachable and notifies
// subscribers on every transition. Flapping is passed through as-is;
// debouncing is the platform's problem.
type Monitor struct {
	mu          sync.Mutex
	online      bool
	subscribers []func(online bool)

	probeTicker *time.Ticker
	stopChan    chan struct{}
	client      *http.Client
}

// NewMonitor creates a monitor with the given initial state.
func NewMonitor(initiallyOnline bool) *Monitor {
	return &Monitor{
		online: initiallyOnline,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// IsOnline reports the current reachability state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers a callback invoked on every online/offline
// transition. Callbacks run synchronously on the goroutine that observed
// the change, so the engine's handlers are never interleaved.
func (m *Monitor) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// SetOnline records a reachability change. Subscribers are only notified on
// an actual transition; repeated reports of the same state are ignored.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subscribers := make([]func(bool), len(m.subscribers))
	copy(subscribers, m.subscribers)
	m.mu.Unlock()

	if online {
		log.Println("Connectivity: became online")
	} else {
		log.Println("Connectivity: became offline")
	}

	for _, fn := range subscribers {
		fn(online)
	}
}

// StartProbe begins polling probeURL on the given interval, translating
// request outcomes into SetOnline calls. Any running probe is stopped
// first.
func (m *Monitor) StartProbe(probeURL string, interval time.Duration) {
	m.mu.Lock()
	if m.probeTicker != nil {
		close(m.stopChan)
		m.probeTicker.Stop()
	}
	m.probeTicker = time.NewTicker(interval)
	m.stopChan = make(chan struct{})
	ticker := m.probeTicker
	stop := m.stopChan
	m.mu.Unlock()

	go func() {
		// Probe immediately so startup doesn't wait a full interval
		m.SetOnline(m.probe(probeURL))

		for {
			select {
			case <-ticker.C:
				m.SetOnline(m.probe(probeURL))
			case <-stop:
				return
			}
		}
	}()

	log.Printf("Connectivity probe started against %s every %v", probeURL, interval)
}

// StopProbe stops the polling loop. The current state is left as-is.
func (m *Monitor) StopProbe() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.probeTicker != nil {
		close(m.stopChan)
		m.probeTicker.Stop()
		m.probeTicker = nil
		log.Println("Connectivity probe stopped")
	}
}

func (m *Monitor) probe(probeURL string) bool {
	resp, err := m.client.Get(probeURL)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}
