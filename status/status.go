// Package status exposes a single read-only JSON snapshot endpoint over the
// running scraper's request counters, cache occupancy, and last poll
// outcome, adapted from the reference engine's dashboard server (§4.J,
// §6 "Status endpoint"). Every write-capable endpoint of that dashboard
// (hot-reload config, proxy upload, node roster) is dropped: there is no
// multi-session fleet or proxy rotation concept here, so nothing in this
// domain needs reconfiguring at runtime (see DESIGN.md).
package status

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ccoodduu/studieplus-scraper/cache"
	"github.com/ccoodduu/studieplus-scraper/metrics"
)

// Snapshot is the JSON payload served at GET /status.
type Snapshot struct {
	Requests          uint64  `json:"requests"`
	Successes         uint64  `json:"successes"`
	Failures          uint64  `json:"failures"`
	RequestsPerSecond float64 `json:"requestsPerSecond"`
	CacheEntries      int     `json:"cacheEntries"`
	LastPollAt        string  `json:"lastPollAt,omitempty"`
	LastPollError     string  `json:"lastPollError,omitempty"`
}

// Server serves the read-only /status snapshot.
type Server struct {
	metrics *metrics.Metrics
	cache   *cache.Cache

	mu            sync.RWMutex
	lastPollAt    time.Time
	lastPollError error

	mux *http.ServeMux
}

// New creates a status Server backed by the given metrics and cache. Call
// ListenAndServe to start accepting connections.
func New(m *metrics.Metrics, c *cache.Cache) *Server {
	s := &Server{metrics: m, cache: c, mux: http.NewServeMux()}
	s.mux.HandleFunc("/status", s.handleStatus)
	return s
}

// RecordPoll updates the last-poll timestamp and outcome displayed at
// /status. Called once per tick by the poll loop (§4.J step 6).
func (s *Server) RecordPoll(at time.Time, err error) {
	s.mu.Lock()
	s.lastPollAt = at
	s.lastPollError = err
	s.mu.Unlock()
}

// ListenAndServe starts the HTTP server on addr (e.g. ":8080") and blocks
// until the process exits or the server is shut down.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("status: listening on %s", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv.ListenAndServe() // #nosec G114 – replaced with explicit http.Server
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.metrics.Snapshot()

	s.mu.RLock()
	lastPollAt, lastPollErr := s.lastPollAt, s.lastPollError
	s.mu.RUnlock()

	out := Snapshot{
		Requests:          snap.RPCAttempts,
		Successes:         snap.RPCSuccess,
		Failures:          snap.RPCFailed,
		RequestsPerSecond: snap.RequestsPerSecond,
		CacheEntries:      s.cache.Len(),
	}
	if !lastPollAt.IsZero() {
		out.LastPollAt = lastPollAt.Format(time.RFC3339)
	}
	if lastPollErr != nil {
		out.LastPollError = lastPollErr.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Printf("status: encode response: %v", err)
	}
}
