package status

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ccoodduu/studieplus-scraper/cache"
	"github.com/ccoodduu/studieplus-scraper/metrics"
)

func TestServer_HandleStatus_Counters(t *testing.T) {
	m := metrics.NewMetrics()
	m.IncrementRPCAttempt()
	m.IncrementRPCAttempt()
	m.IncrementRPCSuccess()
	m.IncrementRPCFailed()

	c := cache.New(nil)
	c.Set("schedule:0", struct{}{}, time.Minute)

	s := New(m, c)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}
	var snap Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if snap.Requests != 2 || snap.Successes != 1 || snap.Failures != 1 {
		t.Errorf("unexpected counters: %+v", snap)
	}
	if snap.CacheEntries != 1 {
		t.Errorf("CacheEntries = %d, want 1", snap.CacheEntries)
	}
	if snap.LastPollAt != "" || snap.LastPollError != "" {
		t.Errorf("expected empty poll fields before RecordPoll, got %+v", snap)
	}
}

func TestServer_HandleStatus_RecordsLastPoll(t *testing.T) {
	s := New(metrics.NewMetrics(), cache.New(nil))
	now := time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)
	s.RecordPoll(now, errors.New("login: auth failed"))

	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	var snap Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if snap.LastPollAt != now.Format(time.RFC3339) {
		t.Errorf("LastPollAt = %q, want %q", snap.LastPollAt, now.Format(time.RFC3339))
	}
	if snap.LastPollError != "login: auth failed" {
		t.Errorf("LastPollError = %q", snap.LastPollError)
	}
}

func TestServer_HandleStatus_NoPollYetOmitsFields(t *testing.T) {
	s := New(metrics.NewMetrics(), cache.New(nil))
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if !containsNoPollFields(rec.Body.Bytes()) {
		t.Errorf("expected lastPollAt/lastPollError to be omitted, got %s", rec.Body.String())
	}
}

func containsNoPollFields(body []byte) bool {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return false
	}
	_, hasAt := raw["lastPollAt"]
	_, hasErr := raw["lastPollError"]
	return !hasAt && !hasErr
}
