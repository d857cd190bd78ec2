package transport

import (
	"context"
	"errors"
	"sync"
	"time"
)

// KeepAlive sends periodic heartbeat requests against an authenticated
// Transport so the institution's server-side session cookie does not expire
// while the poll loop is idle between cycles. When a heartbeat itself fails
// with ErrAuthFailed or ErrHTTPStatus, it clears the logged-in flag and calls
// Login once; failures of other RPC calls do not trigger a re-login.
//
// Adapted from the teacher's JWT auto-refresh/heartbeat pair: this session
// has no bearer token to refresh, so Refresh is replaced by a re-Login call,
// but the background-goroutine/stop-channel shape is the same.
type KeepAlive struct {
	t        *Transport
	interval time.Duration

	stopCh chan struct{}
	once   sync.Once
}

// NewKeepAlive constructs a KeepAlive that heartbeats t every interval.
func NewKeepAlive(t *Transport, interval time.Duration) *KeepAlive {
	return &KeepAlive{t: t, interval: interval, stopCh: make(chan struct{})}
}

// Start launches the background heartbeat goroutine. Start is non-blocking
// and must be called at most once per KeepAlive.
func (k *KeepAlive) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(k.interval)
		defer ticker.Stop()
		for {
			select {
			case <-k.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				k.beat(ctx)
			}
		}
	}()
}

// beat performs one heartbeat: a lightweight GetAssignments call whose sole
// purpose is to touch the session. A failure classified as ErrAuthFailed or
// ErrHTTPStatus triggers a single re-login attempt; any other failure is left
// for the next scheduled poll to retry.
func (k *KeepAlive) beat(ctx context.Context) {
	_, err := k.t.GetAssignments(ctx)
	if err == nil {
		return
	}
	var te *Error
	if errors.As(err, &te) && (te.Kind == ErrAuthFailed || te.Kind == ErrHTTPStatus) {
		k.t.mu.Lock()
		k.t.loggedIn = false
		k.t.mu.Unlock()
		_ = k.t.Login(ctx)
	}
}

// Stop terminates the background heartbeat goroutine. Stop is idempotent.
func (k *KeepAlive) Stop() {
	k.once.Do(func() {
		close(k.stopCh)
	})
}
