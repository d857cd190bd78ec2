package transport

import "fmt"

// ErrorKind classifies a TransportError (§5, §7 of SPEC_FULL.md).
type ErrorKind string

const (
	// ErrSchoolNotFound means the institution list on the landing page did
	// not contain an entry matching the configured school name.
	ErrSchoolNotFound ErrorKind = "school_not_found"
	// ErrAuthFailed means the two-step login completed without error but
	// the final redirect did not land on "skema" or "forside".
	ErrAuthFailed ErrorKind = "auth_failed"
	// ErrTimeout means the request's context deadline or the client's
	// configured timeout was exceeded.
	ErrTimeout ErrorKind = "timeout"
	// ErrHTTPStatus means client.Do failed for a reason other than a
	// timeout or a cancellation (e.g. a refused connection or too many
	// redirects). Response status codes are not inspected: a non-2xx reply
	// is returned like any other response, and StatusCode stays 0.
	ErrHTTPStatus ErrorKind = "http_status"
	// ErrCancelled means the caller's context was cancelled mid-request.
	ErrCancelled ErrorKind = "cancelled"
	// ErrStaleHashes means a GWT-RPC call returned //EX with a body that
	// mentions "SerializationException" or "permutation", the usual sign
	// that skemaPermutation or opgavePermutation (§6) is out of date and the
	// institution's GWT module has been redeployed.
	ErrStaleHashes ErrorKind = "stale_hashes"
)

// Error reports a failure at the HTTP/login/RPC-envelope layer, as opposed
// to a wire-decode or domain-join failure.
type Error struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrSchoolNotFound:
		return "transport: school not found in institution list"
	case ErrAuthFailed:
		return fmt.Sprintf("transport: login failed, landed on %s", e.URL)
	case ErrTimeout:
		return fmt.Sprintf("transport: request to %s timed out: %v", e.URL, e.Err)
	case ErrHTTPStatus:
		if e.StatusCode == 0 {
			return fmt.Sprintf("transport: request to %s failed: %v", e.URL, e.Err)
		}
		return fmt.Sprintf("transport: %s returned HTTP %d", e.URL, e.StatusCode)
	case ErrCancelled:
		return fmt.Sprintf("transport: request to %s cancelled: %v", e.URL, e.Err)
	case ErrStaleHashes:
		return fmt.Sprintf("transport: stale GWT permutation hash calling %s: %v", e.URL, e.Err)
	default:
		return "transport: error"
	}
}

func (e *Error) Unwrap() error { return e.Err }
