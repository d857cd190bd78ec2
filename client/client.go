// Package client provides an HTTP client factory tuned for a single
// long-lived authenticated session against one GWT-RPC endpoint.
package client

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	utls "github.com/refraction-networking/utls"
)

// transportDefaults groups transport-layer knobs that are set once at
// construction time. Exposing them as a struct makes unit-testing easier and
// keeps NewHTTPClient's signature small.
type transportDefaults struct {
	maxIdleConns        int
	maxIdleConnsPerHost int
	maxConnsPerHost     int
}

// defaultTransport holds the tuning values used when callers do not supply
// an explicit Config. One institution, one host: the pool only needs to
// absorb the bounded file-fetch worker pool plus occasional RPC bursts,
// not fleet-scale concurrency.
var defaultTransport = transportDefaults{
	maxIdleConns:        20,
	maxIdleConnsPerHost: 10,
	maxConnsPerHost:     20,
}

// NewHTTPClient constructs a *http.Client that is safe for concurrent use.
//
// Design decisions:
//
//  1. Custom http.Transport – a dedicated transport avoids sharing
//     Go's global default pool with any other client in the process.
//
//  2. Keep-alives are enabled (DisableKeepAlives: false) so that TCP
//     connections are reused across the schedule/assignment/file RPCs that
//     make up a single poll cycle, reducing latency and CPU spend on TLS
//     handshakes.
//
//  3. Connection-pool limits (MaxIdleConns / MaxIdleConnsPerHost /
//     MaxConnsPerHost) bound descriptor use while still allowing the
//     bounded file-fetch worker pool to run its downloads concurrently.
//
//  4. IdleConnTimeout evicts stale connections from the pool so the OS can
//     reclaim sockets that were silently closed by the remote server or
//     intermediate proxies.
//
//  5. TLSHandshakeTimeout bounds the time spent on TLS negotiation, which
//     protects against servers that accept the TCP connection but never
//     complete the TLS exchange.
//
//  6. An http.CookieJar (built without a public-suffix list, see
//     newCookieJar) provides automatic cookie management for the
//     institution's login/session cookies.
//
//  7. Proxy support is optional: pass an empty string to run direct.
//
// Parameters:
//   - proxy:   optional proxy URL string, e.g. "http://host:port". Empty means direct.
//   - timeout: end-to-end request timeout passed to http.Client.Timeout.
func NewHTTPClient(proxy string, timeout time.Duration) (*http.Client, error) {
	// Build the transport first; any error here (invalid proxy URL) prevents
	// constructing an unusable client.
	transport, err := buildTransport(proxy)
	if err != nil {
		return nil, err
	}

	// The cookie jar carries the institution's session cookies across calls.
	jar, err := newCookieJar()
	if err != nil {
		return nil, fmt.Errorf("client: create cookie jar: %w", err)
	}

	return &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   timeout,
		// CheckRedirect is intentionally left nil so the client follows
		// redirects automatically (up to the default limit of 10).
	}, nil
}

// NewHTTPClientWithTLS is NewHTTPClient's uTLS-fingerprinted counterpart: the
// returned client dials over HTTP/2 using an utls ClientHello matching
// helloID (see UTLSDialer) instead of the stock Go TLS stack, for
// institutions whose edge fingerprints the handshake. proxy validation and
// cookie-jar setup mirror NewHTTPClient; connection pooling is governed by
// http2.Transport's own defaults rather than transportDefaults, since the
// uTLS path multiplexes over HTTP/2 and has no MaxIdleConnsPerHost knob.
func NewHTTPClientWithTLS(proxy string, timeout time.Duration, helloID utls.ClientHelloID) (*http.Client, error) {
	if proxy != "" {
		if _, err := url.Parse(proxy); err != nil {
			return nil, fmt.Errorf("client: parse proxy URL %q: %w", proxy, err)
		}
	}

	jar, err := newCookieJar()
	if err != nil {
		return nil, fmt.Errorf("client: create cookie jar: %w", err)
	}

	return &http.Client{
		Transport: NewChrome120H2Transport(H2TransportConfig{HelloID: helloID}),
		Jar:       jar,
		Timeout:   timeout,
	}, nil
}

// ResolveUTLSFingerprint maps a Config.UTLSFingerprint name to the utls
// ClientHelloID it selects. An empty name is not a valid input here; callers
// should skip uTLS entirely and use NewHTTPClient instead.
func ResolveUTLSFingerprint(name string) (utls.ClientHelloID, error) {
	switch name {
	case "chrome120":
		return utls.HelloChrome_120, nil
	case "chrome131":
		return utls.HelloChrome_131, nil
	default:
		return utls.ClientHelloID{}, fmt.Errorf("client: unknown uTLS fingerprint %q", name)
	}
}

// buildTransport creates an *http.Transport with carefully tuned defaults.
// If proxy is non-empty it is parsed and attached to the transport.
func buildTransport(proxy string) (*http.Transport, error) {
	t := &http.Transport{
		// Keep-alives are on by default; making this explicit documents intent.
		DisableKeepAlives: false,

		// Pool sizing – see module-level comment for rationale.
		MaxIdleConns:        defaultTransport.maxIdleConns,
		MaxIdleConnsPerHost: defaultTransport.maxIdleConnsPerHost,
		MaxConnsPerHost:     defaultTransport.maxConnsPerHost,

		// Evict idle connections after 90 s so we do not hold dead sockets.
		IdleConnTimeout: 90 * time.Second,

		// TLS handshakes that stall for more than 10 s are aborted.
		TLSHandshakeTimeout: 10 * time.Second,

		// ExpectContinueTimeout limits the time to wait for a server's
		// first response headers after sending the request headers when
		// the request body uses "Expect: 100-continue".
		ExpectContinueTimeout: 1 * time.Second,

		// DisableCompression: false (default) lets the transport request
		// gzip from the server and decompress transparently, saving bandwidth.
	}

	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("client: parse proxy URL %q: %w", proxy, err)
		}
		t.Proxy = http.ProxyURL(proxyURL)
	}

	return t, nil
}

// newCookieJar creates a cookie jar with no public-suffix list
// (cookiejar.New(nil)), which needs no external dependency. Without the list
// the jar does not stop a host from setting a cookie for a public suffix
// such as co.uk.
func newCookieJar() (http.CookieJar, error) {
	// Pass nil options to use the default cookie jar behaviour.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return jar, nil
}
