// Package config provides configuration management for the studieplus
// scraper. It supports JSON-based configuration loading with an environment
// fallback for credentials, and safe production defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config holds all tunable parameters for the scraper.
// The struct is designed to be loaded once at startup and then shared across
// goroutines as a read-only value, making it inherently thread-safe after
// initialization.
type Config struct {
	// Username, Password, School are the three required credentials (§6 of
	// SPEC_FULL.md): School must match the institution's exact display name
	// as shown by the landing-page institution list.
	Username string `json:"username"`
	Password string `json:"password"`
	School   string `json:"school"`

	// PollInterval is how often the poll loop refreshes the current week's
	// schedule and open assignments.
	PollInterval time.Duration `json:"poll_interval"`

	// FileWorkers sizes the bounded worker pool used to resolve signed
	// download URLs for a lesson's or assignment's files (§4.K). Default 4.
	FileWorkers int `json:"file_workers"`

	// RPCTimeout and LoginTimeout bound individual I/O operations (§5): RPC
	// default 15s, login step 10s. DownloadTimeout (default 60s) is copied
	// into transport.Config, but no transport call reads it.
	RPCTimeout      time.Duration `json:"rpc_timeout"`
	LoginTimeout    time.Duration `json:"login_timeout"`
	DownloadTimeout time.Duration `json:"download_timeout"`

	// MaxBodyBytes bounds the size of any single HTTP response body the
	// transport will read, defending against a malformed or hostile
	// response (§5). Default 8 MiB.
	MaxBodyBytes int64 `json:"max_body_bytes"`

	// DebugCaptureDir, if non-empty, makes the transport write every raw RPC
	// response body to this directory with a timestamped filename, mirroring
	// the reference scraper's DEBUG_SAVE_RAW_RESPONSES flag.
	DebugCaptureDir string `json:"debug_capture_dir"`

	// StatusAddr is the listen address for the read-only status endpoint
	// (§6 "Status endpoint"), e.g. ":8080". Empty disables it.
	StatusAddr string `json:"status_addr"`

	// UTLSFingerprint selects an optional uTLS ClientHello fingerprint name
	// ("chrome120", "chrome131", "" for the stock Go TLS stack) used when
	// dialing the institution's GWT endpoint. Off by default.
	UTLSFingerprint string `json:"utls_fingerprint"`

	// MaxIdleConns / MaxIdleConnsPerHost are accepted in the config file but
	// are not passed to the transport; client.NewHTTPClient uses its own
	// fixed pool sizes.
	MaxIdleConns        int `json:"max_idle_conns"`
	MaxIdleConnsPerHost int `json:"max_idle_conns_per_host"`
}

// LoadConfig reads a JSON file at filename and deserialises it into a Config.
// It returns an error if the file cannot be opened or if the JSON is
// malformed. The file is decoded over DefaultConfig, so fields it leaves out
// keep their default values; the credentials have no default, so callers
// should validate required fields after loading.
func LoadConfig(filename string) (*Config, error) {
	f, err := os.Open(filename) // #nosec G304 – filename is caller-provided config path
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", filename, err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields() // catch typos in config files early
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode %q: %w", filename, err)
	}
	return cfg, nil
}

// FromEnv builds a Config from the USERNAME/PASSWORD/SCHOOL environment
// variables required by §6, layered on top of DefaultConfig. An optional
// STUDIEPLUS_DEBUG_CAPTURE environment variable sets DebugCaptureDir and
// STUDIEPLUS_STATUS_ADDR sets StatusAddr.
func FromEnv() *Config {
	cfg := DefaultConfig()
	cfg.Username = os.Getenv("USERNAME")
	cfg.Password = os.Getenv("PASSWORD")
	cfg.School = os.Getenv("SCHOOL")
	if v := os.Getenv("STUDIEPLUS_DEBUG_CAPTURE"); v != "" {
		cfg.DebugCaptureDir = v
	}
	if v := os.Getenv("STUDIEPLUS_STATUS_ADDR"); v != "" {
		cfg.StatusAddr = v
	}
	return cfg
}

// Validate reports whether the required credentials are present.
func (c *Config) Validate() error {
	if c.Username == "" || c.Password == "" || c.School == "" {
		return fmt.Errorf("config: USERNAME, PASSWORD and SCHOOL must all be set")
	}
	return nil
}

// DefaultConfig returns a *Config pre-filled with production-sensible
// defaults. Callers are free to mutate the returned struct before passing it
// to other components; each call returns a fresh independent copy.
func DefaultConfig() *Config {
	return &Config{
		PollInterval:        5 * time.Minute,
		FileWorkers:         4,
		RPCTimeout:          15 * time.Second,
		LoginTimeout:        10 * time.Second,
		DownloadTimeout:     60 * time.Second,
		MaxBodyBytes:        8 * 1024 * 1024,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
	}
}
