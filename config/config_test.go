package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ccoodduu/studieplus-scraper/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if cfg.FileWorkers != 4 {
		t.Errorf("FileWorkers: got %d, want 4", cfg.FileWorkers)
	}
	if cfg.RPCTimeout != 15*time.Second {
		t.Errorf("RPCTimeout: got %s, want 15s", cfg.RPCTimeout)
	}
	if cfg.LoginTimeout != 10*time.Second {
		t.Errorf("LoginTimeout: got %s, want 10s", cfg.LoginTimeout)
	}
	if cfg.DownloadTimeout != 60*time.Second {
		t.Errorf("DownloadTimeout: got %s, want 60s", cfg.DownloadTimeout)
	}
	if cfg.MaxBodyBytes != 8*1024*1024 {
		t.Errorf("MaxBodyBytes: got %d, want 8MiB", cfg.MaxBodyBytes)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate: expected error on empty credentials")
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	raw, err := json.Marshal(map[string]any{
		"username": "alice",
		"password": "secret",
		"school":   "Example Gymnasium",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Username != "alice" || cfg.School != "Example Gymnasium" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	// Defaults still apply for fields the file didn't set.
	if cfg.FileWorkers != 4 {
		t.Errorf("FileWorkers: got %d, want 4 (default preserved)", cfg.FileWorkers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: unexpected error: %v", err)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := config.LoadConfig("/nonexistent/path/config.json")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "bad*.json")
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("{not valid json}")
	f.Close()

	_, err = config.LoadConfig(f.Name())
	if err == nil {
		t.Error("expected error for invalid JSON, got nil")
	}
}

func TestLoadConfig_RejectsUnknownFields(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "typo*.json")
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString(`{"usernme":"typo"}`)
	f.Close()

	if _, err := config.LoadConfig(f.Name()); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("USERNAME", "bob")
	t.Setenv("PASSWORD", "hunter2")
	t.Setenv("SCHOOL", "Other Gymnasium")
	t.Setenv("STUDIEPLUS_DEBUG_CAPTURE", "/tmp/captures")
	t.Setenv("STUDIEPLUS_STATUS_ADDR", ":9090")

	cfg := config.FromEnv()
	if cfg.Username != "bob" || cfg.Password != "hunter2" || cfg.School != "Other Gymnasium" {
		t.Errorf("unexpected config from env: %+v", cfg)
	}
	if cfg.DebugCaptureDir != "/tmp/captures" {
		t.Errorf("DebugCaptureDir: got %q", cfg.DebugCaptureDir)
	}
	if cfg.StatusAddr != ":9090" {
		t.Errorf("StatusAddr: got %q", cfg.StatusAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: unexpected error: %v", err)
	}
}

func TestFromEnv_LeavesOptionalFieldsAtDefault(t *testing.T) {
	t.Setenv("USERNAME", "bob")
	t.Setenv("PASSWORD", "hunter2")
	t.Setenv("SCHOOL", "Other Gymnasium")

	cfg := config.FromEnv()
	if cfg.StatusAddr != "" {
		t.Errorf("StatusAddr: got %q, want empty (disabled by default)", cfg.StatusAddr)
	}
	if cfg.FileWorkers != 4 {
		t.Errorf("FileWorkers: got %d, want 4", cfg.FileWorkers)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{"all set", config.Config{Username: "a", Password: "b", School: "c"}, false},
		{"missing username", config.Config{Password: "b", School: "c"}, true},
		{"missing password", config.Config{Username: "a", School: "c"}, true},
		{"missing school", config.Config{Username: "a", Password: "b"}, true},
		{"all empty", config.Config{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
