package statementvault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestLoadBackendConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backend.yaml")
	if err := os.WriteFile(path, []byte("baseUrl: https://vault.example.com\nconsumerId: consumer-42\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadBackendConfig(path)
	if err != nil {
		t.Fatalf("LoadBackendConfig() error = %v", err)
	}
	if cfg.BaseURL != "https://vault.example.com" || cfg.ConsumerID != "consumer-42" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadBackendConfigEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backend.yaml")
	if err := os.WriteFile(path, []byte("baseUrl: https://file.example.com\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvBaseURL, "https://env.example.com")
	t.Setenv(EnvConsumerID, "consumer-env")

	cfg, err := LoadBackendConfig(path)
	if err != nil {
		t.Fatalf("LoadBackendConfig() error = %v", err)
	}
	if cfg.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %q, env should override the file", cfg.BaseURL)
	}
	if cfg.ConsumerID != "consumer-env" {
		t.Errorf("ConsumerID = %q, want consumer-env", cfg.ConsumerID)
	}
}

func TestLoadBackendConfigErrors(t *testing.T) {
	if _, err := LoadBackendConfig(""); err == nil {
		t.Error("expected error when no file and no environment")
	}
	if _, err := LoadBackendConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("{not yaml"), 0o600)
	if _, err := LoadBackendConfig(bad); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestEnvBridgeDeviceID(t *testing.T) {
	t.Setenv(EnvDeviceID, "")

	bridge := NewEnvBridge(zerolog.Nop())
	first, err := bridge.DeviceID()
	if err != nil {
		t.Fatalf("DeviceID() error = %v", err)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Errorf("generated device ID %q is not a UUID", first)
	}

	second, _ := bridge.DeviceID()
	if first != second {
		t.Error("DeviceID() not stable across calls")
	}
}

func TestEnvBridgeDeviceIDFromEnv(t *testing.T) {
	t.Setenv(EnvDeviceID, "device-pinned")

	bridge := NewEnvBridge(zerolog.Nop())
	id, err := bridge.DeviceID()
	if err != nil {
		t.Fatalf("DeviceID() error = %v", err)
	}
	if id != "device-pinned" {
		t.Errorf("DeviceID() = %q, want device-pinned", id)
	}
}
