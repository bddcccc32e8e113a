package statementvault

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BackendConfig identifies the statement backend and the consumer on whose
// behalf this device operates.
type BackendConfig struct {
	BaseURL    string `json:"baseUrl" yaml:"baseUrl"`
	ConsumerID string `json:"consumerId" yaml:"consumerId"`
}

// HostBridge is the narrow interface the vault consumes from the host
// application. It is the only channel across the isolation boundary, and
// nothing sensitive crosses it: the device ID, the backend configuration,
// and log lines.
type HostBridge interface {
	// DeviceID returns the host's stable device identifier.
	DeviceID() (string, error)

	// BackendConfig returns the backend base URL and consumer identifier.
	BackendConfig() (BackendConfig, error)

	// Log forwards a message to the host's logging facility. Messages
	// never contain key material or statement plaintext.
	Log(message string)

	// Close releases host-side resources.
	Close() error
}

// Environment variables read by the default bridge.
const (
	EnvBaseURL    = "STATEMENTVAULT_BASE_URL"
	EnvConsumerID = "STATEMENTVAULT_CONSUMER_ID"
	EnvDeviceID   = "STATEMENTVAULT_DEVICE_ID"
)

// envBridge is the default HostBridge: configuration from the environment,
// a generated device ID when the host supplies none, logging via zerolog.
type envBridge struct {
	logger zerolog.Logger

	mu       sync.Mutex
	deviceID string
}

// NewEnvBridge returns a HostBridge backed by environment variables.
// When STATEMENTVAULT_DEVICE_ID is unset a UUID is generated once and
// reused for the lifetime of the bridge.
func NewEnvBridge(logger zerolog.Logger) HostBridge {
	return &envBridge{logger: logger}
}

func (b *envBridge) DeviceID() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.deviceID != "" {
		return b.deviceID, nil
	}
	if id := os.Getenv(EnvDeviceID); id != "" {
		b.deviceID = id
		return id, nil
	}
	b.deviceID = uuid.NewString()
	return b.deviceID, nil
}

func (b *envBridge) BackendConfig() (BackendConfig, error) {
	cfg := BackendConfig{
		BaseURL:    os.Getenv(EnvBaseURL),
		ConsumerID: os.Getenv(EnvConsumerID),
	}
	if cfg.BaseURL == "" {
		return cfg, fmt.Errorf("backend configuration missing: %s is not set", EnvBaseURL)
	}
	return cfg, nil
}

func (b *envBridge) Log(message string) {
	b.logger.Info().Msg(message)
}

func (b *envBridge) Close() error {
	return nil
}
