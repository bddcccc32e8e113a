package statementvault

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/statementvault/vault-go/internal/keystore"
)

const (
	// DefaultAccessAttemptThreshold is the number of flagged access
	// attempts tolerated before the defense layer clears cached data.
	DefaultAccessAttemptThreshold = 10

	// registration handshake policy: up to 3 attempts, linear backoff of
	// one backoff unit times the attempt number.
	registrationMaxAttempts = 3
	defaultRegistrationBackoff = time.Second
)

// vaultConfig holds configuration for the vault.
type vaultConfig struct {
	storePath  string
	store      keystore.Store
	logger     zerolog.Logger
	bridge     HostBridge
	backend    *BackendConfig
	httpClient *http.Client

	accessThreshold     int
	registrationBackoff time.Duration
	autoRegister        bool
}

// fetchConfig holds configuration for statement fetches.
type fetchConfig struct {
	category string
}

// Option configures the vault.
type Option func(*vaultConfig)

// FetchOption configures a statement fetch.
type FetchOption func(*fetchConfig)

// WithKeyStorePath persists the device key pair in a SQLite database at
// the given path. Without this (or WithKeyStore) the key pair lives only
// in memory and will not survive a context restart.
func WithKeyStorePath(path string) Option {
	return func(c *vaultConfig) {
		c.storePath = path
	}
}

// WithKeyStore supplies a key store directly. Takes precedence over
// WithKeyStorePath.
func WithKeyStore(store keystore.Store) Option {
	return func(c *vaultConfig) {
		c.store = store
	}
}

// WithLogger sets the vault logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *vaultConfig) {
		c.logger = logger
	}
}

// WithHostBridge sets the bridge to the host application. The default
// reads configuration from the environment.
func WithHostBridge(bridge HostBridge) Option {
	return func(c *vaultConfig) {
		c.bridge = bridge
	}
}

// WithBackendConfig pins the backend configuration instead of asking the
// host bridge for it.
func WithBackendConfig(cfg BackendConfig) Option {
	return func(c *vaultConfig) {
		c.backend = &cfg
	}
}

// WithHTTPClient sets a custom HTTP client for backend calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *vaultConfig) {
		c.httpClient = client
	}
}

// WithAccessAttemptThreshold overrides the defense layer's access-attempt
// threshold.
func WithAccessAttemptThreshold(n int) Option {
	return func(c *vaultConfig) {
		if n > 0 {
			c.accessThreshold = n
		}
	}
}

// WithRegistrationBackoff overrides the linear backoff unit between
// registration attempts. Intended for tests.
func WithRegistrationBackoff(d time.Duration) Option {
	return func(c *vaultConfig) {
		if d > 0 {
			c.registrationBackoff = d
		}
	}
}

// WithAutoRegister controls whether EnsureKeyPair opportunistically
// triggers the registration handshake in the background. Default true.
func WithAutoRegister(enabled bool) Option {
	return func(c *vaultConfig) {
		c.autoRegister = enabled
	}
}

// WithCategory sets the statement category on a fetch.
func WithCategory(category string) FetchOption {
	return func(c *fetchConfig) {
		c.category = category
	}
}
