package statementvault

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/statementvault/vault-go/internal/api"
	"github.com/statementvault/vault-go/internal/crypto"
	"github.com/statementvault/vault-go/internal/keystore"
	"github.com/statementvault/vault-go/internal/obfuscate"
)

// Vault is the isolated statement vault. It owns the device key pair, the
// decryption protocol, and the rendering defense layer. Plaintext produced
// by the vault never crosses the host bridge; it is handed to the caller
// and shadows of it are cached only inside the defense layer.
//
// A Vault is safe for concurrent use.
type Vault struct {
	logger  zerolog.Logger
	store   keystore.Store
	client  *api.Client
	bridge  HostBridge
	backend *BackendConfig
	defense *RenderingDefense

	autoRegister        bool
	registrationBackoff time.Duration

	mu           sync.Mutex
	keypair      *crypto.KeyPair
	keyCreatedAt time.Time
	deviceID     string
	registered   bool
	announcing   bool
	decrypting   bool
	closed       bool
}

// DeviceKey is the public half of the device key pair. The private half
// never leaves the vault.
type DeviceKey struct {
	// PublicKeySPKI is the DER-encoded SubjectPublicKeyInfo.
	PublicKeySPKI []byte
	// PublicKeyBase64 is the SPKI in standard base64, the form the
	// backend registration endpoint accepts.
	PublicKeyBase64 string
	// CreatedAt is when the key pair was generated.
	CreatedAt time.Time
}

// New creates a vault. Without options the key pair is held in memory
// only, logging is discarded, and backend configuration is read from the
// environment via the default host bridge.
func New(opts ...Option) (*Vault, error) {
	cfg := vaultConfig{
		logger:              zerolog.Nop(),
		accessThreshold:     DefaultAccessAttemptThreshold,
		registrationBackoff: defaultRegistrationBackoff,
		autoRegister:        true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	store := cfg.store
	if store == nil {
		if cfg.storePath != "" {
			s, err := keystore.NewSQLiteStore(cfg.storePath)
			if err != nil {
				return nil, &StorageError{Op: "open", Err: err}
			}
			store = s
		} else {
			store = keystore.NewMemoryStore()
		}
	}

	bridge := cfg.bridge
	if bridge == nil {
		bridge = NewEnvBridge(cfg.logger)
	}

	session, err := obfuscate.NewSession()
	if err != nil {
		store.Close()
		return nil, err
	}

	v := &Vault{
		logger:              cfg.logger,
		store:               store,
		bridge:              bridge,
		autoRegister:        cfg.autoRegister,
		registrationBackoff: cfg.registrationBackoff,
	}
	v.defense = newRenderingDefense(session, cfg.accessThreshold, cfg.logger)

	backend := cfg.backend
	if backend == nil {
		if bc, err := bridge.BackendConfig(); err == nil {
			backend = &bc
		} else {
			cfg.logger.Debug().Err(err).Msg("no backend configuration from host bridge")
		}
	}
	if backend != nil && backend.BaseURL != "" {
		clientOpts := []api.Option{api.WithLogger(cfg.logger)}
		if cfg.httpClient != nil {
			clientOpts = append(clientOpts, api.WithHTTPClient(cfg.httpClient))
		}
		client, err := api.New(backend.BaseURL, clientOpts...)
		if err != nil {
			store.Close()
			return nil, err
		}
		v.client = client
		v.backend = backend
	}

	return v, nil
}

// ProcessEncryptedStatement validates, decrypts, and parses an envelope,
// returning the structured statement. On failure UserFacingMessage maps
// the returned error to a displayable message.
func (v *Vault) ProcessEncryptedStatement(ctx context.Context, env *EncryptedEnvelope) (*Statement, error) {
	if env == nil {
		return nil, &ValidationError{Missing: []string{"envelope"}}
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	if env.IsExpired(time.Now()) {
		return nil, &ExpiredEnvelopeError{ExpiredAt: env.ExpiresAt()}
	}

	keypair, err := v.ensureKeyPairForDecrypt(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		v.mu.Lock()
		v.decrypting = false
		v.mu.Unlock()
	}()

	senderKey, err := crypto.DecodeBase64(env.SenderPublicKey)
	if err != nil {
		return nil, &DecryptionError{Stage: StageKeyImport, Err: err}
	}
	wrappedDek, err := crypto.DecodeBase64(env.WrappedDek)
	if err != nil {
		return nil, &DecryptionError{Stage: StageUnwrap, Err: err}
	}
	iv, err := crypto.DecodeBase64(env.IV)
	if err != nil {
		return nil, &DecryptionError{Stage: StagePayload, Err: err}
	}
	payload, err := crypto.DecodeBase64(env.EncryptedPayload)
	if err != nil {
		return nil, &DecryptionError{Stage: StagePayload, Err: err}
	}

	plaintext, err := crypto.Decrypt(&crypto.EncryptedStatement{
		EncryptedPayload: payload,
		WrappedDEK:       wrappedDek,
		IV:               iv,
		SenderPublicKey:  senderKey,
	}, keypair)
	if err != nil {
		v.logger.Warn().Err(err).Str("payloadType", string(env.PayloadType)).Msg("statement decrypt failed")
		return nil, wrapCryptoError(err)
	}

	return parseStatement(plaintext, env.PayloadType)
}

// FetchBillStatement requests an encrypted bill statement from the
// backend and decrypts it. Requires a configured backend.
func (v *Vault) FetchBillStatement(ctx context.Context, statementID string, opts ...FetchOption) (*Statement, error) {
	return v.fetch(ctx, statementID, PayloadTypeBillStatement, opts...)
}

// FetchPaymentHistory requests an encrypted payment history from the
// backend and decrypts it. Requires a configured backend.
func (v *Vault) FetchPaymentHistory(ctx context.Context, statementID string, opts ...FetchOption) (*Statement, error) {
	return v.fetch(ctx, statementID, PayloadTypePaymentHistory, opts...)
}

func (v *Vault) fetch(ctx context.Context, statementID string, payloadType PayloadType, opts ...FetchOption) (*Statement, error) {
	if v.client == nil {
		return nil, ErrNoBackend
	}

	var fc fetchConfig
	for _, opt := range opts {
		opt(&fc)
	}

	if _, err := v.ensureKeyPairLocked(ctx); err != nil {
		return nil, err
	}
	deviceID, err := v.resolveDeviceID()
	if err != nil {
		return nil, err
	}

	req := &api.StatementRequest{
		StatementID: statementID,
		ConsumerID:  v.backend.ConsumerID,
		DeviceID:    deviceID,
		Category:    fc.category,
	}

	var resp *api.EnvelopeResponse
	switch payloadType {
	case PayloadTypePaymentHistory:
		resp, err = v.client.FetchPaymentHistory(ctx, req)
	default:
		resp, err = v.client.FetchBillStatement(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	env := &EncryptedEnvelope{
		EncryptedPayload: resp.EncryptedPayload,
		WrappedDek:       resp.WrappedDek,
		IV:               resp.IV,
		SenderPublicKey:  resp.SenderPublicKey,
		PayloadType:      payloadType,
		Expiry:           resp.Expiry,
	}
	return v.ProcessEncryptedStatement(ctx, env)
}

// Present hands a decrypted statement to the rendering defense layer and
// returns the obfuscated view for display.
func (v *Vault) Present(statement *Statement) (*ObfuscatedView, error) {
	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return nil, ErrVaultClosed
	}
	return v.defense.Present(statement)
}

// VerifyField checks a rendered field against its shadow. A mismatch is
// treated as an access attempt.
func (v *Vault) VerifyField(name, display, shadow string) bool {
	return v.defense.VerifyField(name, display, shadow)
}

// RaiseAccessSignal records an anomalous access attempt against the
// currently presented statement.
func (v *Vault) RaiseAccessSignal(reason string) {
	v.defense.RaiseAccessSignal(reason)
}

// NotifyBackgrounded tells the vault the host surface moved to the
// background. Cached presentation data is cleared.
func (v *Vault) NotifyBackgrounded() {
	v.defense.NotifyBackgrounded()
}

// resolveDeviceID returns the host device identifier, caching it after
// the first successful bridge call.
func (v *Vault) resolveDeviceID() (string, error) {
	v.mu.Lock()
	if v.deviceID != "" {
		id := v.deviceID
		v.mu.Unlock()
		return id, nil
	}
	v.mu.Unlock()

	id, err := v.bridge.DeviceID()
	if err != nil {
		return "", err
	}

	v.mu.Lock()
	v.deviceID = id
	v.mu.Unlock()
	return id, nil
}

// Close tears down the vault: presentation caches and the obfuscation
// session are cleared, the key store and host bridge are closed. The
// persisted key pair survives for the next vault instance.
func (v *Vault) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	v.keypair = nil
	v.mu.Unlock()

	v.defense.Teardown()

	storeErr := v.store.Close()
	bridgeErr := v.bridge.Close()
	if storeErr != nil {
		return &StorageError{Op: "close", Err: storeErr}
	}
	return bridgeErr
}
