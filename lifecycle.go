package statementvault

import (
	"context"
	"errors"
	"time"

	"github.com/statementvault/vault-go/internal/crypto"
	"github.com/statementvault/vault-go/internal/keystore"
)

// EnsureKeyPair returns the device key pair's public half, generating and
// persisting a key pair on first use. Repeated calls return the same key;
// generation happens at most once per stored record. When a backend is
// configured and the device is not yet registered, a registration
// handshake is triggered in the background.
func (v *Vault) EnsureKeyPair(ctx context.Context) (*DeviceKey, error) {
	keypair, err := v.ensureKeyPairLocked(ctx)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	createdAt := v.keyCreatedAt
	v.mu.Unlock()

	return &DeviceKey{
		PublicKeySPKI:   append([]byte(nil), keypair.PublicKeySPKI...),
		PublicKeyBase64: keypair.PublicKeyB64,
		CreatedAt:       createdAt,
	}, nil
}

// ensureKeyPairLocked loads or generates the device key pair under the
// vault mutex so concurrent callers observe a single key.
func (v *Vault) ensureKeyPairLocked(ctx context.Context) (*crypto.KeyPair, error) {
	return v.ensureKeyPair(ctx, false)
}

// ensureKeyPairForDecrypt additionally marks the decrypt in flight in the
// same critical section, so the background announce can never start in
// the gap between key load and decrypt start.
func (v *Vault) ensureKeyPairForDecrypt(ctx context.Context) (*crypto.KeyPair, error) {
	return v.ensureKeyPair(ctx, true)
}

func (v *Vault) ensureKeyPair(ctx context.Context, markDecrypting bool) (*crypto.KeyPair, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil, ErrVaultClosed
	}

	keypair := v.keypair
	if keypair == nil {
		kp, createdAt, err := v.loadOrGenerate(ctx)
		if err != nil {
			return nil, err
		}
		v.keypair = kp
		v.keyCreatedAt = createdAt
		keypair = kp
	}

	if markDecrypting {
		v.decrypting = true
	} else if v.autoRegister && v.client != nil && !v.registered && !v.decrypting && !v.announcing {
		// Re-announce on in-memory hits too: an earlier handshake may
		// have been exhausted or skipped.
		v.announcing = true
		go v.maybeAnnounce()
	}

	return keypair, nil
}

// loadOrGenerate is called with the vault mutex held.
func (v *Vault) loadOrGenerate(ctx context.Context) (*crypto.KeyPair, time.Time, error) {
	rec, err := v.store.Load(ctx)
	switch {
	case err == nil:
		keypair, kerr := crypto.KeyPairFromPKCS8(rec.PrivateKeyMaterial)
		if kerr == nil {
			createdAt := rec.Created()
			rec.Wipe()
			v.logger.Debug().Time("createdAt", createdAt).Msg("device key pair loaded")
			return keypair, createdAt, nil
		}
		// A record that no longer parses is unusable; replace it.
		v.logger.Warn().Err(kerr).Msg("stored device key unreadable, generating a new one")
		rec.Wipe()
	case errors.Is(err, keystore.ErrNotFound):
		// First use on this device.
	default:
		return nil, time.Time{}, &StorageError{Op: "load", Err: err}
	}

	keypair, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, time.Time{}, &KeyGenerationError{Err: err}
	}

	privDER, err := keypair.MarshalPKCS8()
	if err != nil {
		return nil, time.Time{}, &KeyGenerationError{Err: err}
	}
	createdAt := time.Now()
	// The record owns its material: Wipe below must not reach into the
	// live key pair.
	rec = &keystore.Record{
		PrivateKeyMaterial: privDER,
		PublicKeyMaterial:  append([]byte(nil), keypair.PublicKeySPKI...),
		CreatedAt:          createdAt.Unix(),
	}
	if err := v.store.Save(ctx, rec); err != nil {
		rec.Wipe()
		return nil, time.Time{}, &StorageError{Op: "save", Err: err}
	}
	rec.Wipe()

	v.logger.Info().Msg("device key pair generated")
	return keypair, createdAt, nil
}
