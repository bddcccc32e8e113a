package statementvault

import (
	"context"
	"time"

	"github.com/statementvault/vault-go/internal/api"
)

// RegistrationResult reports the outcome of a registration handshake.
type RegistrationResult struct {
	// Success is true once the backend acknowledged the device key.
	Success bool
	// Attempts is how many handshake attempts were made.
	Attempts int
	// Err is the last attempt's error when Success is false.
	Err error
}

// AnnouncePublicKey sends the device public key to the backend so it can
// encrypt statements for this device. The handshake is idempotent on the
// backend side; announcing an already-registered key succeeds. Up to three
// attempts are made with linear backoff between them. Failure is not
// fatal: the vault keeps decrypting envelopes it already holds, and the
// next fetch or key load retries the handshake.
//
// The handshake is skipped while a decrypt is in flight.
func (v *Vault) AnnouncePublicKey(ctx context.Context) (*RegistrationResult, error) {
	if v.client == nil {
		return nil, ErrNoBackend
	}

	v.mu.Lock()
	switch {
	case v.closed:
		v.mu.Unlock()
		return nil, ErrVaultClosed
	case v.decrypting:
		v.mu.Unlock()
		return &RegistrationResult{Success: false, Attempts: 0}, nil
	case v.registered:
		v.mu.Unlock()
		return &RegistrationResult{Success: true, Attempts: 0}, nil
	}
	// Claim the handshake so key-pair use during it does not spawn a
	// second one.
	v.announcing = true
	v.mu.Unlock()
	defer func() {
		v.mu.Lock()
		v.announcing = false
		v.mu.Unlock()
	}()

	keypair, err := v.ensureKeyPairLocked(ctx)
	if err != nil {
		return nil, err
	}

	result := &RegistrationResult{}
	var lastErr error
	for attempt := 1; attempt <= registrationMaxAttempts; attempt++ {
		result.Attempts = attempt

		lastErr = v.registerOnce(ctx, keypair.PublicKeyB64)
		if lastErr == nil {
			v.mu.Lock()
			v.registered = true
			v.mu.Unlock()
			result.Success = true
			v.logger.Info().Int("attempts", attempt).Msg("device registered")
			return result, nil
		}
		v.logger.Warn().Err(lastErr).Int("attempt", attempt).Msg("device registration attempt failed")

		if attempt < registrationMaxAttempts {
			select {
			case <-time.After(time.Duration(attempt) * v.registrationBackoff):
			case <-ctx.Done():
				result.Err = ctx.Err()
				return result, &RegistrationError{Attempts: attempt, Err: ctx.Err()}
			}
		}
	}

	result.Err = lastErr
	v.logger.Error().Err(lastErr).Int("attempts", result.Attempts).Msg("device registration exhausted")
	return result, &RegistrationError{Attempts: result.Attempts, Err: lastErr}
}

// registerOnce performs a single handshake attempt. The bridge is asked
// for the device ID and backend configuration on every attempt so a host
// that becomes ready mid-handshake is picked up.
func (v *Vault) registerOnce(ctx context.Context, publicKeyB64 string) error {
	deviceID, err := v.resolveDeviceID()
	if err != nil {
		return err
	}

	resp, err := v.client.RegisterDevice(ctx, &api.RegisterDeviceRequest{
		ConsumerID:      v.backend.ConsumerID,
		DeviceID:        deviceID,
		DevicePublicKey: publicKeyB64,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return ErrRegistration
	}
	return nil
}

// maybeAnnounce runs the handshake in the background after key
// generation. Errors are logged and swallowed; registration failure must
// never block local decryption.
func (v *Vault) maybeAnnounce() {
	defer func() {
		v.mu.Lock()
		v.announcing = false
		v.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := v.AnnouncePublicKey(ctx); err != nil {
		v.logger.Debug().Err(err).Msg("background registration did not complete")
	}
}
