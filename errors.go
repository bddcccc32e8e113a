package statementvault

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/statementvault/vault-go/internal/crypto"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrVaultClosed is returned when operations are attempted on a closed vault.
	ErrVaultClosed = errors.New("vault has been closed")

	// ErrMissingParameter is returned when an envelope is incomplete.
	ErrMissingParameter = errors.New("envelope is missing required parameters")

	// ErrEnvelopeExpired is returned when an envelope's expiry has passed.
	ErrEnvelopeExpired = errors.New("envelope has expired")

	// ErrKeyImport is returned when the sender public key cannot be imported.
	ErrKeyImport = errors.New("sender public key import failed")

	// ErrKeyAgreement is returned when the ECDH agreement fails.
	ErrKeyAgreement = errors.New("key agreement failed")

	// ErrUnwrap is returned when the DEK fails to unwrap: the envelope was
	// encrypted for a different device key, or the wrap is corrupted.
	ErrUnwrap = errors.New("DEK unwrap failed")

	// ErrPayloadDecrypt is returned when the payload fails authentication.
	ErrPayloadDecrypt = errors.New("payload decrypt failed")

	// ErrParse is returned when the decrypted plaintext is malformed.
	ErrParse = errors.New("statement parse failed")

	// ErrStorage is returned on key-store open/read/write failures.
	// Fatal to the calling operation but non-corrupting; retry is safe.
	ErrStorage = errors.New("key store failure")

	// ErrKeyGeneration is returned when a device key pair cannot be generated.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrRegistration is returned when the registration handshake exhausts
	// its attempts. Non-fatal: it only affects future envelopes.
	ErrRegistration = errors.New("device registration failed")

	// ErrNoBackend is returned when an operation needs a backend and none
	// is configured.
	ErrNoBackend = errors.New("no backend configured")
)

// VaultError is implemented by all SDK errors.
type VaultError interface {
	error
	VaultError() // marker method
}

// ValidationError reports the envelope fields that were missing or invalid.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("envelope validation failed: missing %s", strings.Join(e.Missing, ", "))
}

// Is implements errors.Is for sentinel error matching.
func (e *ValidationError) Is(target error) bool {
	return target == ErrMissingParameter
}

// VaultError implements the VaultError interface.
func (e *ValidationError) VaultError() {}

// ExpiredEnvelopeError reports an envelope whose expiry has passed.
type ExpiredEnvelopeError struct {
	ExpiredAt time.Time
}

func (e *ExpiredEnvelopeError) Error() string {
	return fmt.Sprintf("envelope expired at %s", e.ExpiredAt.Format(time.RFC3339))
}

// Is implements errors.Is for sentinel error matching.
func (e *ExpiredEnvelopeError) Is(target error) bool {
	return target == ErrEnvelopeExpired
}

// VaultError implements the VaultError interface.
func (e *ExpiredEnvelopeError) VaultError() {}

// Decryption protocol stages.
const (
	StageKeyImport    = "key-import"
	StageKeyAgreement = "key-agreement"
	StageUnwrap       = "unwrap"
	StagePayload      = "payload"
	StageParse        = "parse"
)

// DecryptionError represents a failure in the decryption protocol.
// Stage identifies the step that failed.
type DecryptionError struct {
	Stage string
	Err   error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecryptionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *DecryptionError) Is(target error) bool {
	switch e.Stage {
	case StageKeyImport:
		return target == ErrKeyImport
	case StageKeyAgreement:
		return target == ErrKeyAgreement
	case StageUnwrap:
		return target == ErrUnwrap
	case StagePayload:
		return target == ErrPayloadDecrypt
	case StageParse:
		return target == ErrParse
	}
	return false
}

// VaultError implements the VaultError interface.
func (e *DecryptionError) VaultError() {}

// StorageError represents a key-store failure.
type StorageError struct {
	Op  string // "load", "save", "open"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("key store %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// VaultError implements the VaultError interface.
func (e *StorageError) VaultError() {}

// KeyGenerationError represents a failure to generate the device key pair.
type KeyGenerationError struct {
	Err error
}

func (e *KeyGenerationError) Error() string {
	return fmt.Sprintf("key generation failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *KeyGenerationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *KeyGenerationError) Is(target error) bool {
	return target == ErrKeyGeneration
}

// VaultError implements the VaultError interface.
func (e *KeyGenerationError) VaultError() {}

// RegistrationError reports an exhausted registration handshake.
type RegistrationError struct {
	Attempts int
	Err      error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration failed after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the underlying error.
func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *RegistrationError) Is(target error) bool {
	return target == ErrRegistration
}

// VaultError implements the VaultError interface.
func (e *RegistrationError) VaultError() {}

// wrapCryptoError converts internal crypto errors to public typed errors
// so that errors.Is() checks work with public sentinels.
func wrapCryptoError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, crypto.ErrKeyImportFailed):
		return &DecryptionError{Stage: StageKeyImport, Err: err}
	case errors.Is(err, crypto.ErrKeyAgreementFailed):
		return &DecryptionError{Stage: StageKeyAgreement, Err: err}
	case errors.Is(err, crypto.ErrUnwrapFailed), errors.Is(err, crypto.ErrInvalidDEKSize):
		return &DecryptionError{Stage: StageUnwrap, Err: err}
	case errors.Is(err, crypto.ErrPayloadDecryptFailed):
		return &DecryptionError{Stage: StagePayload, Err: err}
	}

	return err
}

// User-facing messages. Decrypt-path failures collapse to two causes so the
// presentation layer never leaks cryptographic internals.
const (
	msgWrongDeviceKey = "This statement was encrypted for a different device key. Re-register this device and request the statement again."
	msgCorruptPayload = "This statement could not be decrypted. It may be corrupted, expired, or not intended for this device."
)

// UserFacingMessage maps a decrypt-path error to the message shown to the
// user, distinguishing wrong/changed-device-key causes from corrupted or
// not-intended-for-you causes.
func UserFacingMessage(err error) string {
	if errors.Is(err, ErrUnwrap) {
		return msgWrongDeviceKey
	}
	return msgCorruptPayload
}
