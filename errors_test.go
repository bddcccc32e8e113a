package statementvault

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/statementvault/vault-go/internal/crypto"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"validation", &ValidationError{Missing: []string{"iv"}}, ErrMissingParameter},
		{"expired", &ExpiredEnvelopeError{ExpiredAt: time.Now()}, ErrEnvelopeExpired},
		{"key import", &DecryptionError{Stage: StageKeyImport, Err: errors.New("bad spki")}, ErrKeyImport},
		{"key agreement", &DecryptionError{Stage: StageKeyAgreement, Err: errors.New("ecdh")}, ErrKeyAgreement},
		{"unwrap", &DecryptionError{Stage: StageUnwrap, Err: errors.New("gcm")}, ErrUnwrap},
		{"payload", &DecryptionError{Stage: StagePayload, Err: errors.New("gcm")}, ErrPayloadDecrypt},
		{"parse", &DecryptionError{Stage: StageParse, Err: errors.New("json")}, ErrParse},
		{"storage", &StorageError{Op: "load", Err: errors.New("io")}, ErrStorage},
		{"key generation", &KeyGenerationError{Err: errors.New("entropy")}, ErrKeyGeneration},
		{"registration", &RegistrationError{Attempts: 3, Err: errors.New("503")}, ErrRegistration},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
			var verr VaultError
			if !errors.As(tt.err, &verr) {
				t.Errorf("%v does not implement VaultError", tt.err)
			}
		})
	}
}

func TestDecryptionErrorStagesAreDistinct(t *testing.T) {
	t.Parallel()

	unwrap := &DecryptionError{Stage: StageUnwrap, Err: errors.New("gcm")}
	if errors.Is(unwrap, ErrPayloadDecrypt) {
		t.Error("unwrap-stage error matched ErrPayloadDecrypt")
	}
	payload := &DecryptionError{Stage: StagePayload, Err: errors.New("gcm")}
	if errors.Is(payload, ErrUnwrap) {
		t.Error("payload-stage error matched ErrUnwrap")
	}
}

func TestErrorsUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("root cause")
	wrapped := &DecryptionError{Stage: StageUnwrap, Err: fmt.Errorf("stage: %w", cause)}
	if !errors.Is(wrapped, cause) {
		t.Error("DecryptionError did not unwrap to its cause")
	}
	if !errors.Is(&StorageError{Op: "save", Err: cause}, cause) {
		t.Error("StorageError did not unwrap to its cause")
	}
}

func TestWrapCryptoError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       error
		sentinel error
	}{
		{"key import", fmt.Errorf("x: %w", crypto.ErrKeyImportFailed), ErrKeyImport},
		{"key agreement", fmt.Errorf("x: %w", crypto.ErrKeyAgreementFailed), ErrKeyAgreement},
		{"unwrap", fmt.Errorf("x: %w", crypto.ErrUnwrapFailed), ErrUnwrap},
		{"dek size", fmt.Errorf("x: %w", crypto.ErrInvalidDEKSize), ErrUnwrap},
		{"payload", fmt.Errorf("x: %w", crypto.ErrPayloadDecryptFailed), ErrPayloadDecrypt},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := wrapCryptoError(tt.in); !errors.Is(got, tt.sentinel) {
				t.Errorf("wrapCryptoError(%v) = %v, want match for %v", tt.in, got, tt.sentinel)
			}
		})
	}

	if wrapCryptoError(nil) != nil {
		t.Error("wrapCryptoError(nil) != nil")
	}
	plain := errors.New("unrelated")
	if wrapCryptoError(plain) != plain {
		t.Error("unrelated errors should pass through unchanged")
	}
}

func TestUserFacingMessage(t *testing.T) {
	t.Parallel()

	unwrapMsg := UserFacingMessage(&DecryptionError{Stage: StageUnwrap, Err: errors.New("gcm")})
	if !strings.Contains(unwrapMsg, "different device") {
		t.Errorf("unwrap message = %q, want wrong-device wording", unwrapMsg)
	}

	// Every other decrypt-path failure collapses to the corrupted-payload
	// message so internals never leak to the user.
	for _, err := range []error{
		&DecryptionError{Stage: StagePayload, Err: errors.New("gcm")},
		&DecryptionError{Stage: StageParse, Err: errors.New("json")},
		&DecryptionError{Stage: StageKeyImport, Err: errors.New("spki")},
		errors.New("anything else"),
	} {
		if msg := UserFacingMessage(err); msg == unwrapMsg {
			t.Errorf("UserFacingMessage(%v) matched the wrong-device message", err)
		}
	}
}
