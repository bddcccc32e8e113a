package crypto

import "errors"

var (
	// ErrKeyImportFailed is returned when the sender public key cannot be
	// parsed as an SPKI-encoded P-256 key.
	ErrKeyImportFailed = errors.New("sender public key import failed")

	// ErrKeyAgreementFailed is returned when the ECDH agreement fails or
	// produces a shared secret of unexpected length.
	ErrKeyAgreementFailed = errors.New("key agreement failed")

	// ErrUnwrapFailed is returned when the wrapped DEK fails authentication.
	// This signals either a wrong device key (the envelope was not encrypted
	// for this device) or a corrupted wrap.
	ErrUnwrapFailed = errors.New("DEK unwrap failed")

	// ErrPayloadDecryptFailed is returned when the payload fails
	// authentication against the unwrapped DEK.
	ErrPayloadDecryptFailed = errors.New("payload decrypt failed")

	// ErrKeyGenerationFailed is returned when a device key pair cannot be
	// generated.
	ErrKeyGenerationFailed = errors.New("key generation failed")

	// ErrInvalidKeySize is returned when an AES key has the wrong size.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidNonceSize is returned when an AES-GCM nonce has the wrong size.
	ErrInvalidNonceSize = errors.New("invalid nonce size")

	// ErrInvalidDEKSize is returned when an unwrapped DEK has the wrong size.
	ErrInvalidDEKSize = errors.New("invalid DEK size")

	// ErrInvalidPrivateKey is returned when persisted private key material
	// cannot be imported.
	ErrInvalidPrivateKey = errors.New("invalid private key material")
)
