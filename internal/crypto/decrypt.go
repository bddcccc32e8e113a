package crypto

import (
	"crypto/sha256"
	"fmt"
)

// EncryptedStatement is the decoded-field view of an envelope handed to the
// decryption engine. All fields arrive base64 in the wire envelope; the
// caller decodes them before constructing this value.
type EncryptedStatement struct {
	// EncryptedPayload is the AES-256-GCM ciphertext of the statement
	// plaintext, tag appended.
	EncryptedPayload []byte
	// WrappedDEK is the AES-256-GCM ciphertext of the DEK under the
	// wrapping key and derived wrap IV.
	WrappedDEK []byte
	// IV is the 12-byte nonce for the payload layer.
	IV []byte
	// SenderPublicKey is the sender's ephemeral P-256 key, SPKI encoded.
	SenderPublicKey []byte
}

// Decrypt runs the hybrid decryption protocol and returns the UTF-8
// statement plaintext. Each protocol step fails with its own sentinel so
// callers can map failures without inspecting message text.
//
// The shared secret, wrapping key and DEK are single-use: they are scoped
// to this call and zeroed before it returns.
func Decrypt(env *EncryptedStatement, keypair *KeyPair) ([]byte, error) {
	senderPub, err := ImportSenderPublicKey(env.SenderPublicKey)
	if err != nil {
		return nil, err
	}

	sharedSecret, err := keypair.agree(senderPub)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(sharedSecret)

	wrappingKey, wrapIV := deriveWrapMaterial(sharedSecret)
	defer zeroBytes(wrappingKey)

	dek, err := decryptAESGCM(wrappingKey, wrapIV, env.WrappedDEK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnwrapFailed, err)
	}
	defer zeroBytes(dek)

	if len(dek) != DEKSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidDEKSize, len(dek), DEKSize)
	}

	plaintext, err := decryptAESGCM(dek, env.IV, env.EncryptedPayload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadDecryptFailed, err)
	}

	return plaintext, nil
}

// deriveWrapMaterial derives the wrapping key and wrap IV from the shared
// secret. The wrapping key is the first 32 bytes of the secret; the wrap IV
// is the first 12 bytes of SHA-256(secret). The IV is deterministic per
// shared secret but never repeats across plaintexts because every envelope
// carries a distinct ephemeral sender key.
func deriveWrapMaterial(sharedSecret []byte) (key, iv []byte) {
	key = make([]byte, WrappingKeySize)
	copy(key, sharedSecret[:WrappingKeySize])

	digest := sha256.Sum256(sharedSecret)
	iv = make([]byte, WrapIVSize)
	copy(iv, digest[:WrapIVSize])

	return key, iv
}
