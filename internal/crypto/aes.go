package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// decryptAESGCM decrypts data using AES-256-GCM with a 128-bit tag.
func decryptAESGCM(key, nonce, ciphertext []byte) ([]byte, error) {
	if len(key) != AESKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), AESKeySize)
	}

	if len(nonce) != AESNonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), AESNonceSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return aesGCM.Open(nil, nonce, ciphertext, nil)
}

// encryptAESGCM encrypts data using AES-256-GCM with a 128-bit tag.
// The nonce is supplied by the caller and is not prepended to the output.
func encryptAESGCM(key, nonce, plaintext []byte) ([]byte, error) {
	if len(key) != AESKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), AESKeySize)
	}

	if len(nonce) != AESNonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), AESNonceSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return gcm.Seal(nil, nonce, plaintext, nil), nil
}

// zeroBytes overwrites a byte slice with zeros. Used to clear shared
// secrets and DEKs once a decrypt call no longer needs them.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
