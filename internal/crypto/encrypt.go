package crypto

import (
	"crypto/rand"
	"fmt"
)

// Encrypt is the reference encryptor: it produces an envelope for the given
// recipient public key (SPKI, P-256). It exists for the testhelper command
// and round-trip tests; production envelopes come from the backend.
//
// A fresh ephemeral sender key pair and a fresh DEK are generated per call,
// and the payload IV is random.
func Encrypt(plaintext, recipientSPKI []byte) (*EncryptedStatement, error) {
	iv := make([]byte, AESNonceSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generate payload IV: %w", err)
	}
	return EncryptWithIV(plaintext, recipientSPKI, iv)
}

// EncryptWithIV encrypts with a caller-supplied payload IV. Reference
// vectors pin the IV; everything else should use Encrypt.
func EncryptWithIV(plaintext, recipientSPKI, iv []byte) (*EncryptedStatement, error) {
	recipientPub, err := ImportSenderPublicKey(recipientSPKI)
	if err != nil {
		return nil, err
	}

	sender, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	sharedSecret, err := sender.agree(recipientPub)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(sharedSecret)

	wrappingKey, wrapIV := deriveWrapMaterial(sharedSecret)
	defer zeroBytes(wrappingKey)

	dek := make([]byte, DEKSize)
	if _, err := rand.Read(dek); err != nil {
		return nil, fmt.Errorf("generate DEK: %w", err)
	}
	defer zeroBytes(dek)

	wrappedDEK, err := encryptAESGCM(wrappingKey, wrapIV, dek)
	if err != nil {
		return nil, fmt.Errorf("wrap DEK: %w", err)
	}

	encryptedPayload, err := encryptAESGCM(dek, iv, plaintext)
	if err != nil {
		return nil, fmt.Errorf("encrypt payload: %w", err)
	}

	return &EncryptedStatement{
		EncryptedPayload: encryptedPayload,
		WrappedDEK:       wrappedDEK,
		IV:               iv,
		SenderPublicKey:  sender.PublicKeySPKI,
	}, nil
}
