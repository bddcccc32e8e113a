package crypto

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/x509"
	"fmt"
	"io"
)

// randReader is the random source used for key generation.
// It defaults to nil (which uses crypto/rand) but can be overridden for testing.
var randReader io.Reader

// KeyPair is the device's P-256 key pair. The private key never leaves this
// package except as PKCS#8 material destined for the key store, which sits
// inside the same isolation boundary.
type KeyPair struct {
	private *ecdh.PrivateKey

	// PublicKeySPKI is the X.509/SPKI encoding of the public key.
	PublicKeySPKI []byte
	// PublicKeyB64 is the SPKI encoding as standard base64, the form
	// announced to the backend.
	PublicKeyB64 string
}

// GenerateKeyPair creates a new P-256 key pair.
func GenerateKeyPair() (*KeyPair, error) {
	r := randReader
	if r == nil {
		r = rand.Reader
	}

	priv, err := ecdh.P256().GenerateKey(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGenerationFailed, err)
	}

	return newKeyPair(priv)
}

// KeyPairFromPKCS8 reconstructs a key pair from persisted PKCS#8 private
// key material.
func KeyPairFromPKCS8(der []byte) (*KeyPair, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}

	var priv *ecdh.PrivateKey
	switch k := parsed.(type) {
	case *ecdsa.PrivateKey:
		priv, err = k.ECDH()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
		}
	case *ecdh.PrivateKey:
		priv = k
	default:
		return nil, fmt.Errorf("%w: unexpected key type %T", ErrInvalidPrivateKey, parsed)
	}

	if priv.Curve() != ecdh.P256() {
		return nil, fmt.Errorf("%w: not a P-256 key", ErrInvalidPrivateKey)
	}

	return newKeyPair(priv)
}

func newKeyPair(priv *ecdh.PrivateKey) (*KeyPair, error) {
	spki, err := x509.MarshalPKIXPublicKey(priv.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGenerationFailed, err)
	}

	return &KeyPair{
		private:       priv,
		PublicKeySPKI: spki,
		PublicKeyB64:  ToBase64(spki),
	}, nil
}

// MarshalPKCS8 exports the private key as PKCS#8 for the key store.
// The export never crosses the isolation boundary; it exists so the pair
// survives isolated-context restarts.
func (k *KeyPair) MarshalPKCS8() ([]byte, error) {
	return x509.MarshalPKCS8PrivateKey(k.private)
}

// Equal reports whether two key pairs hold the same private key.
func (k *KeyPair) Equal(other *KeyPair) bool {
	if k == nil || other == nil {
		return k == other
	}
	return k.private.Equal(other.private)
}

// ImportSenderPublicKey parses an SPKI-encoded P-256 public key, the form
// in which envelopes carry the sender's ephemeral key.
func ImportSenderPublicKey(spki []byte) (*ecdh.PublicKey, error) {
	parsed, err := x509.ParsePKIXPublicKey(spki)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyImportFailed, err)
	}

	var pub *ecdh.PublicKey
	switch p := parsed.(type) {
	case *ecdsa.PublicKey:
		pub, err = p.ECDH()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyImportFailed, err)
		}
	case *ecdh.PublicKey:
		pub = p
	default:
		return nil, fmt.Errorf("%w: unexpected key type %T", ErrKeyImportFailed, parsed)
	}

	if pub.Curve() != ecdh.P256() {
		return nil, fmt.Errorf("%w: not a P-256 key", ErrKeyImportFailed)
	}

	return pub, nil
}

// agree runs the ECDH agreement between the device private key and the
// sender public key, producing exactly SharedSecretSize bytes.
func (k *KeyPair) agree(senderPub *ecdh.PublicKey) ([]byte, error) {
	secret, err := k.private.ECDH(senderPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyAgreementFailed, err)
	}

	if len(secret) != SharedSecretSize {
		zeroBytes(secret)
		return nil, fmt.Errorf("%w: secret is %d bytes, want %d",
			ErrKeyAgreementFailed, len(secret), SharedSecretSize)
	}

	return secret, nil
}
