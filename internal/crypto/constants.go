package crypto

const (
	// SharedSecretSize is the size of an ECDH P-256 shared secret in bytes.
	SharedSecretSize = 32

	// WrappingKeySize is the size of the DEK wrapping key in bytes.
	// The wrapping key is the first 32 bytes of the shared secret.
	WrappingKeySize = 32

	// WrapIVSize is the size of the derived wrap IV in bytes.
	// The wrap IV is the first 12 bytes of SHA-256(shared secret).
	WrapIVSize = 12

	// DEKSize is the size of the data encryption key in bytes.
	DEKSize = 32

	// AESKeySize is the size of an AES-256 key in bytes.
	AESKeySize = 32
	// AESNonceSize is the size of an AES-GCM nonce in bytes.
	AESNonceSize = 12
	// AESTagSize is the size of an AES-GCM authentication tag in bytes.
	AESTagSize = 16
)

// AlgsCiphersuite is the canonical string representation of the algorithm suite.
var AlgsCiphersuite = "ECDH-P256:AES-256-GCM:SHA-256"
