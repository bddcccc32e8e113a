// Package crypto implements the hybrid decryption protocol for encrypted
// financial statements.
//
// Each statement arrives as an envelope carrying an AES-256-GCM encrypted
// payload, the payload's data encryption key (DEK) wrapped with a key derived
// from an ECDH P-256 agreement, and the sender's ephemeral public key in
// SPKI form. Decryption proceeds in order:
//
//  1. Import the sender public key (X.509/SPKI, P-256).
//  2. ECDH agreement with the device private key, yielding a 32-byte
//     shared secret.
//  3. Derive the wrapping key (shared secret bytes [0:32]) and the wrap IV
//     (SHA-256(shared secret)[0:12]).
//  4. AES-256-GCM decrypt the wrapped DEK.
//  5. AES-256-GCM decrypt the payload with the DEK and the envelope IV.
//
// The wrap IV is derived rather than transmitted: it removes one wire field
// and is fresh per sender-key pairing because every envelope carries a
// distinct ephemeral sender public key. The shared secret and DEK live for
// a single Decrypt call and are zeroed before it returns.
//
// The package also provides a reference encryptor used by the testhelper
// command and by round-trip tests.
package crypto
