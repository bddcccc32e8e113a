// Package obfuscate implements the reversible transform that shadows
// sensitive statement fields once they reach an inspectable surface.
//
// This is defense against casual inspection by the host, not a
// cryptographic guarantee: the literal text is displayed either way, and
// availability wins over the secondary defense on any failure.
package obfuscate

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/hkdf"
)

// sessionInfo is the HKDF domain-separation string for session keys.
const sessionInfo = "statementvault-obfuscate-v1"

// keySize is the session key length in bytes.
const keySize = 32

// Session holds the random session key used to shadow sensitive fields.
// One session exists per isolated context; it is rotated whenever sensitive
// data is cleared (backgrounding, teardown, excessive access attempts).
type Session struct {
	mu      sync.Mutex
	key     []byte
	cleared bool
}

// NewSession generates a fresh session with a random key.
func NewSession() (*Session, error) {
	key, err := deriveSessionKey()
	if err != nil {
		return nil, err
	}
	return &Session{key: key}, nil
}

// deriveSessionKey expands a random seed through HKDF-SHA-256 with the
// package's domain-separation info.
func deriveSessionKey() ([]byte, error) {
	seed := make([]byte, keySize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("generate session seed: %w", err)
	}

	reader := hkdf.New(sha256.New, seed, nil, []byte(sessionInfo))
	key := make([]byte, keySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}

	for i := range seed {
		seed[i] = 0
	}
	return key, nil
}

// Apply returns the obfuscated encoding of value under the current session
// key: a keystream XOR, base64 encoded. On a cleared session the literal
// value passes through unchanged.
func (s *Session) Apply(value string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleared || len(s.key) == 0 {
		return value
	}
	return base64.StdEncoding.EncodeToString(s.transform([]byte(value)))
}

// Reveal reverses Apply. It fails on malformed input; callers fall back to
// the literal value on error.
func (s *Session) Reveal(encoded string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleared || len(s.key) == 0 {
		return encoded, nil
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode shadow value: %w", err)
	}
	return string(s.transform(raw)), nil
}

// transform XORs data with the repeating session key. Symmetric, so it
// serves both directions. Caller holds the lock.
func (s *Session) transform(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ s.key[i%len(s.key)]
	}
	return out
}

// Rotate replaces the session key with a fresh one and reactivates a
// cleared session. Shadows produced under the old key become unreadable.
func (s *Session) Rotate() error {
	key, err := deriveSessionKey()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.zeroKeyLocked()
	s.key = key
	s.cleared = false
	return nil
}

// Clear irreversibly zeroes the session key. Subsequent Apply/Reveal calls
// pass values through until Rotate.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zeroKeyLocked()
	s.key = nil
	s.cleared = true
}

func (s *Session) zeroKeyLocked() {
	for i := range s.key {
		s.key[i] = 0
	}
}

// Fingerprint identifies the current key without revealing it. Used to
// verify rotation actually changed the key.
func (s *Session) Fingerprint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleared || len(s.key) == 0 {
		return ""
	}
	sum := sha256.Sum256(s.key)
	return hex.EncodeToString(sum[:8])
}
