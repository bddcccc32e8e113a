// Package keystore persists the device key-pair record in device-local
// storage. One record exists per device, stored under a fixed record key.
//
// The private key material is stored in exportable PKCS#8 form so the pair
// survives isolated-context restarts. The export never crosses the
// isolation boundary: both the store and its callers live inside it.
package keystore

import (
	"context"
	"errors"
	"time"
)

// recordKey is the fixed key under which the single device record lives.
const recordKey = "device-keypair-v1"

var (
	// ErrNotFound is returned by Load when no record has been persisted.
	ErrNotFound = errors.New("no persisted key record")

	// ErrClosed is returned when the store has been closed.
	ErrClosed = errors.New("key store is closed")
)

// Record is the persisted device key-pair record.
type Record struct {
	// PrivateKeyMaterial is the PKCS#8 encoding of the private key.
	PrivateKeyMaterial []byte `cbor:"1,keyasint"`
	// PublicKeyMaterial is the SPKI encoding of the public key.
	PublicKeyMaterial []byte `cbor:"2,keyasint"`
	// CreatedAt is the generation time, Unix seconds.
	CreatedAt int64 `cbor:"3,keyasint"`
}

// Created returns the generation time of the record.
func (r *Record) Created() time.Time {
	return time.Unix(r.CreatedAt, 0)
}

// Wipe overwrites the record's key material in place.
func (r *Record) Wipe() {
	for i := range r.PrivateKeyMaterial {
		r.PrivateKeyMaterial[i] = 0
	}
	for i := range r.PublicKeyMaterial {
		r.PublicKeyMaterial[i] = 0
	}
}

// Store is the key store adapter. Implementations are safe for sequential
// use from a single context; writes to the one durable record are never
// concurrent because lifecycle management is serialized.
type Store interface {
	// Load retrieves the persisted record, or ErrNotFound if absent.
	Load(ctx context.Context) (*Record, error)

	// Save persists the record, replacing any previous one.
	Save(ctx context.Context, rec *Record) error

	// Delete removes the persisted record. Deleting an absent record is
	// not an error.
	Delete(ctx context.Context) error

	// Close releases the underlying storage.
	Close() error
}
