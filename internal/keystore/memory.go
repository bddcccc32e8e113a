package keystore

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store. It backs tests and hosts that supply
// no storage path; records do not survive a context restart.
type MemoryStore struct {
	mu     sync.Mutex
	rec    *Record
	closed bool

	// FailLoad, FailSave force the next operation to return the given
	// error. Test hook only.
	FailLoad error
	FailSave error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.FailLoad != nil {
		return nil, s.FailLoad
	}
	if s.rec == nil {
		return nil, ErrNotFound
	}
	cp := *s.rec
	cp.PrivateKeyMaterial = append([]byte(nil), s.rec.PrivateKeyMaterial...)
	cp.PublicKeyMaterial = append([]byte(nil), s.rec.PublicKeyMaterial...)
	return &cp, nil
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.FailSave != nil {
		return s.FailSave
	}
	cp := *rec
	cp.PrivateKeyMaterial = append([]byte(nil), rec.PrivateKeyMaterial...)
	cp.PublicKeyMaterial = append([]byte(nil), rec.PublicKeyMaterial...)
	s.rec = &cp
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.rec != nil {
		s.rec.Wipe()
		s.rec = nil
	}
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if s.rec != nil {
		s.rec.Wipe()
		s.rec = nil
	}
	s.closed = true
	return nil
}
