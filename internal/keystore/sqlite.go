package keystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists the device record in a local SQLite database.
// The record blob is CBOR-encoded.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	closed bool
}

// NewSQLiteStore opens (creating if needed) the key store database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open key store: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS device_keys (
		record_key TEXT PRIMARY KEY,
		record     BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init key store schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM device_keys WHERE record_key = ?`, recordKey).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read key record: %w", err)
	}

	var rec Record
	if err := cbor.Unmarshal(blob, &rec); err != nil {
		return nil, fmt.Errorf("decode key record: %w", err)
	}

	return &rec, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	blob, err := cbor.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode key record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO device_keys (record_key, record, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(record_key) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
		recordKey, blob, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write key record: %w", err)
	}

	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM device_keys WHERE record_key = ?`, recordKey); err != nil {
		return fmt.Errorf("delete key record: %w", err)
	}

	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
