// Package ifjcache stores compiled results keyed by source hash, so
// cmd/ifjd can skip recompiling a program it has already seen. It is
// grounded on the engine's own sqlite-backed datastore: one *sql.DB opened
// through modernc.org/sqlite (pure Go, no cgo), rows encoded with
// github.com/dekarrin/rezi the same way the engine persists a *game.State
// blob.
package ifjcache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	"modernc.org/sqlite"
)

// ErrNotFound is returned by Get when no cached entry matches the hash.
var ErrNotFound = errors.New("ifjcache: not found")

// Entry is one cached compilation result.
type Entry struct {
	ID        uuid.UUID
	SourceSum string // hex sha256 of the exact source bytes compiled
	Code      string // emitted IFJcode24, or empty if ErrCode is set
	ErrCode   int    // 0 if Code holds a successful compilation
	ErrMsg    string
}

// Store is a sqlite-backed cache of compilation results.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the sqlite file at path and ensures its
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapDBError(err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS compile_results (
			id TEXT PRIMARY KEY,
			source_sum TEXT UNIQUE NOT NULL,
			payload BLOB NOT NULL
		)
	`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SourceSum hashes source bytes into the key Get/Put use.
func SourceSum(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached entry for sourceSum, or ErrNotFound.
func (s *Store) Get(sourceSum string) (Entry, error) {
	var id, payload string
	row := s.db.QueryRow(`SELECT id, payload FROM compile_results WHERE source_sum = ?`, sourceSum)
	if err := row.Scan(&id, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, wrapDBError(err)
	}

	var e Entry
	if _, err := rezi.DecBinary([]byte(payload), &e); err != nil {
		return Entry{}, fmt.Errorf("ifjcache: decode cached entry: %w", err)
	}
	return e, nil
}

// Put stores (or replaces) the cached entry for e.SourceSum.
func (s *Store) Put(e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	payload := rezi.EncBinary(e)

	_, err := s.db.Exec(`
		INSERT INTO compile_results (id, source_sum, payload) VALUES (?, ?, ?)
		ON CONFLICT(source_sum) DO UPDATE SET payload = excluded.payload
	`, e.ID.String(), e.SourceSum, string(payload))
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func wrapDBError(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	}
	return err
}
