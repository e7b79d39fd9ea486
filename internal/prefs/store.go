package prefs

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"sync"
)

type Store struct {
	mu   sync.Mutex
	name string
	db   *sql.DB
}

var (
	ErrBadName  = fmt.Errorf("bad name for store")
	ErrNotFound = fmt.Errorf("value not found")
)

func isLetter(c rune) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !isLetter(c) {
			return false
		}
	}
	return true
}

// Creates a new [Store] instance backed by table name. name may only contain
// Latin letters and underscores.
func NewStore(db *sql.DB, name string) (*Store, error) {
	if !isLetters(name) {
		return nil, ErrBadName
	}

	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS ` + name + ` (
	key		TEXT PRIMARY KEY,
	value	BLOB
);`)
	if err != nil {
		return nil, err
	}
	s := &Store{name: name, db: db}
	return s, nil
}

// Retrieve a value from the store. Value must be a pointer or nil. If key is
// not present, [ErrNotFound] is returned. If value is nil, data read from store
// is silently discarded.
func (s *Store) Get(key string, value any) error {
	var v []uint8
	err := s.db.QueryRow(
		`SELECT value FROM `+s.name+` WHERE key = ?;`, key,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	return gob.NewDecoder(bytes.NewReader(v)).Decode(value)
}

// Inserts a new key-value pair or updates an existing one.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return err
	}
	_, err := s.db.Exec(`
INSERT INTO `+s.name+` (key, value)
VALUES(?, ?)
ON CONFLICT(key)
DO UPDATE SET value=excluded.value;`,
		key, buf.Bytes())
	return err
}

// Deletes key from store without checking if it existed.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM `+s.name+` WHERE key = ?;`, key)
	return err
}

func (s *Store) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM ` + s.name + `;`)
	return err
}

func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + s.name + `;`).Scan(&count)
	return count, err
}

func (s *Store) GetAllKeys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM ` + s.name + `;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
