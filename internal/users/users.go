// Package users is a flat-file credential store.
//
// The file is a JSON object keyed by username. Every write re-reads the
// file, modifies it and rewrites it whole. There is no locking: concurrent
// writers in different processes are not supported and the last writer wins.
package users

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

var (
	ErrUserExists        = errors.New("username already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrEmptyCredentials  = errors.New("username and password are required")
)

// Record is the stored credential of one user.
type Record struct {
	PasswordHash string  `json:"password"`
	CreatedAt    float64 `json:"created_at"`
}

// Created returns CreatedAt as a time.
func (r Record) Created() time.Time {
	sec := int64(r.CreatedAt)
	return time.Unix(sec, int64((r.CreatedAt-float64(sec))*1e9))
}

// Store reads and writes the credential file at Path.
type Store struct {
	Path string
	now  func() time.Time
}

func NewStore(path string) *Store {
	return &Store{Path: path, now: time.Now}
}

// HashPassword returns the hex SHA-256 of the password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (s *Store) load() (map[string]Record, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read users %s: %w", s.Path, err)
	}
	records := map[string]Record{}
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("parse users %s: %w", s.Path, err)
	}
	// a file holding JSON null decodes to a nil map
	if records == nil {
		records = map[string]Record{}
	}
	return records, nil
}

func (s *Store) save(records map[string]Record) error {
	b, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.Path, b, 0o600)
}

// Lookup returns the record for username, if any.
func (s *Store) Lookup(username string) (Record, bool, error) {
	records, err := s.load()
	if err != nil {
		return Record{}, false, err
	}
	r, ok := records[username]
	return r, ok, nil
}

// Upsert stores record under username, replacing any previous one.
func (s *Store) Upsert(username string, record Record) error {
	records, err := s.load()
	if err != nil {
		return err
	}
	records[username] = record
	return s.save(records)
}

// Signup creates a new user.
func (s *Store) Signup(username, password string) error {
	if username == "" || password == "" {
		return ErrEmptyCredentials
	}
	_, exists, err := s.Lookup(username)
	if err != nil {
		return err
	}
	if exists {
		return ErrUserExists
	}
	now := s.now()
	return s.Upsert(username, Record{
		PasswordHash: HashPassword(password),
		CreatedAt:    float64(now.UnixNano()) / 1e9,
	})
}

// Login checks a username and password.
func (s *Store) Login(username, password string) (Record, error) {
	r, ok, err := s.Lookup(username)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, ErrUserNotFound
	}
	if r.PasswordHash != HashPassword(password) {
		return Record{}, ErrIncorrectPassword
	}
	return r, nil
}
