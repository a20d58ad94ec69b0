// Package session owns the persisted client session: the bearer token and
// the signed-in user record, kept in a durable key-value store.
package session

import (
	"encoding/json"
	"errors"
	"sync"

	"realtydesk/models"
)

const (
	KeyToken = "auth_token"
	KeyUser  = "user"
)

// ErrNotFound is returned by Store.Get when the key has no value.
var ErrNotFound = errors.New("session: key not found")

// Store is a durable key-value store for session state. The store is a
// process-wide shared resource; last writer wins.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Clear() error
}

// Save persists a completed authentication: the bearer token (when present)
// and the JSON-encoded user record.
func Save(s Store, token string, user models.User) error {
	if token != "" {
		if err := s.Set(KeyToken, token); err != nil {
			return err
		}
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.Set(KeyUser, string(data))
}

// Token returns the stored bearer token, or "" when no session exists.
func Token(s Store) string {
	v, err := s.Get(KeyToken)
	if err != nil {
		return ""
	}
	return v
}

// CurrentUser returns the stored user record.
func CurrentUser(s Store) (*models.User, error) {
	v, err := s.Get(KeyUser)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal([]byte(v), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// MemoryStore keeps session state in memory. Used in tests and for sessions
// the user chose not to remember.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
	return nil
}
