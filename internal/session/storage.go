package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Record is what the client persists between runs: the session token, a
// logged-in marker, and a cached password-free profile.
type Record struct {
	Token    string   `json:"token,omitempty"`
	LoggedIn bool     `json:"is_logged_in,omitempty"`
	User     *Profile `json:"user,omitempty"`
}

// Credentials is the durable key-value store behind the session.
type Credentials interface {
	Save(Record) error
	Load() (Record, error)
	Clear() error
}

// OpenCredentials selects a storage driver by name. "file" persists to
// credentials.json under dir; "memory" is for tests and ephemeral sessions.
func OpenCredentials(driver, dir string) (Credentials, error) {
	switch driver {
	case "file":
		return NewFileCredentials(dir), nil
	case "memory":
		return NewMemoryCredentials(), nil
	default:
		return nil, fmt.Errorf("unknown credentials driver %q", driver)
	}
}

// fileCredentials stores the record as JSON with owner-only permissions.
type fileCredentials struct {
	path string
	mu   sync.Mutex
}

// NewFileCredentials returns file-backed credential storage rooted at dir.
func NewFileCredentials(dir string) Credentials {
	return &fileCredentials{path: filepath.Join(dir, "credentials.json")}
}

func (f *fileCredentials) Save(rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0600)
}

func (f *fileCredentials) Load() (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("corrupt credentials file: %w", err)
	}
	return rec, nil
}

func (f *fileCredentials) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// memoryCredentials keeps the record in process memory only.
type memoryCredentials struct {
	mu  sync.Mutex
	rec Record
}

// NewMemoryCredentials returns in-memory credential storage.
func NewMemoryCredentials() Credentials {
	return &memoryCredentials{}
}

func (m *memoryCredentials) Save(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = rec
	return nil
}

func (m *memoryCredentials) Load() (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, nil
}

func (m *memoryCredentials) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = Record{}
	return nil
}
