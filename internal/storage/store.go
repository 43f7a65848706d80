// Package storage is the client's durable key/value storage. Each key holds
// one YAML document.
package storage

import (
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
)

// Fixed keys.
const (
	// KeyAuth holds the sealed session token and nothing else.
	KeyAuth = "amply-auth"
	// KeyUI holds UI preferences (theme, sidebar, background).
	KeyUI = "amply-ui"
	// KeyLanguage holds the locale.
	KeyLanguage = "amply-language"
)

// Keys lists every key the client writes.
var Keys = []string{KeyAuth, KeyUI, KeyLanguage}

// Store persists values by key.
type Store interface {
	// Get decodes the value under key into out. It reports false when the
	// key has never been written or was removed.
	Get(key string, out any) (bool, error)
	// Set replaces the value under key.
	Set(key string, value any) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}

// MemoryStore is an in-process Store used by tests and by --ephemeral runs.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get implements Store.
func (m *MemoryStore) Get(key string, out any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return false, amplyerrors.Wrap(amplyerrors.ErrCodeStorageRead, "failed to decode "+key, err)
	}
	return true, nil
}

// Set implements Store.
func (m *MemoryStore) Set(key string, value any) error {
	raw, err := yaml.Marshal(value)
	if err != nil {
		return amplyerrors.Wrap(amplyerrors.ErrCodeStorageWrite, "failed to encode "+key, err)
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

// Remove implements Store.
func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Has reports whether key is present.
func (m *MemoryStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

// Keys returns the stored keys in sorted order.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
