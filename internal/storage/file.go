package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
)

const fileExt = ".yaml"

// FileStore keeps one YAML file per key under dir. Files are written 0600
// through a temp file and rename, so readers never see a partial value.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the directory (0700) if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, amplyerrors.Wrap(amplyerrors.ErrCodeStorageWrite, "failed to create state directory", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the file that backs key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

// KeyForPath maps a file in the state directory back to its key.
func KeyForPath(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, fileExt) {
		return "", false
	}
	return strings.TrimSuffix(base, fileExt), true
}

func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return amplyerrors.New(amplyerrors.ErrCodeStorageWrite, fmt.Sprintf("invalid storage key %q", key))
	}
	return nil
}

// Get implements Store.
func (s *FileStore) Get(key string, out any) (bool, error) {
	if err := validKey(key); err != nil {
		return false, err
	}

	s.mu.Lock()
	raw, err := os.ReadFile(s.Path(key))
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, amplyerrors.Wrap(amplyerrors.ErrCodeStorageRead, "failed to read "+key, err)
	}

	if err := yaml.Unmarshal(raw, out); err != nil {
		return false, amplyerrors.Wrap(amplyerrors.ErrCodeStorageRead, "failed to decode "+key, err)
	}
	return true, nil
}

// Set implements Store.
func (s *FileStore) Set(key string, value any) error {
	if err := validKey(key); err != nil {
		return err
	}

	raw, err := yaml.Marshal(value)
	if err != nil {
		return amplyerrors.Wrap(amplyerrors.ErrCodeStorageWrite, "failed to encode "+key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*")
	if err != nil {
		return amplyerrors.Wrap(amplyerrors.ErrCodeStorageWrite, "failed to write "+key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return amplyerrors.Wrap(amplyerrors.ErrCodeStorageWrite, "failed to write "+key, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return amplyerrors.Wrap(amplyerrors.ErrCodeStorageWrite, "failed to write "+key, err)
	}
	if err := tmp.Close(); err != nil {
		return amplyerrors.Wrap(amplyerrors.ErrCodeStorageWrite, "failed to write "+key, err)
	}
	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		return amplyerrors.Wrap(amplyerrors.ErrCodeStorageWrite, "failed to write "+key, err)
	}
	return nil
}

// Remove implements Store.
func (s *FileStore) Remove(key string) error {
	if err := validKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return amplyerrors.Wrap(amplyerrors.ErrCodeStorageWrite, "failed to remove "+key, err)
	}
	return nil
}
