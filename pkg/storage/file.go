package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore implements a file-based store for CLI usage.
// Each entry is stored as a JSON file under a hash-derived path.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-based store rooted at dir.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// fileEntry wraps stored bytes with the original key so that Keys can
// recover key names from hashed file paths.
type fileEntry struct {
	Key  string `json:"key"`
	Data []byte `json:"data"`
}

// Get retrieves the bytes stored under key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt entry - treat as absent
		_ = os.Remove(s.path(key))
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set stores data under key, replacing any previous value.
func (s *FileStore) Set(ctx context.Context, key string, data []byte) error {
	entryData, err := json.Marshal(fileEntry{Key: key, Data: data})
	if err != nil {
		return err
	}

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, entryData, 0644)
}

// Delete removes the value stored under key.
// Deleting an absent key is not an error.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Keys returns the keys of all entries under the store directory.
func (s *FileStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".json") {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var entry fileEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil // skip corrupt entries
		}
		keys = append(keys, entry.Key)
		return nil
	})
	return keys, err
}

// Close does nothing for a file store.
func (s *FileStore) Close() error {
	return nil
}

// path converts a key to a file path.
// Uses a hash-based directory split to avoid too many files in one dir.
func (s *FileStore) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	hash := hex.EncodeToString(sum[:])
	return filepath.Join(s.dir, hash[:2], hash[2:]+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
