package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileStore implements KVStore on a local CSV file
// It loads all entries into memory at open and rewrites the file on every Set
//
// CSV Format: key,value
// Example: ip-lookup-history,"[{""id"":""..."",""type"":""ip""}]"
type FileStore struct {
	path string

	mu   sync.RWMutex
	data map[string]string
}

// NewFileStore opens (or prepares) the CSV file at filePath
// A missing file is not an error: the store starts empty and the file
// is created on the first Set
func NewFileStore(filePath string) (*FileStore, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file store path is empty")
	}

	store := &FileStore{
		path: filePath,
		data: make(map[string]string),
	}

	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to open store file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	for i, record := range records {
		// Skip header row
		if i == 0 && len(record) == 2 && record[0] == "key" && record[1] == "value" {
			continue
		}

		// Skip invalid records instead of failing
		if len(record) != 2 || record[0] == "" {
			continue
		}

		store.data[record[0]] = record[1]
	}

	return store, nil
}

// Get implements the KVStore interface method
func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.data[key]
	return value, exists, nil
}

// Set implements the KVStore interface method
// The file is replaced atomically via a temp file and rename
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.data[key]
	s.data[key] = value

	if err := s.flush(); err != nil {
		// Keep memory consistent with what is on disk
		if existed {
			s.data[key] = previous
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

// flush writes all entries to disk; must be called with mu held
func (s *FileStore) flush() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	writer := csv.NewWriter(tmp)
	records := make([][]string, 0, len(keys)+1)
	records = append(records, []string{"key", "value"})
	for _, k := range keys {
		records = append(records, []string{k, s.data[k]})
	}
	if err := writer.WriteAll(records); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

// Close implements the KVStore interface
// Every Set is already on disk, so there is nothing to flush
func (s *FileStore) Close() error {
	return nil
}
