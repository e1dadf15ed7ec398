package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// record is one line of the storage file. Every state change of a mapping
// appends a new line; the last line for a short URL wins on load.
type record struct {
	UUID string `json:"uuid"`
	model.URLMapping
}

// Storage implements MappingStore backed by an append-only JSONL file.
type Storage struct {
	filePath string
	urls     map[string]model.URLMapping
	file     *os.File
	mu       sync.RWMutex
}

// NewStorage creates a file-backed storage at the provided path and replays
// any records already present.
func NewStorage(filePath string) (*Storage, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	s := &Storage{
		filePath: filePath,
		urls:     make(map[string]model.URLMapping),
	}

	if err := s.loadFromFile(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for writing: %w", err)
	}
	s.file = f

	log.Debug().
		Str("path", filePath).
		Int("records", len(s.urls)).
		Msg("File storage loaded")

	return s, nil
}

func (s *Storage) loadFromFile() error {
	file, err := os.OpenFile(s.filePath, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	for decoder.More() {
		var rec record
		if err := decoder.Decode(&rec); err != nil {
			return fmt.Errorf("failed to decode record: %w", err)
		}

		s.urls[rec.ShortURL] = rec.URLMapping
	}

	return nil
}

// appendRecord must be called with s.mu held so that lines for the same short
// URL are written in the order their state changed.
func (s *Storage) appendRecord(mapping model.URLMapping) error {
	data, err := json.Marshal(record{
		UUID:       uuid.NewString(),
		URLMapping: mapping,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if _, err := s.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	return nil
}

// Create appends a new mapping unless its short URL is already taken.
func (s *Storage) Create(_ context.Context, mapping model.URLMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.urls[mapping.ShortURL]; exists {
		return storage.ErrShortURLExists
	}

	if err := s.appendRecord(mapping); err != nil {
		return err
	}

	s.urls[mapping.ShortURL] = mapping
	return nil
}

// Get retrieves the mapping for a given short URL.
func (s *Storage) Get(_ context.Context, shortURL string) (model.URLMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mapping, found := s.urls[shortURL]
	if !found {
		return model.URLMapping{}, storage.ErrNotFound
	}

	return mapping, nil
}

// IncrementClicks records one more visit and persists the new counter.
func (s *Storage) IncrementClicks(_ context.Context, shortURL string) (model.URLMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, found := s.urls[shortURL]
	if !found {
		return model.URLMapping{}, storage.ErrNotFound
	}

	mapping.Clicks++
	if err := s.appendRecord(mapping); err != nil {
		return model.URLMapping{}, err
	}

	s.urls[shortURL] = mapping
	return mapping, nil
}

// Ping checks that the storage file is still reachable.
func (s *Storage) Ping(context.Context) error {
	_, err := os.Stat(s.filePath)
	return err
}

// Close closes the underlying file.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil
	return err
}
