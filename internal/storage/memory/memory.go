package memory

import (
	"context"
	"sync"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/storage"
)

// Storage implements in-memory MappingStore for testing and development.
type Storage struct {
	urls  map[string]model.URLMapping
	mutex sync.RWMutex
}

// NewStorage creates a new in-memory storage instance.
func NewStorage() *Storage {
	return &Storage{
		urls: make(map[string]model.URLMapping),
	}
}

// Create stores a new mapping unless its short URL is already taken.
func (s *Storage) Create(_ context.Context, mapping model.URLMapping) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.urls[mapping.ShortURL]; exists {
		return storage.ErrShortURLExists
	}

	s.urls[mapping.ShortURL] = mapping
	return nil
}

// Get retrieves the mapping for a given short URL.
func (s *Storage) Get(_ context.Context, shortURL string) (model.URLMapping, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	mapping, found := s.urls[shortURL]
	if !found {
		return model.URLMapping{}, storage.ErrNotFound
	}

	return mapping, nil
}

// IncrementClicks adds one visit to the mapping and returns the updated record.
func (s *Storage) IncrementClicks(_ context.Context, shortURL string) (model.URLMapping, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	mapping, found := s.urls[shortURL]
	if !found {
		return model.URLMapping{}, storage.ErrNotFound
	}

	mapping.Clicks++
	s.urls[shortURL] = mapping

	return mapping, nil
}

// Ping always succeeds for the in-memory storage.
func (s *Storage) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Storage) Close() error {
	return nil
}

// Len returns the number of stored mappings.
func (s *Storage) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.urls)
}
