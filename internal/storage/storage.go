package storage

import (
	"context"
	"errors"

	"github.com/MikhailRaia/shortlink/internal/model"
)

var (
	// ErrNotFound is returned when no mapping exists for a short URL.
	ErrNotFound = errors.New("short url not found")
	// ErrShortURLExists is returned by Create when the token is already taken.
	ErrShortURLExists = errors.New("short url already exists")
)

// MappingStore persists URL mappings. Implementations must be safe for
// concurrent use and must apply IncrementClicks atomically.
type MappingStore interface {
	Create(ctx context.Context, mapping model.URLMapping) error
	Get(ctx context.Context, shortURL string) (model.URLMapping, error)
	IncrementClicks(ctx context.Context, shortURL string) (model.URLMapping, error)
	Ping(ctx context.Context) error
	Close() error
}
