package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikhailRaia/shortlink/internal/generator"
	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/storage"
	"github.com/rs/zerolog/log"
)

// DefaultMaxAttempts bounds how many tokens are tried when the store reports
// a collision.
const DefaultMaxAttempts = 5

// MappingCreator is the part of the store the Shortener writes to.
type MappingCreator interface {
	Create(ctx context.Context, mapping model.URLMapping) error
}

// Shortener creates new short URL mappings.
type Shortener struct {
	store       MappingCreator
	generate    func() (string, error)
	maxAttempts int
}

// ShortenerOption customises a Shortener.
type ShortenerOption func(*Shortener)

// WithGenerator replaces the token source.
func WithGenerator(generate func() (string, error)) ShortenerOption {
	return func(s *Shortener) {
		s.generate = generate
	}
}

// WithMaxAttempts sets the collision retry bound. Values below 1 are ignored.
func WithMaxAttempts(n int) ShortenerOption {
	return func(s *Shortener) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// NewShortener constructs a Shortener writing to store.
func NewShortener(store MappingCreator, opts ...ShortenerOption) *Shortener {
	s := &Shortener{
		store:       store,
		generate:    generator.ShortURL,
		maxAttempts: DefaultMaxAttempts,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Shorten stores originalURL under a fresh token and returns the new record.
// An empty originalURL fails with ErrValidation before the store is touched.
func (s *Shortener) Shorten(ctx context.Context, originalURL string) (model.URLMapping, error) {
	if originalURL == "" {
		return model.URLMapping{}, fmt.Errorf("%w: originalUrl is required", ErrValidation)
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		shortURL, err := s.generate()
		if err != nil {
			return model.URLMapping{}, fmt.Errorf("error generating short url: %w", err)
		}

		mapping := model.URLMapping{
			OriginalURL: originalURL,
			ShortURL:    shortURL,
			Clicks:      0,
		}

		err = s.store.Create(ctx, mapping)
		if err == nil {
			return mapping, nil
		}

		if !errors.Is(err, storage.ErrShortURLExists) {
			return model.URLMapping{}, fmt.Errorf("%w: %w", ErrStorage, err)
		}

		log.Warn().
			Str("shortUrl", shortURL).
			Int("attempt", attempt).
			Msg("Short url collision, retrying")
	}

	return model.URLMapping{}, fmt.Errorf("%w: no free short url after %d attempts", ErrStorage, s.maxAttempts)
}
