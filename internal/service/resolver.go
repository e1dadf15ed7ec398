package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/storage"
)

// MappingResolver is the part of the store the Resolver reads and updates.
type MappingResolver interface {
	Get(ctx context.Context, shortURL string) (model.URLMapping, error)
	IncrementClicks(ctx context.Context, shortURL string) (model.URLMapping, error)
}

// Resolver turns short URLs back into their destinations.
type Resolver struct {
	store MappingResolver
}

// NewResolver constructs a Resolver over store.
func NewResolver(store MappingResolver) *Resolver {
	return &Resolver{store: store}
}

// Resolve counts a visit to shortURL and returns the URL to redirect to.
func (r *Resolver) Resolve(ctx context.Context, shortURL string) (string, error) {
	mapping, err := r.store.IncrementClicks(ctx, shortURL)
	if err != nil {
		return "", classify(err)
	}

	return mapping.OriginalURL, nil
}

// Lookup returns the stored mapping without counting a visit.
func (r *Resolver) Lookup(ctx context.Context, shortURL string) (model.URLMapping, error) {
	mapping, err := r.store.Get(ctx, shortURL)
	if err != nil {
		return model.URLMapping{}, classify(err)
	}

	return mapping, nil
}

func classify(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
