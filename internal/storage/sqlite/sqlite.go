package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/storage"
	"github.com/MikhailRaia/shortlink/internal/storage/migrations"
	"github.com/rs/zerolog/log"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	insertQuery    = `INSERT INTO url_mappings (short_url, original_url, clicks) VALUES (?, ?, ?)`
	selectQuery    = `SELECT original_url, clicks FROM url_mappings WHERE short_url = ?`
	incrementQuery = `UPDATE url_mappings SET clicks = clicks + 1 WHERE short_url = ? RETURNING original_url, clicks`
)

// Storage implements MappingStore on an embedded SQLite database.
type Storage struct {
	db *sql.DB
}

// NewStorage opens (creating if needed) the SQLite database at path and
// applies the schema migrations.
func NewStorage(path string) (*Storage, error) {
	if path == "" {
		return nil, errors.New("sqlite database path is empty")
	}

	if !strings.HasPrefix(path, ":memory:") && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %w", err)
	}

	// SQLite serialises writers; one connection avoids SQLITE_BUSY and keeps
	// in-memory databases alive for the lifetime of the pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging sqlite database: %w", err)
	}

	if err := migrations.Up(db, migrations.SQLite); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug().Str("path", path).Msg("SQLite storage opened")

	return &Storage{db: db}, nil
}

// Create inserts a new mapping. A duplicate short URL is reported as
// storage.ErrShortURLExists.
func (s *Storage) Create(ctx context.Context, mapping model.URLMapping) error {
	_, err := s.db.ExecContext(ctx, insertQuery, mapping.ShortURL, mapping.OriginalURL, mapping.Clicks)
	if err != nil {
		if isConstraintViolation(err) {
			return storage.ErrShortURLExists
		}
		return fmt.Errorf("error inserting URL into database: %w", err)
	}

	return nil
}

// Get retrieves the mapping for a given short URL.
func (s *Storage) Get(ctx context.Context, shortURL string) (model.URLMapping, error) {
	mapping := model.URLMapping{ShortURL: shortURL}

	err := s.db.QueryRowContext(ctx, selectQuery, shortURL).Scan(&mapping.OriginalURL, &mapping.Clicks)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.URLMapping{}, storage.ErrNotFound
		}
		return model.URLMapping{}, fmt.Errorf("error querying database: %w", err)
	}

	return mapping, nil
}

// IncrementClicks bumps the counter with UPDATE ... RETURNING.
func (s *Storage) IncrementClicks(ctx context.Context, shortURL string) (model.URLMapping, error) {
	mapping := model.URLMapping{ShortURL: shortURL}

	err := s.db.QueryRowContext(ctx, incrementQuery, shortURL).Scan(&mapping.OriginalURL, &mapping.Clicks)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.URLMapping{}, storage.ErrNotFound
		}
		return model.URLMapping{}, fmt.Errorf("error updating clicks: %w", err)
	}

	return mapping, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func isConstraintViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT:
		return true
	}
	return false
}
