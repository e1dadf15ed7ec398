package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/storage"
	"github.com/MikhailRaia/shortlink/internal/storage/migrations"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/rs/zerolog/log"
)

const (
	insertQuery    = `INSERT INTO url_mappings (short_url, original_url, clicks) VALUES ($1, $2, $3)`
	selectQuery    = `SELECT original_url, clicks FROM url_mappings WHERE short_url = $1`
	incrementQuery = `UPDATE url_mappings SET clicks = clicks + 1 WHERE short_url = $1 RETURNING original_url, clicks`
)

// Storage implements MappingStore on top of a PostgreSQL connection pool.
type Storage struct {
	pool *pgxpool.Pool
}

// NewStorage connects to PostgreSQL, verifies the connection and applies
// the schema migrations.
func NewStorage(ctx context.Context, dsn string) (*Storage, error) {
	if dsn == "" {
		return nil, errors.New("database connection string is empty")
	}

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	s := &Storage{pool: pool}

	if err := s.migrate(); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Storage) migrate() error {
	db := stdlib.OpenDB(*s.pool.Config().ConnConfig)
	defer db.Close()

	return migrations.Up(db, migrations.Postgres)
}

// Create inserts a new mapping. A duplicate short URL is reported as
// storage.ErrShortURLExists.
func (s *Storage) Create(ctx context.Context, mapping model.URLMapping) error {
	_, err := s.pool.Exec(ctx, insertQuery, mapping.ShortURL, mapping.OriginalURL, mapping.Clicks)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrShortURLExists
		}
		return fmt.Errorf("error inserting URL into database: %w", err)
	}

	log.Debug().Str("shortUrl", mapping.ShortURL).Msg("Mapping inserted")
	return nil
}

// Get retrieves the mapping for a given short URL.
func (s *Storage) Get(ctx context.Context, shortURL string) (model.URLMapping, error) {
	mapping := model.URLMapping{ShortURL: shortURL}

	err := s.pool.QueryRow(ctx, selectQuery, shortURL).Scan(&mapping.OriginalURL, &mapping.Clicks)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.URLMapping{}, storage.ErrNotFound
		}
		return model.URLMapping{}, fmt.Errorf("error querying database: %w", err)
	}

	return mapping, nil
}

// IncrementClicks bumps the counter in a single UPDATE ... RETURNING
// statement, so concurrent visits are never lost.
func (s *Storage) IncrementClicks(ctx context.Context, shortURL string) (model.URLMapping, error) {
	mapping := model.URLMapping{ShortURL: shortURL}

	err := s.pool.QueryRow(ctx, incrementQuery, shortURL).Scan(&mapping.OriginalURL, &mapping.Clicks)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.URLMapping{}, storage.ErrNotFound
		}
		return model.URLMapping{}, fmt.Errorf("error updating clicks: %w", err)
	}

	return mapping, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Storage) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
