package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/storage"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "shortlink:url:"

const (
	fieldOriginalURL = "originalUrl"
	fieldShortURL    = "shortUrl"
	fieldClicks      = "clicks"
)

// createScript writes the whole hash only when the key is absent.
var createScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], 'originalUrl', ARGV[1], 'shortUrl', ARGV[2], 'clicks', ARGV[3])
return 1
`)

// incrementScript bumps the counter of an existing hash and never creates one.
var incrementScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
local clicks = redis.call('HINCRBY', KEYS[1], 'clicks', 1)
local url = redis.call('HGET', KEYS[1], 'originalUrl')
return {url, clicks}
`)

// Storage implements MappingStore with one Redis hash per short URL.
type Storage struct {
	client *goredis.Client
}

// NewStorage connects to the Redis server described by a redis:// URL.
func NewStorage(ctx context.Context, url string) (*Storage, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis url: %w", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("error pinging redis: %w", err)
	}

	log.Debug().Str("addr", opts.Addr).Int("db", opts.DB).Msg("Redis storage connected")

	return NewStorageWithClient(client), nil
}

// NewStorageWithClient wraps an already configured client.
func NewStorageWithClient(client *goredis.Client) *Storage {
	return &Storage{client: client}
}

func key(shortURL string) string {
	return keyPrefix + shortURL
}

// Create stores the mapping hash unless the short URL is already taken.
func (s *Storage) Create(ctx context.Context, mapping model.URLMapping) error {
	created, err := createScript.Run(ctx, s.client,
		[]string{key(mapping.ShortURL)},
		mapping.OriginalURL, mapping.ShortURL, mapping.Clicks,
	).Int()
	if err != nil {
		return fmt.Errorf("error writing mapping to redis: %w", err)
	}

	if created == 0 {
		return storage.ErrShortURLExists
	}

	return nil
}

// Get retrieves the mapping for a given short URL.
func (s *Storage) Get(ctx context.Context, shortURL string) (model.URLMapping, error) {
	fields, err := s.client.HGetAll(ctx, key(shortURL)).Result()
	if err != nil {
		return model.URLMapping{}, fmt.Errorf("error reading mapping from redis: %w", err)
	}

	if len(fields) == 0 {
		return model.URLMapping{}, storage.ErrNotFound
	}

	return parseMapping(shortURL, fields)
}

// IncrementClicks atomically bumps the counter on the server.
func (s *Storage) IncrementClicks(ctx context.Context, shortURL string) (model.URLMapping, error) {
	res, err := incrementScript.Run(ctx, s.client, []string{key(shortURL)}).Slice()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return model.URLMapping{}, storage.ErrNotFound
		}
		return model.URLMapping{}, fmt.Errorf("error incrementing clicks in redis: %w", err)
	}

	if len(res) != 2 {
		return model.URLMapping{}, fmt.Errorf("unexpected increment reply of %d elements", len(res))
	}

	originalURL, ok := res[0].(string)
	if !ok {
		return model.URLMapping{}, fmt.Errorf("unexpected original url type %T", res[0])
	}

	clicks, ok := res[1].(int64)
	if !ok {
		return model.URLMapping{}, fmt.Errorf("unexpected clicks type %T", res[1])
	}

	return model.URLMapping{
		OriginalURL: originalURL,
		ShortURL:    shortURL,
		Clicks:      clicks,
	}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func parseMapping(shortURL string, fields map[string]string) (model.URLMapping, error) {
	mapping := model.URLMapping{
		OriginalURL: fields[fieldOriginalURL],
		ShortURL:    shortURL,
	}

	if stored := fields[fieldShortURL]; stored != "" && stored != shortURL {
		return model.URLMapping{}, fmt.Errorf("hash for %s holds short url %s", shortURL, stored)
	}

	if raw, ok := fields[fieldClicks]; ok {
		clicks, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return model.URLMapping{}, fmt.Errorf("invalid clicks value %q: %w", raw, err)
		}
		mapping.Clicks = clicks
	}

	return mapping, nil
}
