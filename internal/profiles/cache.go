package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultCacheTTL = 10 * time.Minute

// CachedSource keeps a JSON snapshot of another Source in redis.
// Redis failures never fail a load; the wrapped source is used instead.
type CachedSource struct {
	source Source
	client redis.Cmdable
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedSource(source Source, client redis.Cmdable, key string, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{
		source: source,
		client: client,
		key:    key,
		ttl:    ttl,
		logger: logger.With(zap.String("cache_key", key)),
	}
}

func (s *CachedSource) Load(ctx context.Context) (*Candidates, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	switch {
	case err == nil:
		var cached Candidates
		decodeErr := json.Unmarshal(raw, &cached)
		if decodeErr == nil {
			s.logger.Debug("candidate pool served from cache", zap.Int("count", cached.Len()))
			return &cached, nil
		}
		s.logger.Warn("dropping unreadable cached pool", zap.Error(decodeErr))
	case errors.Is(err, redis.Nil):
		s.logger.Debug("candidate pool cache miss")
	default:
		s.logger.Warn("reading cached pool failed", zap.Error(err))
	}

	candidates, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(candidates)
	if err != nil {
		return nil, fmt.Errorf("marshal pool for cache: %w", err)
	}
	if err := s.client.Set(ctx, s.key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("storing pool in cache failed", zap.Error(err))
	}

	return candidates, nil
}

// Invalidate drops the cached snapshot.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
