package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spigell/mentor-matcher/internal/directory"
	"github.com/spigell/mentor-matcher/internal/filtering"
	"github.com/spigell/mentor-matcher/internal/matching"
	"github.com/spigell/mentor-matcher/internal/profiles"
	"github.com/spigell/mentor-matcher/internal/secrets"
)

const defaultCacheKey = app + ":pool"

// buildSource picks the configured pool source, optionally wrapped in the
// redis cache. The returned closer releases the redis client.
func buildSource(config *Config, logger *zap.Logger) (profiles.Source, func(), error) {
	noop := func() {}

	var source profiles.Source
	switch {
	case config.Pool.Directory != nil && strings.TrimSpace(config.Pool.Directory.URL) != "":
		dir := config.Pool.Directory
		token, err := secrets.Load(secrets.Source{
			Name:     "directory token",
			File:     dir.TokenFile,
			Env:      envPrefix + "_DIRECTORY_TOKEN",
			Optional: true,
		})
		if err != nil {
			return nil, noop, err
		}

		client := directory.New(dir.URL, token, logger.Named("directory"))
		if dir.UserAgent != "" {
			client.UserAgent = dir.UserAgent
		}
		if dir.PerPage > 0 {
			client.PerPage = dir.PerPage
		}
		source = client
	case strings.TrimSpace(config.Pool.File) != "":
		source = profiles.NewFileSource(config.Pool.File)
	default:
		return nil, noop, errors.New("no candidate pool configured: set pool.file or pool.directory.url")
	}

	cache := config.Pool.Cache
	if cache == nil || strings.TrimSpace(cache.Addr) == "" {
		return source, noop, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cache.Addr,
		Password: cache.Password,
		DB:       cache.DB,
	})
	key := cache.Key
	if key == "" {
		key = defaultCacheKey
	}

	closer := func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("closing redis client", zap.Error(err))
		}
	}
	return profiles.NewCachedSource(source, rdb, key, cache.TTL, logger.Named("cache")), closer, nil
}

func filterConfig(config *Config) *filtering.Config {
	return &filtering.Config{
		ExcludeIDs:       config.Exclude.IDs,
		ExcludeCompanies: config.Exclude.Companies,
		ExcludeFile:      config.ExcludeFile,
	}
}

// loadPool loads a snapshot from source and runs it through the filters.
func loadPool(ctx context.Context, source profiles.Source, config *Config, logger *zap.Logger) (*profiles.Candidates, error) {
	candidates, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading candidate pool: %w", err)
	}
	logger.Info("getting candidates", zap.Int("count", candidates.Len()))

	steps := filtering.Default()
	filtered, err := filtering.Run(ctx, filterConfig(config), filtering.Deps{Logger: logger}, steps, candidates)
	if err != nil {
		return nil, fmt.Errorf("filtering failed: %w", err)
	}

	for _, status := range filtering.Describe(steps) {
		logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.Any("details", status.Details),
		)
	}
	return filtered, nil
}

// refreshPool drops a cached snapshot, if the source has one, and loads the
// pool again.
func refreshPool(ctx context.Context, source profiles.Source, config *Config, logger *zap.Logger) (*profiles.Candidates, error) {
	if cached, ok := source.(*profiles.CachedSource); ok {
		if err := cached.Invalidate(ctx); err != nil {
			logger.Warn("invalidating pool cache", zap.Error(err))
		}
	}
	return loadPool(ctx, source, config, logger)
}

func buildEngine(config *Config, logger *zap.Logger) (*matching.Engine, error) {
	policy := matching.DefaultPolicy()
	if config.Matching.MinScore != nil {
		policy.MinScore = *config.Matching.MinScore
	}
	if config.Matching.Limit > 0 {
		policy.Limit = config.Matching.Limit
	}
	if config.Matching.Workers > 0 {
		policy.Workers = config.Matching.Workers
	}

	return matching.NewEngine(policy, logger.Named("engine"))
}
