// Package source picks the ConfigSource for the process: a data directory or
// a remote base URL, optionally cached in Redis.
package source

import (
	"context"
	"fmt"

	cache "github.com/davidbz/tarifa/internal/cache/redis"
	"github.com/davidbz/tarifa/internal/domain"
	"github.com/davidbz/tarifa/internal/observability"
	"github.com/davidbz/tarifa/internal/source/file"
	"github.com/davidbz/tarifa/internal/source/remote"
)

// NewConfigSource prefers the remote source when a URL is configured and
// falls back to the data directory. A configured Redis address adds the cache.
func NewConfigSource(data *file.DataConfig, remoteCfg *remote.Config, redisCfg *cache.Config) (domain.ConfigSource, error) {
	logger := observability.FromContext(context.Background())

	var src domain.ConfigSource
	if remoteCfg.Enabled() {
		remoteSrc, err := remote.NewSource(remoteCfg, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create remote source: %w", err)
		}
		logger.Info("using remote document source", observability.String("url", remoteCfg.URL))
		src = remoteSrc
	} else {
		fileSrc, err := file.NewSource(data)
		if err != nil {
			return nil, fmt.Errorf("failed to create file source: %w", err)
		}
		logger.Info("using file document source", observability.String("dir", data.Dir))
		src = fileSrc
	}

	if !redisCfg.Enabled() {
		return src, nil
	}

	cached, err := cache.NewSource(cache.NewClient(redisCfg), src, redisCfg.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create document cache: %w", err)
	}
	logger.Info("document cache enabled",
		observability.String("addr", redisCfg.Addr),
		observability.Duration("ttl", redisCfg.TTL))

	return cached, nil
}
