package source_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	cache "github.com/davidbz/tarifa/internal/cache/redis"
	"github.com/davidbz/tarifa/internal/source"
	"github.com/davidbz/tarifa/internal/source/file"
	"github.com/davidbz/tarifa/internal/source/remote"
)

func TestNewConfigSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "module-pricing.json"), []byte(`{"basic":50}`), 0o600))

	t.Run("file source by default", func(t *testing.T) {
		src, err := source.NewConfigSource(&file.DataConfig{Dir: dir}, &remote.Config{}, &cache.Config{})
		require.NoError(t, err)
		require.IsType(t, &file.Source{}, src)

		data, err := src.Fetch(context.Background(), "module-pricing.json")
		require.NoError(t, err)
		require.JSONEq(t, `{"basic":50}`, string(data))
	})

	t.Run("remote source when a url is set", func(t *testing.T) {
		src, err := source.NewConfigSource(&file.DataConfig{Dir: dir}, &remote.Config{URL: "https://cdn.example.com/data/"}, &cache.Config{})
		require.NoError(t, err)
		require.IsType(t, &remote.Source{}, src)
	})

	t.Run("cached when redis is configured", func(t *testing.T) {
		mr := miniredis.RunT(t)

		src, err := source.NewConfigSource(&file.DataConfig{Dir: dir}, &remote.Config{}, &cache.Config{Addr: mr.Addr(), TTL: time.Minute})
		require.NoError(t, err)
		require.IsType(t, &cache.Source{}, src)

		_, err = src.Fetch(context.Background(), "module-pricing.json")
		require.NoError(t, err)
		require.True(t, mr.Exists("tarifa:document:module-pricing.json"))
	})

	t.Run("invalid data directory", func(t *testing.T) {
		_, err := source.NewConfigSource(&file.DataConfig{Dir: filepath.Join(dir, "missing")}, &remote.Config{}, &cache.Config{})
		require.Error(t, err)
	})
}
