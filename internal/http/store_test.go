package http_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/tarifa/internal/domain"
	tarifahttp "github.com/davidbz/tarifa/internal/http"
)

func TestDocumentStore(t *testing.T) {
	ctx := context.Background()
	store := tarifahttp.NewDocumentStore()

	t.Run("empty store has nothing", func(t *testing.T) {
		require.Equal(t, 0, store.Len())
		_, err := store.Get(ctx, "pricing-config.json")
		require.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("rejects empty sets", func(t *testing.T) {
		require.Error(t, store.Replace(ctx, nil))
		require.Error(t, store.Replace(ctx, map[string][]byte{"": []byte(`{}`)}))
	})

	t.Run("replace and fetch", func(t *testing.T) {
		require.NoError(t, store.Replace(ctx, map[string][]byte{
			"pricing-config.json": []byte(`{"exchangeRate":4000}`),
			"modules-data.json":   []byte(`[]`),
		}))

		data, err := store.Fetch(ctx, "pricing-config.json")
		require.NoError(t, err)
		require.Equal(t, `{"exchangeRate":4000}`, string(data))

		infos := store.List(ctx)
		require.Len(t, infos, 2)
		require.Equal(t, "modules-data.json", infos[0].Name)
		require.Equal(t, "pricing-config.json", infos[1].Name)
		require.Equal(t, 2, infos[0].Size)
	})

	t.Run("etag follows content", func(t *testing.T) {
		first, err := store.Get(ctx, "pricing-config.json")
		require.NoError(t, err)

		require.NoError(t, store.Replace(ctx, map[string][]byte{
			"pricing-config.json": []byte(`{"exchangeRate":4100}`),
		}))
		second, err := store.Get(ctx, "pricing-config.json")
		require.NoError(t, err)
		require.NotEqual(t, first.ETag, second.ETag)

		_, err = store.Get(ctx, "modules-data.json")
		require.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})
}
