package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/davidbz/tarifa/internal/observability"
)

func TestContextIdentifiers(t *testing.T) {
	ctx := context.Background()
	ctx = observability.WithTraceID(ctx, "trace")
	ctx = observability.WithSpanID(ctx, "span")
	ctx = observability.WithRequestID(ctx, "request")
	ctx = observability.WithSessionID(ctx, "session")
	ctx = observability.WithDocument(ctx, "pricing-config.json")

	require.Equal(t, "trace", observability.GetTraceID(ctx))
	require.Equal(t, "span", observability.GetSpanID(ctx))
	require.Equal(t, "request", observability.GetRequestID(ctx))
	require.Equal(t, "session", observability.GetSessionID(ctx))
	require.Equal(t, "pricing-config.json", observability.GetDocument(ctx))

	require.Empty(t, observability.GetRequestID(context.Background()))
}

func TestGenerateIDs(t *testing.T) {
	require.Len(t, observability.GenerateTraceID(), 32)
	require.Len(t, observability.GenerateSpanID(), 16)
	require.NotEqual(t, observability.GenerateRequestID(), observability.GenerateRequestID())
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	observability.SetLogger(zap.New(core))
	t.Cleanup(func() { observability.SetLogger(nil) })

	ctx := observability.WithRequestID(context.Background(), "req-1")
	ctx = observability.WithDocument(ctx, "modules-data.json")
	observability.FromContext(ctx).Info("loaded")

	//nolint:staticcheck // a nil context must not panic
	observability.FromContext(nil).Info("bare")

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, map[string]interface{}{
		"request_id": "req-1",
		"document":   "modules-data.json",
	}, entries[0].ContextMap())
	require.Empty(t, entries[1].Context)
}

func TestEventBus_Publish(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	bus := observability.NewEventBus(zap.New(core))

	bus.Publish("pricing.item_toggled", map[string]interface{}{
		"item_id":  "correspondencia",
		"selected": true,
	})

	entries := logs.FilterMessage("pricing.item_toggled").All()
	require.Len(t, entries, 1)
	require.Equal(t, map[string]interface{}{
		"event":    "pricing.item_toggled",
		"item_id":  "correspondencia",
		"selected": true,
	}, entries[0].ContextMap())

	var nilBus *observability.EventBus
	require.NotPanics(t, func() { nilBus.Publish("ignored", nil) })
}

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { observability.SetLogger(nil) })

	tests := []struct {
		name      string
		cfg       *observability.LogConfig
		expectErr bool
	}{
		{name: "nil config", cfg: nil},
		{name: "production", cfg: &observability.LogConfig{Level: "warn"}},
		{name: "development", cfg: &observability.LogConfig{Level: "debug", Development: true}},
		{name: "invalid level", cfg: &observability.LogConfig{Level: "loud"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := observability.InitLogger(tt.cfg)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
		})
	}
}
