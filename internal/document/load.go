package document

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/davidbz/tarifa/internal/domain"
	"github.com/davidbz/tarifa/internal/observability"
)

// Fetch retrieves every known document from src concurrently. A missing
// optional document is left out of the result.
func Fetch(ctx context.Context, src domain.ConfigSource) (map[string][]byte, error) {
	var (
		mu  sync.Mutex
		raw = make(map[string][]byte, len(Names()))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range Names() {
		g.Go(func() error {
			docCtx := observability.WithDocument(gctx, name)
			logger := observability.FromContext(docCtx)

			data, err := src.Fetch(docCtx, name)
			if err != nil {
				if !Required(name) && errors.Is(err, domain.ErrDocumentNotFound) {
					logger.Debug("optional document not found")
					return nil
				}
				return &domain.ConfigurationError{Field: name, Reason: "unable to fetch document", Cause: err}
			}

			logger.Debug("document fetched", observability.Int("bytes", len(data)))

			mu.Lock()
			raw[name] = data
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return raw, nil
}

// Load fetches and decodes the pricing documents. Any failure surfaces as a
// ConfigurationError so callers can show a single "pricing unavailable" state.
func Load(ctx context.Context, src domain.ConfigSource) (*Bundle, error) {
	raw, err := Fetch(ctx, src)
	if err != nil {
		return nil, err
	}

	bundle, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	// Build a throwaway engine so semantic errors surface at load time.
	if _, err := bundle.NewEngine(domain.WithLogger(zap.NewNop())); err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	observability.FromContext(ctx).Info("pricing documents loaded",
		observability.Int("modules", len(bundle.Modules)),
		observability.Int("tiers", len(bundle.TierPrices)),
		observability.Bool("categories", bundle.Categories != nil))

	return bundle, nil
}
