package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/tarifa/internal/config"
	"github.com/davidbz/tarifa/internal/document"
	"github.com/davidbz/tarifa/internal/domain"
	"github.com/davidbz/tarifa/internal/http"
	"github.com/davidbz/tarifa/internal/http/middleware"
	"github.com/davidbz/tarifa/internal/observability"
	"github.com/davidbz/tarifa/internal/source"
)

const shutdownTimeout = 10 * time.Second

func main() {
	container := buildContainer()

	// Documents must validate before the server accepts traffic.
	if err := container.Invoke(loadDocuments); err != nil {
		log.Fatalf("Failed to load pricing documents: %v", err)
	}

	err := container.Invoke(func(server *http.Server, reload *reloader) error {
		return run(server, reload)
	})
	if err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}
	if err := container.Provide(newRegistry, dig.As(new(prometheus.Registerer), new(prometheus.Gatherer))); err != nil {
		log.Fatalf("Failed to provide metrics registry: %v", err)
	}
	if err := container.Provide(func(cfg *config.MetricsConfig, reg prometheus.Registerer) (*middleware.HTTPMetrics, error) {
		return middleware.NewHTTPMetrics(cfg.Namespace, reg)
	}); err != nil {
		log.Fatalf("Failed to provide HTTP metrics: %v", err)
	}
	if err := container.Provide(func(cfg *config.MetricsConfig, reg prometheus.Registerer) (*http.DocumentMetrics, error) {
		return http.NewDocumentMetrics(cfg.Namespace, reg)
	}); err != nil {
		log.Fatalf("Failed to provide document metrics: %v", err)
	}

	// Document source and store
	if err := container.Provide(source.NewConfigSource); err != nil {
		log.Fatalf("Failed to provide config source: %v", err)
	}
	if err := container.Provide(http.NewDocumentStore); err != nil {
		log.Fatalf("Failed to provide document store: %v", err)
	}
	if err := container.Provide(newReloader); err != nil {
		log.Fatalf("Failed to provide reloader: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// reloader validates the documents from the source and publishes them to the store.
type reloader struct {
	src     domain.ConfigSource
	store   *http.DocumentStore
	metrics *http.DocumentMetrics
}

func newReloader(src domain.ConfigSource, store *http.DocumentStore, metrics *http.DocumentMetrics) *reloader {
	return &reloader{src: src, store: store, metrics: metrics}
}

func (r *reloader) Reload(ctx context.Context) error {
	bundle, err := document.Load(ctx, r.src)
	if err != nil {
		return err
	}
	if err := r.store.Replace(ctx, bundle.Raw); err != nil {
		return fmt.Errorf("failed to publish documents: %w", err)
	}
	r.metrics.Loaded.Set(float64(r.store.Len()))
	return nil
}

func loadDocuments(_ *zap.Logger, reload *reloader) error {
	return reload.Reload(context.Background())
}

// run serves until SIGINT or SIGTERM. SIGHUP reloads the documents; an invalid
// set is logged and the previous one keeps being served.
func run(server *http.Server, reload *reloader) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signals)

	for {
		select {
		case err := <-errCh:
			return err
		case sig := <-signals:
			ctx := context.Background()
			logger := observability.FromContext(ctx)

			if sig == syscall.SIGHUP {
				if err := reload.Reload(ctx); err != nil {
					logger.Error("document reload failed, keeping previous set", observability.Error(err))
				}
				continue
			}

			logger.Info("shutdown signal received", observability.Stringer("signal", sig))
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			err := server.Shutdown(shutdownCtx)
			cancel()
			if err != nil {
				return err
			}
			if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		}
	}
}
