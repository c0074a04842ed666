// Package remote fetches pricing documents over HTTP, retrying transient failures.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/davidbz/tarifa/internal/domain"
	"github.com/davidbz/tarifa/internal/observability"
)

// MaxDocumentBytes is the largest document the source accepts.
const MaxDocumentBytes = 4 << 20

// ErrDocumentTooLarge is returned for documents over MaxDocumentBytes.
var ErrDocumentTooLarge = errors.New("document too large")

// Config holds the remote document source settings.
type Config struct {
	URL            string        `env:"SOURCE_URL"`
	Timeout        time.Duration `env:"SOURCE_TIMEOUT"         envDefault:"5s"`
	MaxRetries     uint          `env:"SOURCE_MAX_RETRIES"     envDefault:"3"`
	InitialBackoff time.Duration `env:"SOURCE_INITIAL_BACKOFF" envDefault:"200ms"`
	MaxBackoff     time.Duration `env:"SOURCE_MAX_BACKOFF"     envDefault:"2s"`
}

// Enabled reports whether a base URL is configured.
func (c *Config) Enabled() bool {
	return c != nil && c.URL != ""
}

// StatusError is returned for unexpected HTTP responses.
type StatusError struct {
	Document string
	Status   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.Document, e.Status)
}

// Source fetches documents relative to a base URL.
type Source struct {
	base   *url.URL
	client *http.Client
	cfg    Config
}

// NewSource creates a remote source. client may be nil.
func NewSource(cfg *Config, client *http.Client) (*Source, error) {
	if !cfg.Enabled() {
		return nil, errors.New("remote source URL is required")
	}

	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported source URL scheme %q", base.Scheme)
	}

	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Source{base: base, client: client, cfg: *cfg}, nil
}

// Fetch downloads the named document, retrying 429, 5xx and transport errors
// with exponential backoff. A 404 maps to domain.ErrDocumentNotFound.
func (s *Source) Fetch(ctx context.Context, name string) ([]byte, error) {
	target := s.base.JoinPath(name).String()
	logger := observability.FromContext(ctx)

	policy := backoff.NewExponentialBackOff()
	if s.cfg.InitialBackoff > 0 {
		policy.InitialInterval = s.cfg.InitialBackoff
	}
	if s.cfg.MaxBackoff > 0 {
		policy.MaxInterval = s.cfg.MaxBackoff
	}

	operation := func() ([]byte, error) {
		return s.fetchOnce(ctx, target, name)
	}

	data, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(s.cfg.MaxRetries+1),
		backoff.WithNotify(func(err error, wait time.Duration) {
			logger.Warn("document fetch failed, retrying",
				observability.String("url", target),
				observability.Duration("wait", wait),
				observability.Error(err))
		}),
	)
	if err != nil {
		return nil, err
	}

	logger.Debug("document fetched from remote",
		observability.String("url", target),
		observability.Int("bytes", len(data)))

	return data, nil
}

func (s *Source) fetchOnce(ctx context.Context, target, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if requestID := observability.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if len(data) > MaxDocumentBytes {
			return nil, backoff.Permanent(fmt.Errorf("%s: %w", name, ErrDocumentTooLarge))
		}
		return data, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(fmt.Errorf("%s: %w", name, domain.ErrDocumentNotFound))
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return nil, &StatusError{Document: name, Status: resp.StatusCode}
	default:
		return nil, backoff.Permanent(&StatusError{Document: name, Status: resp.StatusCode})
	}
}
