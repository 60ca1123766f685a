package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/naturespot/naturespot/backend/internal/metrics"
)

// Provider is a remote machine-translation backend.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, targetLanguage, sourceLanguage string) (string, error)
}

// ChunkingProvider is a Provider with a per-request text length limit.
// The orchestrator splits longer text with ChunkText before calling it.
type ChunkingProvider interface {
	Provider
	MaxChunkLength() int
}

const maxProviderResponseBytes = 1 << 20

// httpBackend holds what every HTTP provider shares: a client with a hard
// timeout, a per-call deadline and an optional rate limiter.
type httpBackend struct {
	name    string
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
}

func newHTTPBackend(name string, timeout time.Duration, rps float64) httpBackend {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return httpBackend{
		name:    name,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// do runs one request and returns the body of a 2xx response.
// Every failure comes back as a *ProviderError.
func (b *httpBackend) do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, b.fail(ProviderErrRateLimit, 0, err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	req, err := build(ctx)
	if err != nil {
		return nil, b.fail(ProviderErrNetwork, 0, fmt.Errorf("build request: %w", err))
	}

	start := time.Now()
	resp, err := b.client.Do(req)
	metrics.ProviderLatency.WithLabelValues(b.name).Observe(time.Since(start).Seconds())
	if err != nil {
		if isTimeout(err) {
			return nil, b.fail(ProviderErrTimeout, 0, err)
		}
		return nil, b.fail(ProviderErrNetwork, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderResponseBytes))
	if err != nil {
		if isTimeout(err) {
			return nil, b.fail(ProviderErrTimeout, 0, err)
		}
		return nil, b.fail(ProviderErrNetwork, 0, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, b.fail(ProviderErrStatus, resp.StatusCode, errors.New(truncateText(strings.TrimSpace(string(body)), 200)))
	}

	metrics.ProviderRequestsTotal.WithLabelValues(b.name, "success").Inc()
	return body, nil
}

func (b *httpBackend) fail(kind ProviderErrorKind, status int, err error) *ProviderError {
	metrics.ProviderRequestsTotal.WithLabelValues(b.name, "error").Inc()
	metrics.ProviderErrorsTotal.WithLabelValues(b.name, string(kind)).Inc()
	return &ProviderError{Provider: b.name, Kind: kind, StatusCode: status, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// truncateText truncates text to maxLen runes, adding "..." if truncated.
func truncateText(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLen]) + "..."
}
