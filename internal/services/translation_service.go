package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/naturespot/naturespot/backend/internal/metrics"
	"github.com/naturespot/naturespot/backend/internal/models"
)

const (
	// MinTranslatableLength is the rune count below which text is returned as is
	MinTranslatableLength = 3

	DefaultSourceLanguage = "en"
	DefaultChunkDelay     = 100 * time.Millisecond
)

// TranslationServiceOptions tunes a TranslationService. Zero values take
// defaults; a negative ChunkDelay disables the pause between chunks.
type TranslationServiceOptions struct {
	SourceLanguage string
	ChunkDelay     time.Duration
}

// TranslationService runs the translation pipeline: front cache, persistent
// cache, the ordered provider chain, then the mock fallback.
type TranslationService struct {
	providers      []Provider
	store          *TranslationCacheService
	front          FrontCache
	sourceLanguage string
	chunkDelay     time.Duration
}

// NewTranslationService wires the pipeline. store and front may be nil.
func NewTranslationService(providers []Provider, store *TranslationCacheService, front FrontCache, opts TranslationServiceOptions) *TranslationService {
	if store == nil {
		store = NewTranslationCacheService(nil, 0)
	}
	if opts.SourceLanguage == "" {
		opts.SourceLanguage = DefaultSourceLanguage
	}
	switch {
	case opts.ChunkDelay == 0:
		opts.ChunkDelay = DefaultChunkDelay
	case opts.ChunkDelay < 0:
		opts.ChunkDelay = 0
	}

	return &TranslationService{
		providers:      providers,
		store:          store,
		front:          front,
		sourceLanguage: NormalizeLanguage(opts.SourceLanguage),
		chunkDelay:     opts.ChunkDelay,
	}
}

// SourceLanguage returns the fixed language all content is assumed to be written in
func (s *TranslationService) SourceLanguage() string {
	return s.sourceLanguage
}

// ProviderNames lists the configured providers in fallback order
func (s *TranslationService) ProviderNames() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// Translate resolves one request. It only fails on invalid input or when ctx
// is cancelled; provider and cache failures degrade to the next step and
// ultimately to a mock result.
//
// Order:
// 1. Text shorter than MinTranslatableLength comes back unchanged
// 2. Target equal to the source language comes back unchanged
// 3. Front cache, then persistent cache (a hit bumps usage_count)
// 4. Providers in order, the first non-empty result wins
// 5. Mock placeholder when every provider failed (never cached)
// 6. Provider results are written to both cache layers
func (s *TranslationService) Translate(ctx context.Context, req models.TranslationRequest) (*models.TranslationResult, error) {
	if req.Text == "" {
		return nil, &ValidationError{Field: "text", Message: "is required"}
	}
	target := NormalizeLanguage(req.TargetLanguage)
	if target == "" {
		return nil, &ValidationError{Field: "targetLanguage", Message: "is required"}
	}
	source := s.sourceLanguage

	result := &models.TranslationResult{
		TranslatedText: req.Text,
		SourceLanguage: source,
		TargetLanguage: target,
		OriginalText:   req.Text,
		Service:        models.ServiceNone,
	}

	if utf8.RuneCountInString(req.Text) < MinTranslatableLength {
		metrics.TranslationDecisions.WithLabelValues("none").Inc()
		return result, nil
	}
	if target == source {
		debugLog("Same-language request, skipping", zap.String("target", target))
		metrics.TranslationDecisions.WithLabelValues("none").Inc()
		return result, nil
	}

	if translated, ok := s.lookupCached(ctx, req.Text, source, target); ok {
		result.TranslatedText = translated
		result.Cached = true
		result.Service = models.ServiceCache
		return result, nil
	}
	metrics.TranslationCacheMisses.Inc()

	translated, provider, err := s.translateWithProviders(ctx, req.Text, target, source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		infoLog("All providers failed, using mock translation",
			zap.String("target", target),
			zap.String("text", truncateText(req.Text, 50)),
			zap.Error(err))
		metrics.TranslationDecisions.WithLabelValues("mock").Inc()
		result.TranslatedText = MockTranslation(req.Text, target, source)
		result.Service = models.ServiceMock
		return result, nil
	}

	metrics.TranslationDecisions.WithLabelValues("provider").Inc()
	s.writeBack(ctx, req.Text, source, target, translated)

	result.TranslatedText = translated
	result.Service = provider
	return result, nil
}

// lookupCached probes the front cache and then the persistent cache.
// Store errors are logged and treated as a miss.
func (s *TranslationService) lookupCached(ctx context.Context, text, source, target string) (string, bool) {
	key := frontCacheKey(source, target, text)

	if s.front != nil {
		if cached, ok := s.front.Get(ctx, key); ok {
			if err := s.store.TouchKey(ctx, text, source, target); err != nil {
				warnLog("Usage count update failed", zap.Error(err))
			}
			metrics.TranslationCacheHits.WithLabelValues("memory").Inc()
			metrics.TranslationDecisions.WithLabelValues("memory").Inc()
			debugLog("Front cache hit", zap.String("key", key[:min(len(key), 24)]))
			return cached.TranslatedText, true
		}
	}

	entry, err := s.store.Lookup(ctx, text, source, target)
	if err != nil {
		warnLog("Cache lookup failed", zap.Error(err))
		return "", false
	}
	if entry == nil {
		return "", false
	}

	if err := s.store.Touch(ctx, entry); err != nil {
		warnLog("Usage count update failed", zap.Error(err))
	}
	if s.front != nil {
		s.front.Set(ctx, key, CachedTranslation{TranslatedText: entry.TranslatedText, ExpiresAt: entry.ExpiresAt})
	}

	metrics.TranslationCacheHits.WithLabelValues("store").Inc()
	metrics.TranslationDecisions.WithLabelValues("cache").Inc()
	debugLog("Store cache hit", zap.String("target", target), zap.Int("usage_count", entry.UsageCount))
	return entry.TranslatedText, true
}

// translateWithProviders walks the chain and returns the first success and
// the name of the provider that produced it.
func (s *TranslationService) translateWithProviders(ctx context.Context, text, target, source string) (string, string, error) {
	var errs []error
	for _, p := range s.providers {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}

		debugLog("Attempting provider", zap.String("provider", p.Name()), zap.String("target", target))
		translated, err := s.callProvider(ctx, p, text, target, source)
		if err == nil && strings.TrimSpace(translated) != "" {
			debugLog("Provider succeeded", zap.String("provider", p.Name()))
			return translated, p.Name(), nil
		}
		if err == nil {
			err = &ProviderError{Provider: p.Name(), Kind: ProviderErrEmpty, Err: errors.New("empty result")}
		}
		warnLog("Provider failed", zap.String("provider", p.Name()), zap.Error(err))
		errs = append(errs, err)
	}
	return "", "", errors.Join(append([]error{ErrAllProvidersFailed}, errs...)...)
}

// callProvider splits text for providers with a length limit and translates
// the chunks one at a time, pausing between them. A failed chunk fails the
// whole call; partial translations are never returned.
func (s *TranslationService) callProvider(ctx context.Context, p Provider, text, target, source string) (string, error) {
	cp, ok := p.(ChunkingProvider)
	if !ok || cp.MaxChunkLength() <= 0 {
		return p.Translate(ctx, text, target, source)
	}

	chunks := ChunkText(text, cp.MaxChunkLength())
	metrics.TranslationChunks.Observe(float64(len(chunks)))
	if len(chunks) == 1 {
		return p.Translate(ctx, chunks[0], target, source)
	}

	debugLog("Translating in chunks", zap.String("provider", p.Name()), zap.Int("chunks", len(chunks)))
	translated := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if i > 0 && s.chunkDelay > 0 {
			timer := time.NewTimer(s.chunkDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
			}
		}

		out, err := p.Translate(ctx, chunk, target, source)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(out) == "" {
			return "", &ProviderError{Provider: p.Name(), Kind: ProviderErrEmpty, Err: errors.New("empty chunk result")}
		}
		translated = append(translated, out)
	}
	return strings.Join(translated, " "), nil
}

// writeBack stores a provider result. Failures are logged and swallowed so a
// broken cache never fails a translation that already succeeded.
// Both writes run detached from the request so a client disconnect after the
// provider answered does not lose the result.
func (s *TranslationService) writeBack(ctx context.Context, text, source, target, translated string) {
	ctx = context.WithoutCancel(ctx)
	expiresAt := s.store.clock().Add(s.store.TTL())

	entry, err := s.store.Upsert(ctx, text, source, target, translated)
	if err != nil {
		warnLog("Cache write failed", zap.Error(err))
	} else if entry != nil {
		expiresAt = entry.ExpiresAt
	}

	if s.front != nil {
		s.front.Set(ctx, frontCacheKey(source, target, text), CachedTranslation{TranslatedText: translated, ExpiresAt: expiresAt})
	}
}

// LookupEntry returns the live persistent row for the key and records the hit.
// It backs the cache read endpoint, which reports the row itself rather than
// a TranslationResult.
func (s *TranslationService) LookupEntry(ctx context.Context, text, source, target string) (*models.TranslationCache, error) {
	entry, err := s.store.Lookup(ctx, text, source, target)
	if err != nil || entry == nil {
		return nil, err
	}
	if err := s.store.Touch(ctx, entry); err != nil {
		warnLog("Usage count update failed", zap.Error(err))
	}
	return entry, nil
}

// Remember upserts a translation supplied from outside the pipeline and
// refreshes the front cache so it cannot serve a stale text for the key.
func (s *TranslationService) Remember(ctx context.Context, text, source, target, translated string) (*models.TranslationCache, error) {
	entry, err := s.store.Upsert(ctx, text, source, target, translated)
	if err != nil {
		return nil, err
	}
	if s.front != nil && entry != nil {
		s.front.Set(ctx, frontCacheKey(source, target, text), CachedTranslation{TranslatedText: translated, ExpiresAt: entry.ExpiresAt})
	}
	return entry, nil
}
