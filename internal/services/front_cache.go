package services

import (
	"context"
	"sync"
	"time"
)

// DefaultMemoryTTL bounds how long the front cache serves an entry
const DefaultMemoryTTL = 24 * time.Hour

// CachedTranslation is a front cache value. ExpiresAt mirrors the persistent
// row so the front layer never outlives the store.
type CachedTranslation struct {
	TranslatedText string    `json:"translatedText"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// FrontCache is the short-lived layer in front of the persistent cache.
// Implementations are safe for concurrent use. A failing backend behaves as a miss.
type FrontCache interface {
	Get(ctx context.Context, key string) (CachedTranslation, bool)
	Set(ctx context.Context, key string, value CachedTranslation)
	// Purge drops expired entries and returns how many were removed.
	Purge(ctx context.Context) int
}

// frontCacheKey is namespaced by language pair; the text goes in as its hash.
func frontCacheKey(sourceLanguage, targetLanguage, text string) string {
	return sourceLanguage + ":" + targetLanguage + ":" + hashText(text)
}

type memoryEntry struct {
	value     CachedTranslation
	expiresAt time.Time
}

// MemoryCache is a process-local FrontCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates a MemoryCache; ttl <= 0 uses DefaultMemoryTTL
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultMemoryTTL
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (CachedTranslation, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || !m.now().Before(entry.expiresAt) {
		return CachedTranslation{}, false
	}
	return entry.value, true
}

func (m *MemoryCache) Set(_ context.Context, key string, value CachedTranslation) {
	expiresAt := m.now().Add(m.ttl)
	if !value.ExpiresAt.IsZero() && value.ExpiresAt.Before(expiresAt) {
		expiresAt = value.ExpiresAt
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: expiresAt}
	m.mu.Unlock()
}

func (m *MemoryCache) Purge(_ context.Context) int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, expired ones included
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
