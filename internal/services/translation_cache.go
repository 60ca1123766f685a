package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/naturespot/naturespot/backend/internal/metrics"
	"github.com/naturespot/naturespot/backend/internal/models"
)

// DefaultCacheTTL is how long a provider translation stays valid
const DefaultCacheTTL = 30 * 24 * time.Hour

// TranslationCacheService is the persistent translation cache.
// A nil DB turns every operation into a no-op miss.
type TranslationCacheService struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewTranslationCacheService creates a cache service; ttl <= 0 uses DefaultCacheTTL
func NewTranslationCacheService(db *gorm.DB, ttl time.Duration) *TranslationCacheService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &TranslationCacheService{db: db, ttl: ttl, now: time.Now}
}

// TTL returns the expiry applied on upsert
func (s *TranslationCacheService) TTL() time.Duration {
	return s.ttl
}

func (s *TranslationCacheService) clock() time.Time {
	return s.now().UTC()
}

func (s *TranslationCacheService) keyQuery(ctx context.Context, text, sourceLanguage, targetLanguage string) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.TranslationCache{}).
		Where("source_hash = ? AND source_language = ? AND target_language = ?", hashText(text), sourceLanguage, targetLanguage)
}

// Lookup returns the live entry for the key, or nil on a miss.
// Expired rows are invisible even before the sweep removes them.
func (s *TranslationCacheService) Lookup(ctx context.Context, text, sourceLanguage, targetLanguage string) (*models.TranslationCache, error) {
	if s.db == nil {
		return nil, nil
	}

	var entry models.TranslationCache
	err := s.keyQuery(ctx, text, sourceLanguage, targetLanguage).
		Where("expires_at > ?", s.clock()).
		Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		metrics.TranslationCacheErrors.WithLabelValues("lookup").Inc()
		return nil, &CacheError{Op: "lookup", Err: err}
	}

	// Guard against a hash collision returning someone else's text
	if entry.SourceText != text {
		return nil, nil
	}
	return &entry, nil
}

// Touch records a hit on entry, bumping usage_count by one.
// entry is updated in place so callers can report the new count.
func (s *TranslationCacheService) Touch(ctx context.Context, entry *models.TranslationCache) error {
	if s.db == nil || entry == nil {
		return nil
	}

	now := s.clock()
	err := s.db.WithContext(ctx).Model(&models.TranslationCache{}).
		Where("id = ?", entry.ID).
		UpdateColumns(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"updated_at":  now,
		}).Error
	if err != nil {
		metrics.TranslationCacheErrors.WithLabelValues("touch").Inc()
		return &CacheError{Op: "touch", Err: err}
	}

	entry.UsageCount++
	entry.UpdatedAt = now
	return nil
}

// TouchKey bumps usage_count of the live row for the key without reading it.
// Used when the in-memory layer answered the request.
func (s *TranslationCacheService) TouchKey(ctx context.Context, text, sourceLanguage, targetLanguage string) error {
	if s.db == nil {
		return nil
	}

	now := s.clock()
	err := s.keyQuery(ctx, text, sourceLanguage, targetLanguage).
		Where("expires_at > ?", now).
		UpdateColumns(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"updated_at":  now,
		}).Error
	if err != nil {
		metrics.TranslationCacheErrors.WithLabelValues("touch").Inc()
		return &CacheError{Op: "touch", Err: err}
	}
	return nil
}

// Upsert writes the translation for the key and pushes expires_at to now+TTL.
//
// Overwriting a live row keeps its usage_count and created_at; overwriting an
// expired row starts it over as if freshly inserted.
func (s *TranslationCacheService) Upsert(ctx context.Context, text, sourceLanguage, targetLanguage, translatedText string) (*models.TranslationCache, error) {
	if s.db == nil {
		return nil, nil
	}

	now := s.clock()
	expiresAt := now.Add(s.ttl)

	row := models.TranslationCache{
		SourceHash:     hashText(text),
		SourceText:     text,
		SourceLanguage: sourceLanguage,
		TargetLanguage: targetLanguage,
		TranslatedText: translatedText,
		UsageCount:     1,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      expiresAt,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "source_hash"}, {Name: "source_language"}, {Name: "target_language"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"source_text":     text,
			"translated_text": translatedText,
			"updated_at":      now,
			"expires_at":      expiresAt,
			"usage_count":     gorm.Expr("CASE WHEN translation_cache.expires_at > ? THEN translation_cache.usage_count ELSE 1 END", now),
			"created_at":      gorm.Expr("CASE WHEN translation_cache.expires_at > ? THEN translation_cache.created_at ELSE ? END", now, now),
		}),
	}).Create(&row).Error
	if err != nil {
		metrics.TranslationCacheErrors.WithLabelValues("upsert").Inc()
		return nil, &CacheError{Op: "upsert", Err: err}
	}

	var stored models.TranslationCache
	if err := s.keyQuery(ctx, text, sourceLanguage, targetLanguage).Take(&stored).Error; err != nil {
		metrics.TranslationCacheErrors.WithLabelValues("upsert").Inc()
		return nil, &CacheError{Op: "upsert", Err: err}
	}

	debugLog("Cache upsert",
		zap.String("hash", stored.SourceHash[:16]),
		zap.String("target", targetLanguage),
		zap.Int("usage_count", stored.UsageCount))
	return &stored, nil
}

// Sweep deletes rows whose expires_at is in the past and returns how many went.
func (s *TranslationCacheService) Sweep(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, nil
	}

	result := s.db.WithContext(ctx).
		Where("expires_at < ?", s.clock()).
		Delete(&models.TranslationCache{})
	if result.Error != nil {
		metrics.TranslationCacheErrors.WithLabelValues("sweep").Inc()
		return 0, &CacheError{Op: "sweep", Err: result.Error}
	}
	return result.RowsAffected, nil
}

// Stats aggregates live rows per language pair plus overall totals.
func (s *TranslationCacheService) Stats(ctx context.Context) (*models.CacheStats, error) {
	stats := &models.CacheStats{LanguageStats: []models.LanguageStat{}}
	if s.db == nil {
		return stats, nil
	}

	now := s.clock()
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.TranslationCache{}).Count(&stats.TotalTranslations).Error; err != nil {
		return nil, &CacheError{Op: "stats", Err: err}
	}
	if err := db.Model(&models.TranslationCache{}).Where("expires_at <= ?", now).Count(&stats.ExpiredTranslations).Error; err != nil {
		return nil, &CacheError{Op: "stats", Err: err}
	}
	stats.ActiveTranslations = stats.TotalTranslations - stats.ExpiredTranslations

	err := db.Model(&models.TranslationCache{}).
		Select("source_language, target_language, COUNT(*) AS translation_count, COALESCE(SUM(usage_count), 0) AS total_usage").
		Where("expires_at > ?", now).
		Group("source_language, target_language").
		Order("translation_count DESC, target_language").
		Scan(&stats.LanguageStats).Error
	if err != nil {
		return nil, &CacheError{Op: "stats", Err: err}
	}

	metrics.UpdateCacheMetrics(stats)
	return stats, nil
}

// hashText creates a SHA256 hash of the text for efficient lookups
func hashText(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}
