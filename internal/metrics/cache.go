package metrics

import "github.com/naturespot/naturespot/backend/internal/models"

// UpdateCacheMetrics publishes the row counts from a stats snapshot.
// Call this after a sweep or whenever stats are computed.
func UpdateCacheMetrics(stats *models.CacheStats) {
	if stats == nil {
		return
	}
	CacheEntries.WithLabelValues("active").Set(float64(stats.ActiveTranslations))
	CacheEntries.WithLabelValues("expired").Set(float64(stats.ExpiredTranslations))
}
