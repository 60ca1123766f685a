package database

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/naturespot/naturespot/backend/internal/logger"
)

// RunMigrations runs data fixes after schema changes.
// Safe to run repeatedly: each step only touches rows that still need it.
func RunMigrations(db *gorm.DB, cacheTTL time.Duration) error {
	if err := backfillExpiry(db, cacheTTL); err != nil {
		return err
	}
	return clampUsageCount(db)
}

// backfillExpiry gives rows imported without an expiry the standard TTL
// counted from their creation time.
func backfillExpiry(db *gorm.DB, cacheTTL time.Duration) error {
	var rows []struct {
		ID        uint
		CreatedAt time.Time
	}
	err := db.Table("translation_cache").
		Select("id, created_at").
		Where("expires_at IS NULL").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	for _, row := range rows {
		created := row.CreatedAt
		if created.IsZero() {
			created = time.Now().UTC()
		}
		if err := db.Table("translation_cache").
			Where("id = ?", row.ID).
			UpdateColumn("expires_at", created.UTC().Add(cacheTTL)).Error; err != nil {
			return err
		}
	}
	if len(rows) > 0 {
		logger.Log.Info("Backfilled translation cache expiry", zap.Int("rows", len(rows)))
	}
	return nil
}

func clampUsageCount(db *gorm.DB) error {
	result := db.Exec(`UPDATE translation_cache SET usage_count = 1 WHERE usage_count IS NULL OR usage_count < 1`)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		logger.Log.Info("Clamped translation cache usage counts", zap.Int64("rows", result.RowsAffected))
	}
	return nil
}
