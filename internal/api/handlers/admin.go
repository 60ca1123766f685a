package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/naturespot/naturespot/backend/internal/logger"
	"github.com/naturespot/naturespot/backend/internal/services"
)

type AdminHandler struct {
	store        *services.TranslationCacheService
	sweeper      *services.CacheSweeper
	translations *services.TranslationService
}

func NewAdminHandler(store *services.TranslationCacheService, sweeper *services.CacheSweeper, translations *services.TranslationService) *AdminHandler {
	return &AdminHandler{
		store:        store,
		sweeper:      sweeper,
		translations: translations,
	}
}

// GetTranslationStats returns cache totals and per-language counts
// GET /admin/translations/stats
func (h *AdminHandler) GetTranslationStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		logger.Log.Error("Translation stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load translation stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"languageStats":       stats.LanguageStats,
		"totalTranslations":   stats.TotalTranslations,
		"expiredTranslations": stats.ExpiredTranslations,
		"activeTranslations":  stats.ActiveTranslations,
		"cacheTtlHours":       h.store.TTL().Hours(),
		"sweeper":             h.sweeper.GetStatus(),
		"providers":           h.translations.ProviderNames(),
	})
}

// TriggerSweep runs both sweeps now and waits for them
// POST /admin/translations/sweep
func (h *AdminHandler) TriggerSweep(c *gin.Context) {
	start := time.Now()
	memoryRemoved := h.sweeper.SweepMemory(c.Request.Context())

	storeRemoved, err := h.sweeper.SweepStore(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Sweep completed",
		"memory_removed": memoryRemoved,
		"store_removed":  storeRemoved,
		"duration_ms":    time.Since(start).Milliseconds(),
	})
}

// GetSweeperStatus returns the background sweeper status
// GET /admin/translations/sweeper
func (h *AdminHandler) GetSweeperStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.sweeper.GetStatus())
}
