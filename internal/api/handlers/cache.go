package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/naturespot/naturespot/backend/internal/logger"
	"github.com/naturespot/naturespot/backend/internal/models"
	"github.com/naturespot/naturespot/backend/internal/services"
)

type CacheHandler struct {
	translations *services.TranslationService
	sweeper      *services.CacheSweeper
}

func NewCacheHandler(translations *services.TranslationService, sweeper *services.CacheSweeper) *CacheHandler {
	return &CacheHandler{
		translations: translations,
		sweeper:      sweeper,
	}
}

type cacheWriteRequest struct {
	SourceText     string `json:"sourceText"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	TranslatedText string `json:"translatedText"`
}

// cachedEntryResponse uses the same keys as a /translate result so clients
// can read either one with a single decoder.
type cachedEntryResponse struct {
	TranslatedText string    `json:"translatedText"`
	SourceLanguage string    `json:"sourceLanguage"`
	TargetLanguage string    `json:"targetLanguage"`
	OriginalText   string    `json:"originalText"`
	Cached         bool      `json:"cached"`
	UsageCount     int       `json:"usageCount"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

func newCachedEntryResponse(entry *models.TranslationCache) cachedEntryResponse {
	return cachedEntryResponse{
		TranslatedText: entry.TranslatedText,
		SourceLanguage: entry.SourceLanguage,
		TargetLanguage: entry.TargetLanguage,
		OriginalText:   entry.SourceText,
		Cached:         true,
		UsageCount:     entry.UsageCount,
		CreatedAt:      entry.CreatedAt,
		ExpiresAt:      entry.ExpiresAt,
	}
}

// GetCached looks up a stored translation and counts the hit
// GET /translations/cache?text=&source=&target=
func (h *CacheHandler) GetCached(c *gin.Context) {
	text := c.Query("text")
	target := services.NormalizeLanguage(c.Query("target"))
	if text == "" || target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text and target are required"})
		return
	}
	source := services.ResolveSourceLanguage(c.Query("source"), h.translations.SourceLanguage())

	entry, err := h.translations.LookupEntry(c.Request.Context(), text, source, target)
	if err != nil {
		logger.Log.Error("Cache lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cache lookup failed"})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"cached": false})
		return
	}

	c.JSON(http.StatusOK, newCachedEntryResponse(entry))
}

// PutCached stores a translation produced elsewhere
// POST /translations/cache
func (h *CacheHandler) PutCached(c *gin.Context) {
	var req cacheWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SourceText == "" || req.TargetLanguage == "" || req.TranslatedText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sourceText, targetLanguage and translatedText are required"})
		return
	}
	source := services.ResolveSourceLanguage(req.SourceLanguage, h.translations.SourceLanguage())
	target := services.NormalizeLanguage(req.TargetLanguage)

	entry, err := h.translations.Remember(c.Request.Context(), req.SourceText, source, target, req.TranslatedText)
	if err != nil {
		logger.Log.Error("Cache write failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cache translation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cached": entry})
}

// SweepExpired deletes expired rows. Zero matches is still a success.
// DELETE /translations/cache
func (h *CacheHandler) SweepExpired(c *gin.Context) {
	removed, err := h.sweeper.SweepStore(c.Request.Context())
	if err != nil {
		logger.Log.Error("Cache sweep failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clean expired translations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": removed})
}
