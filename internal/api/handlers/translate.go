package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/naturespot/naturespot/backend/internal/logger"
	"github.com/naturespot/naturespot/backend/internal/middleware"
	"github.com/naturespot/naturespot/backend/internal/models"
	"github.com/naturespot/naturespot/backend/internal/services"
)

type TranslationHandler struct {
	translations *services.TranslationService
	posts        *services.PostTranslator
}

func NewTranslationHandler(translations *services.TranslationService, posts *services.PostTranslator) *TranslationHandler {
	return &TranslationHandler{
		translations: translations,
		posts:        posts,
	}
}

type translatePostRequest struct {
	Post           models.PostContent `json:"post"`
	TargetLanguage string             `json:"targetLanguage"`
}

// fallbackResponse tells the client to show the original text
func fallbackResponse(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":          message,
		"translatedText": nil,
		"fallback":       true,
	})
}

// TranslateRecovery turns a panic in a translation route into the fallback
// envelope, so clients show the original text instead of a bare 500.
// It runs inside the engine-wide recovery, which never sees these panics.
func TranslateRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Log.Error("Translate handler panic",
			zap.Any("panic", recovered),
			logger.WithRequestID(c.GetString(middleware.RequestIDKey)))
		fallbackResponse(c, "Translation failed")
	})
}

// Translate translates a single text
// POST /translate
func (h *TranslationHandler) Translate(c *gin.Context) {
	var req models.TranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" || req.TargetLanguage == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text and target language are required"})
		return
	}
	req.CallerID = middleware.GetUserID(c)

	result, err := h.translations.Translate(c.Request.Context(), req)
	if err != nil {
		if services.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Log.Error("Translation failed",
			zap.Error(err),
			logger.WithUserID(req.CallerID),
			logger.WithRequestID(c.GetString(middleware.RequestIDKey)))
		fallbackResponse(c, "Translation failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

// TranslatePost translates the text fields of a post
// POST /translate/post
func (h *TranslationHandler) TranslatePost(c *gin.Context) {
	var req translatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TargetLanguage == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post and target language are required"})
		return
	}

	merged := h.posts.TranslatePost(c.Request.Context(), req.Post, req.TargetLanguage, middleware.GetUserID(c))
	if merged == nil {
		c.JSON(http.StatusOK, gin.H{"post": req.Post, "translated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": merged, "translated": true})
}

// ListLanguages returns the languages the app offers
// GET /languages
func (h *TranslationHandler) ListLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sourceLanguage": h.translations.SourceLanguage(),
		"languages":      models.SupportedLanguages,
	})
}
