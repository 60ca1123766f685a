package services

import (
	"go.uber.org/zap"

	"github.com/naturespot/naturespot/backend/internal/logger"
)

var translationDebugEnabled = false

// SetTranslationDebug toggles verbose per-request translation logs (TRANSLATION_DEBUG).
func SetTranslationDebug(enabled bool) {
	translationDebugEnabled = enabled
	if enabled {
		infoLog("Debug logging enabled")
	}
}

// debugLog logs only when translation debug is enabled.
// Use this for per-request details: cache hits/misses, chunk counts, provider attempts.
func debugLog(msg string, fields ...zap.Field) {
	if translationDebugEnabled {
		logger.Log.Named("translation.debug").Info(msg, fields...)
	}
}

// infoLog always logs important translation events:
// provider failures, mock fallbacks, sweeps.
func infoLog(msg string, fields ...zap.Field) {
	logger.Log.Named("translation").Info(msg, fields...)
}

func warnLog(msg string, fields ...zap.Field) {
	logger.Log.Named("translation").Warn(msg, fields...)
}
