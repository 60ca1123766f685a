package services

import (
	"fmt"
	"strings"
)

// mockLanguagePairs lists the pairs for which the placeholder claims to be a
// mock translation rather than untranslated text.
var mockLanguagePairs = map[string]map[string]bool{
	"en": {
		"es": true, "fr": true, "de": true, "it": true, "pt": true, "ru": true,
		"ja": true, "ko": true, "zh": true, "ar": true, "hi": true,
	},
}

// MockTranslation is the placeholder returned when every provider failed.
// It is never written to any cache.
func MockTranslation(text, targetLanguage, sourceLanguage string) string {
	tag := strings.ToUpper(targetLanguage)
	if mockLanguagePairs[sourceLanguage][targetLanguage] {
		return fmt.Sprintf("[%s] %s (Mock translation)", tag, text)
	}
	return fmt.Sprintf("[%s] %s (Untranslated)", tag, text)
}
