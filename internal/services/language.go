package services

import "strings"

const autoLanguage = "auto"

// NormalizeLanguage lowercases a language tag and drops any region,
// so "PT-br" and "pt_BR" both become "pt".
func NormalizeLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	return code
}

// ResolveSourceLanguage maps a source language given to the cache endpoints
// onto a cache key component. "auto" and empty mean the configured source.
func ResolveSourceLanguage(requested, configured string) string {
	lang := NormalizeLanguage(requested)
	if lang == "" || lang == autoLanguage {
		return configured
	}
	return lang
}
