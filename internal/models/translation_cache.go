package models

import "time"

// TranslationCache stores provider-sourced translations keyed by
// (source text, source language, target language).
//
// The text itself is indexed through SourceHash (SHA256 hex) so long post
// descriptions stay within index size limits; the unique index on
// (source_hash, source_language, target_language) is the composite key.
// Rows are logically absent once ExpiresAt has passed and are physically
// removed by the sweep.
type TranslationCache struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SourceHash     string    `gorm:"not null;size:64;uniqueIndex:idx_translation_key" json:"-"`
	SourceText     string    `gorm:"not null" json:"source_text"`
	SourceLanguage string    `gorm:"not null;size:10;uniqueIndex:idx_translation_key" json:"source_language"`
	TargetLanguage string    `gorm:"not null;size:10;uniqueIndex:idx_translation_key;index" json:"target_language"`
	TranslatedText string    `gorm:"not null" json:"translated_text"`
	UsageCount     int       `gorm:"not null;default:1" json:"usage_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	ExpiresAt      time.Time `gorm:"not null;index" json:"expires_at"`
}

func (TranslationCache) TableName() string {
	return "translation_cache"
}

// LanguageStat aggregates cache rows for one language pair.
type LanguageStat struct {
	SourceLanguage   string `json:"sourceLanguage"`
	TargetLanguage   string `json:"targetLanguage"`
	TranslationCount int64  `json:"translationCount"`
	TotalUsage       int64  `json:"totalUsage"`
}

// CacheStats is the payload of the admin stats endpoint.
type CacheStats struct {
	LanguageStats       []LanguageStat `json:"languageStats"`
	TotalTranslations   int64          `json:"totalTranslations"`
	ExpiredTranslations int64          `json:"expiredTranslations"`
	ActiveTranslations  int64          `json:"activeTranslations"`
}
