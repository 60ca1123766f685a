package models

import (
	"testing"
)

func TestIsSupportedLanguage(t *testing.T) {
	tests := []struct {
		code     string
		expected bool
	}{
		{"en", true},
		{"es", true},
		{"hi", true},
		{"zh", true},
		{"sv", false},
		{"ES", false}, // codes are normalised before lookup
		{"", false},
	}

	for _, tt := range tests {
		if got := IsSupportedLanguage(tt.code); got != tt.expected {
			t.Errorf("IsSupportedLanguage(%q) = %v, want %v", tt.code, got, tt.expected)
		}
	}

	if len(SupportedLanguages) != 12 {
		t.Errorf("expected 12 supported languages, got %d", len(SupportedLanguages))
	}
}

func TestTranslationResultIsMock(t *testing.T) {
	if !(&TranslationResult{Service: ServiceMock}).IsMock() {
		t.Error("mock service should report IsMock")
	}
	for _, service := range []string{ServiceNone, ServiceCache, "mymemory"} {
		if (&TranslationResult{Service: service}).IsMock() {
			t.Errorf("service %q should not report IsMock", service)
		}
	}
}
