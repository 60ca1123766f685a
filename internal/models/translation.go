package models

// TranslationRequest is one unit of work for the translation pipeline.
type TranslationRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
	SourceLanguage string `json:"sourceLanguage,omitempty"`
	CallerID       string `json:"-"`
}

// TranslationResult is what the pipeline returns for a request.
// Service names the provider that produced the text, or "cache", "mock", "none".
type TranslationResult struct {
	TranslatedText string `json:"translatedText"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	OriginalText   string `json:"originalText"`
	Cached         bool   `json:"cached"`
	Service        string `json:"service"`
}

// Service tags that are not provider names
const (
	ServiceNone  = "none"
	ServiceCache = "cache"
	ServiceMock  = "mock"
)

// IsMock reports whether the text is a placeholder produced after every provider failed.
func (r *TranslationResult) IsMock() bool {
	return r.Service == ServiceMock
}

// PostContent holds the user-authored fields of a post that get translated.
type PostContent struct {
	SpeciesName string `json:"species_name"`
	Description string `json:"description"`
	Caption     string `json:"caption,omitempty"`
}

// Language is an entry of the supported language list.
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
}

// SupportedLanguages lists the languages the UI offers.
var SupportedLanguages = []Language{
	{Code: "en", Name: "English", NativeName: "English"},
	{Code: "es", Name: "Spanish", NativeName: "Español"},
	{Code: "fr", Name: "French", NativeName: "Français"},
	{Code: "de", Name: "German", NativeName: "Deutsch"},
	{Code: "it", Name: "Italian", NativeName: "Italiano"},
	{Code: "pt", Name: "Portuguese", NativeName: "Português"},
	{Code: "ru", Name: "Russian", NativeName: "Русский"},
	{Code: "ja", Name: "Japanese", NativeName: "日本語"},
	{Code: "ko", Name: "Korean", NativeName: "한국어"},
	{Code: "zh", Name: "Chinese", NativeName: "中文"},
	{Code: "ar", Name: "Arabic", NativeName: "العربية"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी"},
}

// IsSupportedLanguage reports whether code is in SupportedLanguages
func IsSupportedLanguage(code string) bool {
	for _, l := range SupportedLanguages {
		if l.Code == code {
			return true
		}
	}
	return false
}
