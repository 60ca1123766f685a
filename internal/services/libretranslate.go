package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/naturespot/naturespot/backend/internal/config"
)

const libreTranslateName = "libretranslate"

// LibreTranslateProvider calls a LibreTranslate instance's POST /translate.
type LibreTranslateProvider struct {
	backend httpBackend
	baseURL string
	apiKey  string
}

func NewLibreTranslateProvider(cfg config.ProviderConfig, timeout time.Duration) *LibreTranslateProvider {
	return &LibreTranslateProvider{
		backend: newHTTPBackend(libreTranslateName, timeout, cfg.RPS),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

func (p *LibreTranslateProvider) Name() string { return libreTranslateName }

type libreTranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreTranslateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

func (p *LibreTranslateProvider) Translate(ctx context.Context, text, targetLanguage, sourceLanguage string) (string, error) {
	reqJSON, err := json.Marshal(libreTranslateRequest{
		Q:      text,
		Source: sourceLanguage,
		Target: targetLanguage,
		Format: "text",
		APIKey: p.apiKey,
	})
	if err != nil {
		return "", p.backend.fail(ProviderErrDecode, 0, err)
	}

	body, err := p.backend.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/translate", bytes.NewReader(reqJSON))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", err
	}

	var result libreTranslateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", p.backend.fail(ProviderErrDecode, 0, err)
	}
	if result.Error != "" {
		return "", p.backend.fail(ProviderErrStatus, 0, errors.New(result.Error))
	}
	if strings.TrimSpace(result.TranslatedText) == "" {
		return "", p.backend.fail(ProviderErrEmpty, 0, errors.New("empty translatedText"))
	}

	return result.TranslatedText, nil
}
