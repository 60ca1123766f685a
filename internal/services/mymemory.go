package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/naturespot/naturespot/backend/internal/config"
)

const (
	myMemoryName      = "mymemory"
	myMemoryUserAgent = "NatureSpot-App"
)

// MyMemoryProvider calls the public MyMemory /get endpoint.
// MyMemory rejects queries over 500 characters, so it is a ChunkingProvider.
type MyMemoryProvider struct {
	backend   httpBackend
	baseURL   string
	email     string
	chunkSize int
}

// NewMyMemoryProvider creates a MyMemory provider. An email raises the daily quota.
func NewMyMemoryProvider(cfg config.ProviderConfig, timeout time.Duration, chunkSize int) *MyMemoryProvider {
	return &MyMemoryProvider{
		backend:   newHTTPBackend(myMemoryName, timeout, cfg.RPS),
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		email:     cfg.Email,
		chunkSize: chunkSize,
	}
}

func (p *MyMemoryProvider) Name() string { return myMemoryName }

func (p *MyMemoryProvider) MaxChunkLength() int { return p.chunkSize }

// myMemoryResponse mirrors the parts of the MyMemory payload we read.
// responseStatus is a number on success and sometimes a string on errors.
type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus  flexInt `json:"responseStatus"`
	ResponseDetails string  `json:"responseDetails"`
}

type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("responseStatus %q is not a number", s)
	}
	*f = flexInt(n)
	return nil
}

func (p *MyMemoryProvider) Translate(ctx context.Context, text, targetLanguage, sourceLanguage string) (string, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", sourceLanguage+"|"+targetLanguage)
	if p.email != "" {
		q.Set("de", p.email)
	}
	endpoint := p.baseURL + "/get?" + q.Encode()

	body, err := p.backend.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", myMemoryUserAgent)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return "", err
	}

	var result myMemoryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", p.backend.fail(ProviderErrDecode, 0, err)
	}

	// Quota and validation errors come back as HTTP 200 with a non-200 responseStatus
	if result.ResponseStatus != http.StatusOK {
		details := result.ResponseDetails
		if details == "" {
			details = "unknown error"
		}
		kind := ProviderErrStatus
		if result.ResponseStatus == http.StatusTooManyRequests {
			kind = ProviderErrRateLimit
		}
		return "", p.backend.fail(kind, int(result.ResponseStatus), errors.New(details))
	}
	if strings.TrimSpace(result.ResponseData.TranslatedText) == "" {
		return "", p.backend.fail(ProviderErrEmpty, 0, errors.New("empty translatedText"))
	}

	return result.ResponseData.TranslatedText, nil
}
