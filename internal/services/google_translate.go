package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// Google Cloud Translation API v3 endpoint
	googleTranslateURL = "https://translation.googleapis.com/v3/projects/%s/locations/global:translateText"
	googleScope        = "https://www.googleapis.com/auth/cloud-translation"
)

// GoogleProvider calls Google Cloud Translation v3 with a service account.
// Access tokens come from an oauth2 JWT-bearer token source and are reused
// until a minute before they expire.
type GoogleProvider struct {
	backend  httpBackend
	endpoint string
	tokens   oauth2.TokenSource
}

// googleCredentials is the subset of a service account JSON key we check up front
type googleCredentials struct {
	ProjectID   string `json:"project_id"`
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
}

type googleTranslateRequest struct {
	SourceLanguageCode string   `json:"sourceLanguageCode,omitempty"`
	TargetLanguageCode string   `json:"targetLanguageCode"`
	Contents           []string `json:"contents"`
	MimeType           string   `json:"mimeType"`
}

type googleTranslateResponse struct {
	Translations []struct {
		TranslatedText string `json:"translatedText"`
	} `json:"translations"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewGoogleProvider loads a service account key from credentialsPath.
func NewGoogleProvider(credentialsPath string, timeout time.Duration, rps float64) (*GoogleProvider, error) {
	if credentialsPath == "" {
		return nil, errors.New("google: GOOGLE_APPLICATION_CREDENTIALS not set")
	}

	if strings.HasPrefix(credentialsPath, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			credentialsPath = strings.Replace(credentialsPath, "~", home, 1)
		}
	}

	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("google: read credentials: %w", err)
	}

	var creds googleCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("google: parse credentials: %w", err)
	}
	if creds.ProjectID == "" || creds.PrivateKey == "" || creds.ClientEmail == "" {
		return nil, errors.New("google: credentials file missing required fields")
	}

	// Fail at startup rather than on the first token fetch
	if _, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(creds.PrivateKey)); err != nil {
		return nil, fmt.Errorf("google: parse private key: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, googleScope)
	if err != nil {
		return nil, fmt.Errorf("google: load service account: %w", err)
	}

	backend := newHTTPBackend("google", timeout, rps)
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, backend.client)

	infoLog("Google provider enabled", zap.String("project", creds.ProjectID))

	return &GoogleProvider{
		backend:  backend,
		endpoint: fmt.Sprintf(googleTranslateURL, creds.ProjectID),
		tokens:   oauth2.ReuseTokenSourceWithExpiry(nil, jwtConfig.TokenSource(tokenCtx), time.Minute),
	}, nil
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) Translate(ctx context.Context, text, targetLanguage, sourceLanguage string) (string, error) {
	token, err := p.accessToken()
	if err != nil {
		return "", err
	}

	reqJSON, err := json.Marshal(googleTranslateRequest{
		SourceLanguageCode: sourceLanguage,
		TargetLanguageCode: targetLanguage,
		Contents:           []string{text},
		MimeType:           "text/plain",
	})
	if err != nil {
		return "", p.backend.fail(ProviderErrDecode, 0, err)
	}

	body, err := p.backend.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(reqJSON))
		if err != nil {
			return nil, err
		}
		token.SetAuthHeader(req)
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		return req, nil
	})
	if err != nil {
		return "", err
	}

	var result googleTranslateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", p.backend.fail(ProviderErrDecode, 0, err)
	}
	if result.Error != nil {
		return "", p.backend.fail(ProviderErrStatus, result.Error.Code, errors.New(result.Error.Message))
	}
	if len(result.Translations) == 0 || result.Translations[0].TranslatedText == "" {
		return "", p.backend.fail(ProviderErrEmpty, 0, errors.New("no translations returned"))
	}

	return result.Translations[0].TranslatedText, nil
}

// accessToken returns a cached token or fetches a new one, classifying
// failures the same way as translation calls.
func (p *GoogleProvider) accessToken() (*oauth2.Token, error) {
	token, err := p.tokens.Token()
	if err == nil {
		return token, nil
	}

	var retrieveErr *oauth2.RetrieveError
	switch {
	case errors.As(err, &retrieveErr):
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return nil, p.backend.fail(ProviderErrStatus, status, fmt.Errorf("token endpoint: %w", err))
	case isTimeout(err):
		return nil, p.backend.fail(ProviderErrTimeout, 0, fmt.Errorf("token request: %w", err))
	default:
		return nil, p.backend.fail(ProviderErrNetwork, 0, fmt.Errorf("token request: %w", err))
	}
}
