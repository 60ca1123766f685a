package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/naturespot/naturespot/backend/internal/auth"
)

// stubVerifier accepts exactly one token
type stubVerifier struct {
	token  string
	userID string
}

func (v stubVerifier) Verify(_ context.Context, token string) (string, error) {
	if token == v.token {
		return v.userID, nil
	}
	return "", auth.ErrInvalidToken
}

// brokenVerifier fails with an error that is not a token problem
type brokenVerifier struct{}

func (brokenVerifier) Verify(context.Context, string) (string, error) {
	return "", errors.New("jwks fetch failed")
}

func TestRequireUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		verifier       auth.Verifier
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "valid token",
			verifier:       stubVerifier{token: "good", userID: "user-42"},
			authHeader:     "Bearer good",
			expectedStatus: http.StatusOK,
			expectedBody:   "user-42",
		},
		{
			name:           "missing header",
			verifier:       stubVerifier{token: "good", userID: "user-42"},
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Authorization token required",
		},
		{
			name:           "not a bearer header",
			verifier:       stubVerifier{token: "good", userID: "user-42"},
			authHeader:     "Basic Z29vZA==",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Authorization token required",
		},
		{
			name:           "invalid token",
			verifier:       stubVerifier{token: "good", userID: "user-42"},
			authHeader:     "Bearer bad",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Invalid or expired token",
		},
		{
			name:           "verifier failure is still 401",
			verifier:       brokenVerifier{},
			authHeader:     "Bearer good",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Invalid or expired token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RequireUser(tt.verifier))
			router.GET("/test", func(c *gin.Context) {
				c.String(http.StatusOK, GetUserID(c))
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.expectedBody) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestAdminKeyAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		adminKey       string
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "no admin key configured - allows all requests",
			adminKey:       "",
			authHeader:     "",
			expectedStatus: http.StatusOK,
			expectedBody:   "ok",
		},
		{
			name:           "valid admin key",
			adminKey:       "test-secret-key",
			authHeader:     "Bearer test-secret-key",
			expectedStatus: http.StatusOK,
			expectedBody:   "ok",
		},
		{
			name:           "missing auth header",
			adminKey:       "test-secret-key",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "AUTH_REQUIRED",
		},
		{
			name:           "invalid auth format - no Bearer",
			adminKey:       "test-secret-key",
			authHeader:     "test-secret-key",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "AUTH_INVALID_FORMAT",
		},
		{
			name:           "invalid admin key",
			adminKey:       "test-secret-key",
			authHeader:     "Bearer wrong-key",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "AUTH_INVALID_KEY",
		},
		{
			name:           "case insensitive Bearer",
			adminKey:       "test-secret-key",
			authHeader:     "bearer test-secret-key",
			expectedStatus: http.StatusOK,
			expectedBody:   "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(AdminKeyAuth(tt.adminKey))
			router.GET("/test", func(c *gin.Context) {
				c.String(http.StatusOK, "ok")
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.expectedBody) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestVerifyAdminKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		adminKey       string
		authHeader     string
		expectedStatus int
		expectedValid  bool
	}{
		{
			name:           "auth disabled - always valid",
			adminKey:       "",
			authHeader:     "",
			expectedStatus: http.StatusOK,
			expectedValid:  true,
		},
		{
			name:           "valid key",
			adminKey:       "test-key",
			authHeader:     "Bearer test-key",
			expectedStatus: http.StatusOK,
			expectedValid:  true,
		},
		{
			name:           "invalid key",
			adminKey:       "test-key",
			authHeader:     "Bearer wrong-key",
			expectedStatus: http.StatusUnauthorized,
			expectedValid:  false,
		},
		{
			name:           "missing header",
			adminKey:       "test-key",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedValid:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/admin/verify", VerifyAdminKey(tt.adminKey))

			req := httptest.NewRequest(http.MethodPost, "/admin/verify", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedValid && !strings.Contains(w.Body.String(), `"valid":true`) {
				t.Errorf("expected valid:true in response, got %s", w.Body.String())
			}
			if !tt.expectedValid && !strings.Contains(w.Body.String(), `"valid":false`) {
				t.Errorf("expected valid:false in response, got %s", w.Body.String())
			}
		})
	}
}

func TestAuthStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, key := range []string{"", "some-key"} {
		router := gin.New()
		router.GET("/admin/auth/status", AuthStatus(key))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/auth/status", nil))

		want := `"auth_enabled":false`
		if key != "" {
			want = `"auth_enabled":true`
		}
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), want) {
			t.Errorf("key %q: got %d %s", key, w.Code, w.Body.String())
		}
	}
}
