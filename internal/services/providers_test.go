package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/naturespot/naturespot/backend/internal/config"
)

func providerErrorKind(t *testing.T, err error) ProviderErrorKind {
	t.Helper()
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ProviderError, got %T: %v", err, err)
	}
	return pe.Kind
}

func TestMyMemoryProvider_Success(t *testing.T) {
	var gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`{"responseData":{"translatedText":"Hola mundo"},"responseStatus":200}`))
	}))
	defer srv.Close()

	p := NewMyMemoryProvider(config.ProviderConfig{BaseURL: srv.URL + "/", Email: "ops@example.com"}, time.Second, 400)
	got, err := p.Translate(context.Background(), "Hello world", "es", "en")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Hola mundo" {
		t.Errorf("got %q, want %q", got, "Hola mundo")
	}
	if gotAgent != myMemoryUserAgent {
		t.Errorf("User-Agent = %q", gotAgent)
	}
	for _, want := range []string{"q=Hello+world", "langpair=en%7Ces", "de=ops%40example.com"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
	if p.MaxChunkLength() != 400 {
		t.Errorf("MaxChunkLength = %d", p.MaxChunkLength())
	}
}

func TestMyMemoryProvider_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   ProviderErrorKind
	}{
		{"HTTP error", http.StatusInternalServerError, `oops`, ProviderErrStatus},
		{"quota exceeded in body", http.StatusOK, `{"responseData":{"translatedText":"MYMEMORY WARNING"},"responseStatus":429,"responseDetails":"quota"}`, ProviderErrRateLimit},
		{"string status", http.StatusOK, `{"responseData":{"translatedText":""},"responseStatus":"403","responseDetails":"INVALID LANGUAGE PAIR"}`, ProviderErrStatus},
		{"empty translation", http.StatusOK, `{"responseData":{"translatedText":"  "},"responseStatus":200}`, ProviderErrEmpty},
		{"malformed JSON", http.StatusOK, `{"responseData":`, ProviderErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewMyMemoryProvider(config.ProviderConfig{BaseURL: srv.URL}, time.Second, 400)
			_, err := p.Translate(context.Background(), "Hello world", "es", "en")
			if err == nil {
				t.Fatal("expected error")
			}
			if kind := providerErrorKind(t, err); kind != tt.kind {
				t.Errorf("kind = %s, want %s", kind, tt.kind)
			}
		})
	}
}

func TestProviderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	p := NewLibreTranslateProvider(config.ProviderConfig{BaseURL: srv.URL}, 50*time.Millisecond)
	start := time.Now()
	_, err := p.Translate(context.Background(), "Hello world", "es", "en")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if kind := providerErrorKind(t, err); kind != ProviderErrTimeout {
		t.Errorf("kind = %s, want %s", kind, ProviderErrTimeout)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout not enforced, took %s", elapsed)
	}
}

func TestLibreTranslateProvider(t *testing.T) {
	var got libreTranslateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/translate" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		if got.Target == "xx" {
			w.Write([]byte(`{"error":"xx is not supported"}`))
			return
		}
		w.Write([]byte(`{"translatedText":"Bonjour le monde"}`))
	}))
	defer srv.Close()

	p := NewLibreTranslateProvider(config.ProviderConfig{BaseURL: srv.URL, APIKey: "k1"}, time.Second)

	out, err := p.Translate(context.Background(), "Hello world", "fr", "en")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "Bonjour le monde" {
		t.Errorf("got %q", out)
	}
	if got.Q != "Hello world" || got.Source != "en" || got.Target != "fr" || got.Format != "text" || got.APIKey != "k1" {
		t.Errorf("unexpected request body %+v", got)
	}

	_, err = p.Translate(context.Background(), "Hello world", "xx", "en")
	if err == nil {
		t.Fatal("expected error for error payload")
	}
	if kind := providerErrorKind(t, err); kind != ProviderErrStatus {
		t.Errorf("kind = %s, want %s", kind, ProviderErrStatus)
	}
}

func TestProviderRateLimiterHonoursContext(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"translatedText":"ok"}`))
	}))
	defer srv.Close()

	// One request every 10s: the second call cannot get a token before its deadline
	p := NewLibreTranslateProvider(config.ProviderConfig{BaseURL: srv.URL, RPS: 0.1}, time.Second)
	if _, err := p.Translate(context.Background(), "first", "fr", "en"); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := p.Translate(ctx, "second", "fr", "en")
	if err == nil {
		t.Fatal("expected rate limit error")
	}
	if kind := providerErrorKind(t, err); kind != ProviderErrRateLimit {
		t.Errorf("kind = %s, want %s", kind, ProviderErrRateLimit)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected 1 upstream call, got %d", n)
	}
}

func writeGoogleCredentials(t *testing.T, tokenURI string) (string, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	creds, _ := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   "naturespot-test",
		"private_key":  string(pemKey),
		"client_email": "translate@naturespot-test.iam.gserviceaccount.com",
		"token_uri":    tokenURI,
	})
	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, creds, 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}
	return path, key
}

func TestGoogleProvider(t *testing.T) {
	var tokenCalls int32
	var key *rsa.PrivateKey

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		r.ParseForm()
		assertion := r.PostForm.Get("assertion")
		parsed, err := jwt.Parse(assertion, func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil },
			jwt.WithValidMethods([]string{"RS256"}))
		if err != nil || !parsed.Valid {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/translate", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req googleTranslateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.TargetLanguageCode != "de" || req.SourceLanguageCode != "en" || req.Contents[0] != "Good morning" {
			t.Errorf("unexpected request %+v", req)
		}
		w.Write([]byte(`{"translations":[{"translatedText":"Guten Morgen"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	path, k := writeGoogleCredentials(t, srv.URL+"/token")
	key = k

	p, err := NewGoogleProvider(path, time.Second, 0)
	if err != nil {
		t.Fatalf("NewGoogleProvider: %v", err)
	}
	p.endpoint = srv.URL + "/translate"

	for i := 0; i < 2; i++ {
		out, err := p.Translate(context.Background(), "Good morning", "de", "en")
		if err != nil {
			t.Fatalf("Translate: %v", err)
		}
		if out != "Guten Morgen" {
			t.Errorf("got %q", out)
		}
	}
	if n := atomic.LoadInt32(&tokenCalls); n != 1 {
		t.Errorf("expected the access token to be reused, got %d token calls", n)
	}
}

func TestGoogleProvider_TokenRejected(t *testing.T) {
	var translateCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"account disabled"}`))
	})
	mux.HandleFunc("/translate", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&translateCalls, 1)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	path, _ := writeGoogleCredentials(t, srv.URL+"/token")
	p, err := NewGoogleProvider(path, time.Second, 0)
	if err != nil {
		t.Fatalf("NewGoogleProvider: %v", err)
	}
	p.endpoint = srv.URL + "/translate"

	_, err = p.Translate(context.Background(), "Good morning", "de", "en")
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ProviderError, got %T: %v", err, err)
	}
	if pe.Kind != ProviderErrStatus || pe.StatusCode != http.StatusBadRequest {
		t.Errorf("got kind %s status %d, want status 400", pe.Kind, pe.StatusCode)
	}
	if n := atomic.LoadInt32(&translateCalls); n != 0 {
		t.Errorf("translate endpoint called %d times without a token", n)
	}
}

func TestNewGoogleProviderRejectsBadCredentials(t *testing.T) {
	if _, err := NewGoogleProvider("", time.Second, 0); err == nil {
		t.Error("expected error without a credentials path")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte(`{"project_id":"p","client_email":"e","private_key":"not a key"}`), 0o600)
	if _, err := NewGoogleProvider(path, time.Second, 0); err == nil {
		t.Error("expected error for an unparseable private key")
	}
}

func TestBuildProviders(t *testing.T) {
	cfg := config.Default()
	cfg.Translation.Providers = []string{"MyMemory", "libretranslate", "google"}
	cfg.Google.CredentialsFile = ""

	providers, err := BuildProviders(cfg)
	if err != nil {
		t.Fatalf("BuildProviders: %v", err)
	}
	var names []string
	for _, p := range providers {
		names = append(names, p.Name())
	}
	if strings.Join(names, ",") != "mymemory,libretranslate" {
		t.Errorf("providers = %v, want google skipped", names)
	}

	cfg.Translation.Providers = []string{"deepl"}
	if _, err := BuildProviders(cfg); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFlexIntUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    flexInt
		wantErr bool
	}{
		{`200`, 200, false},
		{`"429"`, 429, false},
		{`" 403 "`, 403, false},
		{`"abc"`, 0, true},
		{`true`, 0, true},
	}
	for _, tt := range tests {
		var got flexInt
		err := json.Unmarshal([]byte(tt.in), &got)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Unmarshal(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
