package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "en", cfg.Translation.SourceLanguage)
	assert.Equal(t, []string{"mymemory", "libretranslate"}, cfg.Translation.Providers)
	assert.Equal(t, 400, cfg.Translation.ChunkSize)
	assert.Equal(t, 10*time.Second, cfg.Translation.ProviderTimeout)
	assert.Equal(t, 30*24*time.Hour, cfg.Translation.CacheTTL)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlData := `
port: "9090"
translation:
  providers: [libretranslate]
  chunk_delay: 250ms
libretranslate:
  base_url: http://libre.internal
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")
	t.Setenv("TRANSLATION_CACHE_TTL", "48h")
	t.Setenv("TRANSLATION_DEBUG", "yes")
	t.Setenv("MYMEMORY_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port, "env overrides YAML")
	assert.Equal(t, []string{"libretranslate"}, cfg.Translation.Providers)
	assert.Equal(t, 250*time.Millisecond, cfg.Translation.ChunkDelay)
	assert.Equal(t, "http://libre.internal", cfg.Libre.BaseURL)
	assert.Equal(t, 48*time.Hour, cfg.Translation.CacheTTL)
	assert.True(t, cfg.Translation.Debug)
	assert.Equal(t, 2.5, cfg.MyMemory.RPS)
	assert.Equal(t, 400, cfg.Translation.ChunkSize, "unset values keep defaults")
}

func TestLoadDetectsPostgresDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://user:pw@db:5432/naturespot")
	t.Setenv("DATABASE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"bad duration", "TRANSLATION_PROVIDER_TIMEOUT", "soon"},
		{"bad chunk size", "TRANSLATION_CHUNK_SIZE", "big"},
		{"zero chunk size", "TRANSLATION_CHUNK_SIZE", "0"},
		{"bad rate", "LIBRETRANSLATE_RPS", "fast"},
		{"unknown driver", "DATABASE_DRIVER", "oracle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSetListTrimsEntries(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	var got []string
	setList(&got, "CORS_ORIGINS")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, got)
}
