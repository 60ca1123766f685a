package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration of the API and the CLI.
type Config struct {
	Port        string            `yaml:"port"`
	Database    DatabaseConfig    `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
	Auth        AuthConfig        `yaml:"auth"`
	AdminKey    string            `yaml:"admin_key"`
	RedisAddr   string            `yaml:"redis_addr"`
	CORSOrigins []string          `yaml:"cors_origins"`
	Translation TranslationConfig `yaml:"translation"`
	MyMemory    ProviderConfig    `yaml:"mymemory"`
	Libre       ProviderConfig    `yaml:"libretranslate"`
	Google      GoogleConfig      `yaml:"google"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	DSN    string `yaml:"dsn"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	JWTAudience string `yaml:"jwt_audience"` // empty skips the aud check
}

// TranslationConfig controls the translation pipeline and its caches.
type TranslationConfig struct {
	SourceLanguage      string        `yaml:"source_language"`
	Providers           []string      `yaml:"providers"`
	ProviderTimeout     time.Duration `yaml:"provider_timeout"`
	ChunkSize           int           `yaml:"chunk_size"`
	ChunkDelay          time.Duration `yaml:"chunk_delay"`
	CacheTTL            time.Duration `yaml:"cache_ttl"`
	MemoryTTL           time.Duration `yaml:"memory_ttl"`
	MemorySweepInterval time.Duration `yaml:"memory_sweep_interval"`
	StoreSweepInterval  time.Duration `yaml:"store_sweep_interval"`
	Debug               bool          `yaml:"debug"`
}

// ProviderConfig is shared by the HTTP translation backends.
type ProviderConfig struct {
	BaseURL string  `yaml:"base_url"`
	APIKey  string  `yaml:"api_key"`
	Email   string  `yaml:"email"`
	RPS     float64 `yaml:"rps"` // 0 = unlimited
}

type GoogleConfig struct {
	CredentialsFile string  `yaml:"credentials_file"`
	RPS             float64 `yaml:"rps"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Port: "8080",
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "./data/naturespot.db",
		},
		Log: LogConfig{
			Level: "info",
			File:  "server.log",
		},
		Auth:        AuthConfig{JWTAudience: "authenticated"},
		CORSOrigins: []string{"*"},
		Translation: TranslationConfig{
			SourceLanguage:      "en",
			Providers:           []string{"mymemory", "libretranslate"},
			ProviderTimeout:     10 * time.Second,
			ChunkSize:           400, // MyMemory rejects queries over 500
			ChunkDelay:          100 * time.Millisecond,
			CacheTTL:            30 * 24 * time.Hour,
			MemoryTTL:           24 * time.Hour,
			MemorySweepInterval: time.Hour,
			StoreSweepInterval:  24 * time.Hour,
		},
		MyMemory: ProviderConfig{BaseURL: "https://api.mymemory.translated.net"},
		Libre:    ProviderConfig{BaseURL: "https://libretranslate.com"},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables (a .env file is loaded first if present).
func Load() (Config, error) {
	// Missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.Database.DSN, "DATABASE_URL")
	setString(&c.Database.Driver, "DATABASE_DRIVER")
	if os.Getenv("DATABASE_DRIVER") == "" && isPostgresDSN(c.Database.DSN) {
		c.Database.Driver = "postgres"
	}
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.File, "LOG_FILE")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.JWTSecret, "SUPABASE_JWT_SECRET")
	if v, ok := os.LookupEnv("JWT_AUDIENCE"); ok {
		c.Auth.JWTAudience = v
	}
	setString(&c.AdminKey, "ADMIN_KEY")
	setString(&c.RedisAddr, "REDIS_ADDR")
	setList(&c.CORSOrigins, "CORS_ORIGINS")

	t := &c.Translation
	setString(&t.SourceLanguage, "TRANSLATION_SOURCE_LANGUAGE")
	setList(&t.Providers, "TRANSLATION_PROVIDERS")
	if v := os.Getenv("TRANSLATION_DEBUG"); v != "" {
		v = strings.ToLower(v)
		t.Debug = v == "1" || v == "true" || v == "yes"
	}

	durations := []struct {
		dst *time.Duration
		env string
	}{
		{&t.ProviderTimeout, "TRANSLATION_PROVIDER_TIMEOUT"},
		{&t.ChunkDelay, "TRANSLATION_CHUNK_DELAY"},
		{&t.CacheTTL, "TRANSLATION_CACHE_TTL"},
		{&t.MemoryTTL, "TRANSLATION_MEMORY_TTL"},
		{&t.MemorySweepInterval, "TRANSLATION_MEMORY_SWEEP_INTERVAL"},
		{&t.StoreSweepInterval, "TRANSLATION_STORE_SWEEP_INTERVAL"},
	}
	for _, d := range durations {
		if err := setDuration(d.dst, d.env); err != nil {
			return err
		}
	}
	if v := os.Getenv("TRANSLATION_CHUNK_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRANSLATION_CHUNK_SIZE: %w", err)
		}
		t.ChunkSize = n
	}

	setString(&c.MyMemory.BaseURL, "MYMEMORY_URL")
	setString(&c.MyMemory.Email, "MYMEMORY_EMAIL")
	setString(&c.Libre.BaseURL, "LIBRETRANSLATE_URL")
	setString(&c.Libre.APIKey, "LIBRETRANSLATE_API_KEY")
	setString(&c.Google.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")

	rates := []struct {
		dst *float64
		env string
	}{
		{&c.MyMemory.RPS, "MYMEMORY_RPS"},
		{&c.Libre.RPS, "LIBRETRANSLATE_RPS"},
		{&c.Google.RPS, "GOOGLE_TRANSLATE_RPS"},
	}
	for _, r := range rates {
		if v := os.Getenv(r.env); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", r.env, err)
			}
			*r.dst = f
		}
	}
	return nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	t := c.Translation
	if t.SourceLanguage == "" {
		return fmt.Errorf("translation.source_language must not be empty")
	}
	if len(t.Providers) == 0 {
		return fmt.Errorf("translation.providers must list at least one provider")
	}
	if t.ProviderTimeout <= 0 || t.CacheTTL <= 0 || t.MemoryTTL <= 0 {
		return fmt.Errorf("translation timeouts and TTLs must be positive")
	}
	if t.MemorySweepInterval <= 0 || t.StoreSweepInterval <= 0 {
		return fmt.Errorf("translation sweep intervals must be positive")
	}
	if t.ChunkSize <= 0 {
		return fmt.Errorf("translation.chunk_size must be positive, got %d", t.ChunkSize)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, env string) {
	v := os.Getenv(env)
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func setDuration(dst *time.Duration, env string) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", env, err)
	}
	*dst = d
	return nil
}
