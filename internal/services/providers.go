package services

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/naturespot/naturespot/backend/internal/config"
)

// BuildProviders instantiates the provider chain in the configured order.
// Google is skipped with a warning when its credentials cannot be loaded so a
// missing key file never takes the other providers down with it.
func BuildProviders(cfg config.Config) ([]Provider, error) {
	timeout := cfg.Translation.ProviderTimeout

	var providers []Provider
	for _, name := range cfg.Translation.Providers {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case myMemoryName:
			providers = append(providers, NewMyMemoryProvider(cfg.MyMemory, timeout, cfg.Translation.ChunkSize))
		case libreTranslateName:
			providers = append(providers, NewLibreTranslateProvider(cfg.Libre, timeout))
		case "google":
			p, err := NewGoogleProvider(cfg.Google.CredentialsFile, timeout, cfg.Google.RPS)
			if err != nil {
				warnLog("Google provider disabled", zap.Error(err))
				continue
			}
			providers = append(providers, p)
		default:
			return nil, fmt.Errorf("unknown translation provider %q", name)
		}
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	infoLog("Translation providers configured", zap.Strings("providers", names))

	return providers, nil
}
