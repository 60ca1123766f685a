package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/naturespot/naturespot/backend/internal/config"
	"github.com/naturespot/naturespot/backend/internal/database"
	"github.com/naturespot/naturespot/backend/internal/logger"
	"github.com/naturespot/naturespot/backend/internal/services"
)

// cliOptions are the persistent flags shared by every command
type cliOptions struct {
	output  string // "text" or "json"
	verbose bool
}

// app is the configured backend a command works against
type app struct {
	cfg   config.Config
	db    *gorm.DB
	store *services.TranslationCacheService
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = logger.Close()
}

// openApp loads configuration and connects to the translation cache database.
func openApp(opts *cliOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// Logs would mix with command output, so they stay off unless asked for
	if opts.verbose {
		if err := logger.Initialize("debug", "-"); err != nil {
			return nil, err
		}
		services.SetTranslationDebug(true)
	}

	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db, cfg.Translation.CacheTTL); err != nil {
		return nil, err
	}

	return &app{
		cfg:   cfg,
		db:    db,
		store: services.NewTranslationCacheService(db, cfg.Translation.CacheTTL),
	}, nil
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{output: "text"}

	root := &cobra.Command{
		Use:   "translatectl",
		Short: "translatectl - operate the NatureSpot translation pipeline",
		Long: `translatectl runs translations through the configured provider chain and
manages the persistent translation cache.

Configuration is read the same way as the API server: .env, CONFIG_FILE and
environment variables (DATABASE_URL, TRANSLATION_PROVIDERS, ...).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("unknown output format %q (use text or json)", opts.output)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.output, "output", "o", opts.output, "Output format: text or json")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline decisions to stdout")

	root.AddCommand(newTranslateCmd(opts))
	root.AddCommand(newCacheCmd(opts))
	return root
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
