package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naturespot/naturespot/backend/internal/models"
	"github.com/naturespot/naturespot/backend/internal/services"
)

func newTranslateCmd(opts *cliOptions) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "translate <text>",
		Short: "Translate text through the cache and provider chain",
		Long: `Translate text exactly as POST /translate would: cache first, then each
configured provider in order, then the mock fallback.

Examples:
  translatectl translate "Common kingfisher perched over the river" --to es
  translatectl translate "Red fox" --to fr -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			if code := services.NormalizeLanguage(target); !models.IsSupportedLanguage(code) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %q is not one of the app's languages\n", target)
			}

			providers, err := services.BuildProviders(a.cfg)
			if err != nil {
				return err
			}
			translations := services.NewTranslationService(providers, a.store, nil, services.TranslationServiceOptions{
				SourceLanguage: a.cfg.Translation.SourceLanguage,
				ChunkDelay:     a.cfg.Translation.ChunkDelay,
			})

			result, err := translations.Translate(cmd.Context(), models.TranslationRequest{
				Text:           args[0],
				TargetLanguage: target,
			})
			if err != nil {
				return err
			}

			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			if result.IsMock() {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning: every provider failed, showing a placeholder")
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.TranslatedText)
			fmt.Fprintf(cmd.ErrOrStderr(), "(%s -> %s, service: %s, cached: %t)\n",
				result.SourceLanguage, result.TargetLanguage, result.Service, result.Cached)
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "to", "t", "", "Target language code (e.g. es, fr, de)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
