package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/naturespot/naturespot/backend/internal/services"
)

// errNotCached is returned by "cache get" so the exit status reflects a miss
var errNotCached = errors.New("no live translation cached for that key")

func newCacheCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the persistent translation cache",
	}

	cmd.AddCommand(newCacheGetCmd(opts))
	cmd.AddCommand(newCachePutCmd(opts))
	cmd.AddCommand(newCacheSweepCmd(opts))
	cmd.AddCommand(newCacheStatsCmd(opts))
	return cmd
}

// keyFlags binds --from/--to; --from defaults to the configured source
type keyFlags struct {
	source string
	target string
}

func (k *keyFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&k.source, "from", "f", "", "Source language (default: configured source)")
	cmd.Flags().StringVarP(&k.target, "to", "t", "", "Target language")
	_ = cmd.MarkFlagRequired("to")
}

func (k *keyFlags) resolve(a *app) (string, string) {
	return services.ResolveSourceLanguage(k.source, a.cfg.Translation.SourceLanguage), services.NormalizeLanguage(k.target)
}

func newCacheGetCmd(opts *cliOptions) *cobra.Command {
	var key keyFlags

	cmd := &cobra.Command{
		Use:   "get <text>",
		Short: "Show the cached translation for a text (does not count as a hit)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			source, target := key.resolve(a)
			entry, err := a.store.Lookup(cmd.Context(), args[0], source, target)
			if err != nil {
				return err
			}
			if entry == nil {
				return errNotCached
			}

			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), entry)
			}
			fmt.Fprintln(cmd.OutOrStdout(), entry.TranslatedText)
			fmt.Fprintf(cmd.ErrOrStderr(), "(usage: %d, expires: %s)\n", entry.UsageCount, entry.ExpiresAt.Format("2006-01-02 15:04"))
			return nil
		},
	}
	key.bind(cmd)
	return cmd
}

func newCachePutCmd(opts *cliOptions) *cobra.Command {
	var key keyFlags

	cmd := &cobra.Command{
		Use:   "put <text> <translation>",
		Short: "Store a translation, resetting its expiry",
		Example: `  translatectl cache put "Grey heron" "Garza real" --to es`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			source, target := key.resolve(a)
			entry, err := a.store.Upsert(cmd.Context(), args[0], source, target, args[1])
			if err != nil {
				return err
			}

			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), entry)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cached %s -> %s (usage: %d, expires: %s)\n",
				source, target, entry.UsageCount, entry.ExpiresAt.Format("2006-01-02 15:04"))
			return nil
		},
	}
	key.bind(cmd)
	return cmd
}

func newCacheSweepCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired translations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			removed, err := a.store.Sweep(cmd.Context())
			if err != nil {
				return err
			}

			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"success": true, "deleted": removed})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d expired translations\n", removed)
			return nil
		},
	}
}

func newCacheStatsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache totals and per-language counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := a.store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Total:\t%d\n", stats.TotalTranslations)
			fmt.Fprintf(w, "Active:\t%d\n", stats.ActiveTranslations)
			fmt.Fprintf(w, "Expired:\t%d\n", stats.ExpiredTranslations)
			if len(stats.LanguageStats) > 0 {
				fmt.Fprintln(w)
				fmt.Fprintln(w, "SOURCE\tTARGET\tENTRIES\tUSAGE")
				for _, ls := range stats.LanguageStats {
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", ls.SourceLanguage, ls.TargetLanguage, ls.TranslationCount, ls.TotalUsage)
				}
			}
			return w.Flush()
		},
	}
}
