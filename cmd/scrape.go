package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wfmu/internal/errutil"
	"wfmu/internal/provider"
	"wfmu/internal/snapshot"
)

var (
	flagMax        int
	flagCutoffYear int
	flagResolve    bool
	flagEvery      time.Duration
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the show's playlist page into the snapshot",
	Long: `Fetch the show's playlist page, parse its archived episodes and write them
to the JSON snapshot. With --resolve every entry's stream URLs are looked up
as well, one request at a time.`,
	Args: cobra.NoArgs,
	RunE: scrapeRun,
}

func init() {
	scrapeCmd.Flags().IntVar(&flagMax, "max", 0, "Stop after this many entries (0: no limit)")
	scrapeCmd.Flags().IntVar(&flagCutoffYear, "cutoff-year", 0, "Stop at the first entry dated in or before this year (0: no cutoff)")
	scrapeCmd.Flags().BoolVar(&flagResolve, "resolve", false, "Resolve stream URLs for every entry")
	scrapeCmd.Flags().DurationVar(&flagEvery, "every", 0, "Scrape again on this interval until interrupted")
}

func scrapeRun(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("max") {
		cfg.MaxEntries = flagMax
	}
	if flags.Changed("cutoff-year") {
		cfg.CutoffYear = flagCutoffYear
	}
	if flags.Changed("resolve") {
		cfg.Resolve = flagResolve
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if flagEvery > 0 {
		return scrapeEvery(cmd.Context(), flagEvery)
	}

	n, path, err := scrapeOnce(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d shows to %s\n", n, path)
	return nil
}

// scrapeOnce fetches, optionally resolves, and writes the snapshot. Nothing is
// written when the listing page cannot be fetched.
func scrapeOnce(ctx context.Context) (int, string, error) {
	logger := zerolog.Ctx(ctx)
	fetcher := newFetcher()

	p, err := provider.NewWFMU(cfg.BaseURL, cfg.Show, fetcher)
	if err != nil {
		return 0, "", err
	}

	entries, err := p.Entries(ctx, provider.Options{
		CutoffYear: cfg.CutoffYear,
		MaxEntries: cfg.MaxEntries,
	})
	if err != nil {
		logger.Debug().Msgf("%+v", err)
		return 0, "", fmt.Errorf("scraping %s: %w", p.SourceURL(), err)
	}
	logger.Info().Int("entries", len(entries)).Str("url", p.SourceURL()).Msg("scraped listing")

	if cfg.Resolve {
		r := newResolver(fetcher)
		for i := range entries {
			if err := ctx.Err(); err != nil {
				return 0, "", err
			}
			r.Enrich(ctx, &entries[i])
			logger.Debug().Str("show", entries[i].Label()).Msg("resolved")
		}
	}

	path, err := cfg.SnapshotPath()
	if err != nil {
		return 0, "", err
	}
	if err := snapshot.Save(path, snapshot.New(entries, p.SourceURL(), time.Now().UTC())); err != nil {
		return 0, "", fmt.Errorf("saving snapshot: %w", err)
	}
	logger.Info().Str("path", path).Msg("snapshot written")
	return len(entries), path, nil
}

// scrapeEvery runs scrapeOnce on a schedule until ctx is canceled. A slow run
// never overlaps the next one.
func scrapeEvery(ctx context.Context, every time.Duration) error {
	scheduler := gocron.NewScheduler(time.Local)
	scheduler.SingletonModeAll()

	job := func(ctx context.Context, job gocron.Job) {
		ctx = zerolog.Ctx(ctx).With().
			Int("job_count", job.RunCount()).
			Str("job", "scrape").
			Logger().WithContext(ctx)

		zerolog.Ctx(ctx).Info().Msg("job start")
		if _, _, err := scrapeOnce(ctx); err != nil {
			zerolog.Ctx(ctx).Error().Msgf("%+v", err)
		}
	}
	if _, err := scheduler.Every(every).DoWithJobDetails(job, ctx); err != nil {
		return errors.Wrap(errutil.ErrScheduler, err.Error())
	}

	scheduler.StartAsync()
	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("interrupt")
	scheduler.Stop()

	return nil
}
