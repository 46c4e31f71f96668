// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wfmu/internal/config"
	"wfmu/internal/extract"
	"wfmu/internal/httputil"
	"wfmu/internal/logutil"
	"wfmu/internal/show"
	"wfmu/internal/snapshot"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagPlayer   string
	flagSnapshot string
	flagShow     string
	flagDebug    bool
)

// cfg holds the loaded configuration (merged: defaults < config file < env < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "wfmu",
	Short: "Scrape and play WFMU show archives from the terminal",
	Long: `wfmu scrapes a WFMU show's playlist page into a JSON snapshot and plays
archived episodes through mpv, vlc or ffplay with single-key controls.

Run "wfmu scrape" once, then "wfmu" to pick a show and listen.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              playRun,
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// execute runs the command tree and reports a failure once on stderr.
func execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Media player: mpv | vlc | ffplay")
	rootCmd.PersistentFlags().StringVar(&flagSnapshot, "snapshot", "", "Snapshot file (default: $XDG_DATA_HOME/wfmu/<show>_playlists.json)")
	rootCmd.PersistentFlags().StringVar(&flagShow, "show", "", "Show code on wfmu.org, e.g. LM")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration, then puts the logger into the
// command context.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file and environment values
	if flagPlayer != "" {
		cfg.Player = flagPlayer
	}
	if flagSnapshot != "" {
		cfg.Snapshot = flagSnapshot
	}
	if flagShow != "" {
		cfg.Show = flagShow
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logutil.New(os.Stderr, cfg.Debug)
	zerolog.DefaultContextLogger = &logger
	cmd.SetContext(logger.WithContext(cmd.Context()))

	return nil
}

func newFetcher() *httputil.Fetcher {
	client := httputil.NewClient(cfg.Timeout)
	return httputil.NewFetcher(client, cfg.UserAgent, strings.TrimRight(cfg.BaseURL, "/")+"/", cfg.RequestInterval)
}

func newResolver(fetcher *httputil.Fetcher) *extract.Resolver {
	return extract.New(fetcher, cfg.BaseURL, cfg.Show, cfg.StorageURL)
}

func loadSnapshot() (show.Snapshot, error) {
	path, err := cfg.SnapshotPath()
	if err != nil {
		return show.Snapshot{}, err
	}
	return snapshot.Load(path)
}

// entryArg picks the entry named by a 1-based menu number.
func entryArg(entries []show.Entry, arg string) (show.Entry, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return show.Entry{}, fmt.Errorf("show number must be an integer, got %q", arg)
	}
	if n < 1 || n > len(entries) {
		return show.Entry{}, fmt.Errorf("show number %d out of range (1-%d)", n, len(entries))
	}
	return entries[n-1], nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wfmu %s\n", Version)
	},
}
