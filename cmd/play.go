package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"wfmu/internal/errutil"
	"wfmu/internal/player"
	"wfmu/internal/playback"
	"wfmu/internal/remux"
	"wfmu/internal/ui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Pick a show from the snapshot and play it (default)",
	Long: `Show the numbered list of archived episodes, resolve the chosen one and
play it. While playing: p pauses or resumes, s stops, q returns to the list.`,
	Args: cobra.NoArgs,
	RunE: playRun,
}

func playRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	p := player.New(cfg.Player)
	if !p.Available() {
		return errors.Wrap(errutil.ErrToolMissing, p.Name())
	}
	if err := remux.CheckAvailable(cfg.Remuxer); err != nil {
		return err
	}

	snap, err := loadSnapshot()
	if errors.Is(err, errutil.ErrSnapshotMissing) {
		fmt.Fprintln(out, "No playlists found. Run \"wfmu scrape\" first.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	d := &playback.Driver{
		Resolver: newResolver(newFetcher()),
		Player:   p,
		Remux: func(ctx context.Context, url string) (playback.Remuxed, error) {
			s, err := remux.Start(ctx, cfg.Remuxer, url, cfg.RemuxWarmup)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		Console:  ui.NewConsole(os.Stdin),
		Out:      out,
		RTMPMode: cfg.RTMPMode,
		Poll:     playback.DefaultPoll,
	}

	err = d.Run(ctx, snap.Playlists)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(out, "\nQuitting...")
		return nil
	}
	return err
}
