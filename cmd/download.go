package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wfmu/internal/extract"
	"wfmu/internal/remux"
)

var flagDownloadDir string

var downloadCmd = &cobra.Command{
	Use:   "download N",
	Short: "Save show N to disk with ffmpeg",
	Long: `Resolve show N and copy its stream into the download directory. MP3
files are tagged with the show's date, title and playlist link.`,
	Args: cobra.ExactArgs(1),
	RunE: downloadRun,
}

func init() {
	downloadCmd.Flags().StringVarP(&flagDownloadDir, "dir", "d", "", "Download directory (default: download_dir from config)")
}

func downloadRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if flagDownloadDir != "" {
		cfg.DownloadDir = flagDownloadDir
	}
	dir, err := cfg.ExpandDownloadDir()
	if err != nil {
		return err
	}
	if err := remux.CheckAvailable(cfg.Remuxer); err != nil {
		return err
	}

	snap, err := loadSnapshot()
	if err != nil {
		return err
	}
	e, err := entryArg(snap.Playlists, args[0])
	if err != nil {
		return err
	}

	resolver := newResolver(newFetcher())
	res := resolver.Resolve(ctx, e)
	if !res.Found() {
		return fmt.Errorf("no playable URL found for %s", e.Label())
	}

	src := res.URL
	if extract.IsRTMP(src) {
		// the storage copy is a plain file; RTMP would have to be recorded live
		if u, ok := resolver.ArchiveURL(src); ok {
			src = u
		}
	}

	path, err := remux.Download(ctx, cfg.Remuxer, src, e.Label(), dir)
	if err != nil {
		return err
	}
	if err := remux.Tag(path, e); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("tagging failed")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s\n", path)
	return nil
}
