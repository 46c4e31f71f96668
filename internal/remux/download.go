package remux

import (
	"context"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"wfmu/internal/errutil"
	"wfmu/internal/httputil"
	"wfmu/internal/logutil"
	"wfmu/internal/show"
)

// Artist is written to the artist frame of downloaded files.
const Artist = "WFMU"

// outputExt picks the container for a stream: mp3 sources stay mp3.
func outputExt(streamURL string) string {
	p := streamURL
	if u, err := url.Parse(streamURL); err == nil {
		p = u.Path
	}
	if strings.EqualFold(filepath.Ext(p), ".mp3") {
		return ".mp3"
	}
	return ".mp4"
}

func downloadArgs(streamURL, title, outPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y", // overwrite output
		"-i", streamURL,
		"-c", "copy", // no re-encoding
		"-metadata", "title=" + title,
		outPath,
	}
}

// Download copies streamURL into a file named after title inside dir and
// returns its path. Partial output is removed on failure.
func Download(ctx context.Context, bin, streamURL, title, dir string) (string, error) {
	binPath, err := exec.LookPath(bin)
	if err != nil {
		return "", errors.Wrap(errutil.ErrToolMissing, bin)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(errutil.ErrFfmpeg, "resolving output directory: %v", err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return "", errors.Wrapf(errutil.ErrFfmpeg, "creating output directory: %v", err)
	}

	filename := httputil.SanitizeFilename(title) + outputExt(streamURL)
	outPath, err := httputil.SafeDownloadPath(absDir, filename)
	if err != nil {
		return "", errors.Wrapf(errutil.ErrFfmpeg, "invalid output path: %v", err)
	}

	logger := zerolog.Ctx(ctx)
	cmd := exec.CommandContext(ctx, binPath, downloadArgs(streamURL, title, outPath)...)
	cmd.Stderr = logutil.Writer(*logger, bin)

	logger.Info().Str("output", outPath).Msg("downloading")
	if err := cmd.Run(); err != nil {
		os.Remove(outPath)
		return "", errors.Wrapf(errutil.ErrFfmpeg, "download failed: %v", err)
	}
	return outPath, nil
}

// Tag writes title, artist, year and source frames into an mp3 file. Other
// files are left alone.
func Tag(path string, e show.Entry) error {
	if !strings.EqualFold(filepath.Ext(path), ".mp3") {
		return nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return errors.Wrapf(errutil.ErrTag, "opening %s: %v", path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(e.Label())
	tag.SetArtist(Artist)
	if y := e.Year(); y > 0 {
		tag.SetYear(strconv.Itoa(y))
	}
	if e.PlaylistLink != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "eng",
			Description: "playlist",
			Text:        e.PlaylistLink,
		})
	}

	if err := tag.Save(); err != nil {
		return errors.Wrapf(errutil.ErrTag, "saving %s: %v", path, err)
	}
	return nil
}
