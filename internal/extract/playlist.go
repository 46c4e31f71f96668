package extract

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// FromPlaylistFile fetches a playlist file and returns its first stream line.
func (r *Resolver) FromPlaylistFile(ctx context.Context, m3uURL string) string {
	logger := zerolog.Ctx(ctx)

	body, err := r.fetcher.Text(ctx, m3uURL)
	if err != nil {
		logger.Warn().Err(err).Str("url", m3uURL).Msg("playlist file unavailable")
		return ""
	}
	logger.Debug().Str("url", m3uURL).Str("body", body).Msg("playlist file")

	u := FirstStreamLine(strings.NewReader(body))
	if u == "" {
		logger.Warn().Str("url", m3uURL).Msg("playlist file lists no stream")
	}
	return u
}

// FirstStreamLine returns the first line that is neither blank nor a
// #-comment, trimmed.
func FirstStreamLine(r io.Reader) string {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line
	}
	return ""
}
