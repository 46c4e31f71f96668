// Package extract resolves show entries into playable stream URLs.
//
// Every strategy is best effort: transport and parse failures are logged as
// warnings and turn into an empty result so resolution falls through to the
// next strategy. Nothing is retried.
package extract

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"wfmu/internal/httputil"
	"wfmu/internal/show"
)

// Strategy names the fallback path a stream URL came from.
type Strategy string

const (
	StrategyNone            Strategy = "none"
	StrategyPlayerPage      Strategy = "player-page"
	StrategyPlaylistFile    Strategy = "playlist-file"
	StrategySnapshotDirect  Strategy = "snapshot-direct"
	StrategySnapshotArchive Strategy = "snapshot-archive"
)

// Result is a resolved stream URL. URL is empty when nothing was found.
type Result struct {
	URL      string   `json:"url"`
	Strategy Strategy `json:"strategy"`
}

// Found reports whether a stream URL was resolved.
func (r Result) Found() bool { return r.URL != "" }

// Resolver turns player pages and playlist files into stream URLs.
type Resolver struct {
	fetcher    *httputil.Fetcher
	base       string // e.g. https://www.wfmu.org
	code       string // show code, e.g. LM
	storageURL string // e.g. https://s3.amazonaws.com/arch.wfmu.org

	// archivePattern captures the file name following "<code>/" in RTMP URLs.
	archivePattern *regexp.Regexp
}

// New creates a Resolver.
func New(fetcher *httputil.Fetcher, baseURL, code, storageURL string) *Resolver {
	return &Resolver{
		fetcher:    fetcher,
		base:       strings.TrimRight(baseURL, "/"),
		code:       code,
		storageURL: strings.TrimRight(storageURL, "/"),

		archivePattern: regexp.MustCompile(`(?:^|[/:])` + regexp.QuoteMeta(code) + `/([^/?#\s]+)`),
	}
}

// Resolve tries, in order: the player page, the playlist file, and the URLs
// already recorded in the snapshot entry.
func (r *Resolver) Resolve(ctx context.Context, e show.Entry) Result {
	logger := zerolog.Ctx(ctx).With().Str("show", e.Label()).Logger()

	if e.PopupListenURL != "" {
		if u := r.FromPlayerPage(ctx, e.PopupListenURL); u != "" {
			logger.Debug().Str("url", u).Msg("resolved from player page")
			return Result{URL: u, Strategy: StrategyPlayerPage}
		}
	}

	m3u := e.M3UURL
	if m3u == "" {
		m3u = PlaylistFileURL(r.base, e.ShowID, e.ArchiveID)
	}
	if m3u != "" {
		if u := r.FromPlaylistFile(ctx, m3u); u != "" {
			logger.Debug().Str("url", u).Msg("resolved from playlist file")
			return Result{URL: u, Strategy: StrategyPlaylistFile}
		}
	}

	if e.DirectMediaURL != "" {
		return Result{URL: e.DirectMediaURL, Strategy: StrategySnapshotDirect}
	}
	if e.MP4ListenURL != "" {
		return Result{URL: e.MP4ListenURL, Strategy: StrategySnapshotArchive}
	}

	logger.Warn().Msg("no playable URL found")
	return Result{Strategy: StrategyNone}
}

// Enrich fills the resolved URL fields of e in place: the player page URL,
// its storage-host rewrite when it is RTMP, and the playlist file's stream.
func (r *Resolver) Enrich(ctx context.Context, e *show.Entry) {
	if e.PopupListenURL != "" && e.DirectMediaURL == "" {
		e.DirectMediaURL = r.FromPlayerPage(ctx, e.PopupListenURL)
	}
	if IsRTMP(e.DirectMediaURL) && e.MP4ListenURL == "" {
		if u, ok := r.ArchiveURL(e.DirectMediaURL); ok {
			e.MP4ListenURL = u
		}
	}

	m3u := e.M3UURL
	if m3u == "" {
		m3u = PlaylistFileURL(r.base, e.ShowID, e.ArchiveID)
	}
	if m3u != "" && e.MP3ListenURL == "" {
		e.MP3ListenURL = r.FromPlaylistFile(ctx, m3u)
	}
}

// PlaylistFileURL builds the listen.m3u URL for a show/archive pair. It
// returns "" unless both identifiers are numeric.
func PlaylistFileURL(baseURL, showID, archiveID string) string {
	if httputil.ValidateNumericID(showID) != nil || httputil.ValidateNumericID(archiveID) != nil {
		return ""
	}
	q := url.Values{}
	q.Set("show", showID)
	q.Set("archive", archiveID)
	return strings.TrimRight(baseURL, "/") + "/listen.m3u?" + q.Encode()
}
