package extract

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"wfmu/internal/errutil"
	"wfmu/internal/httputil"
)

// scriptURLPattern finds literal stream URLs inside script bodies.
var scriptURLPattern = regexp.MustCompile(`(?i)(?:https?|rtmp[ts]?)://[^\s'"<>\\]+`)

// mediaExtensions are the path suffixes accepted for script URLs.
var mediaExtensions = []string{".mp3", ".mp4", ".m4a", ".aac", ".ogg", ".m3u", ".m3u8"}

// PlayerURL maps a flashplayer.php pop-up URL onto the archive player page
// that still serves the stream data. Other URLs are returned unchanged.
func (r *Resolver) PlayerURL(popupURL string) string {
	if !strings.Contains(popupURL, "flashplayer.php") {
		return popupURL
	}
	showID := httputil.QueryValue(popupURL, "show")
	archiveID := httputil.QueryValue(popupURL, "archive")
	if httputil.ValidateNumericID(showID) != nil || httputil.ValidateNumericID(archiveID) != nil {
		return popupURL
	}
	q := url.Values{}
	q.Set("show", showID)
	q.Set("archive", archiveID)
	return r.base + "/archiveplayer/?" + q.Encode()
}

// FromPlayerPage fetches the player page behind popupURL and extracts the
// media URL it embeds. Returns "" when nothing usable is found.
func (r *Resolver) FromPlayerPage(ctx context.Context, popupURL string) string {
	logger := zerolog.Ctx(ctx)
	pageURL := r.PlayerURL(popupURL)

	doc, err := r.fetcher.Document(ctx, pageURL)
	if err != nil {
		logger.Warn().Err(err).Str("url", pageURL).Msg("player page unavailable")
		return ""
	}

	u := ExtractMediaURL(ctx, doc)
	if u == "" {
		logger.Warn().Str("url", pageURL).Msg("no media URL on player page")
	}
	return u
}

// ExtractMediaURL searches a player page for a media URL: a hidden field
// holding the player's JSON configuration, then media element attributes,
// then literal URLs in scripts. The first hit is returned verbatim.
// Unparseable JSON configurations are logged and skipped.
func ExtractMediaURL(ctx context.Context, doc *goquery.Document) string {
	if u := fromHiddenJSON(ctx, doc); u != "" {
		return u
	}
	if u := fromMediaElements(doc); u != "" {
		return u
	}
	return fromScripts(doc)
}

func fromHiddenJSON(ctx context.Context, doc *goquery.Document) string {
	var found string
	doc.Find(`textarea, input[type="hidden"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := s.Text()
		if goquery.NodeName(s) == "input" {
			raw = s.AttrOr("value", "")
		}
		raw = strings.TrimSpace(raw)
		if !strings.HasPrefix(raw, "{") {
			return true
		}

		var cfg map[string]any
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			zerolog.Ctx(ctx).Warn().Err(errors.Wrap(errutil.ErrJSONDecode, err.Error())).
				Str("field", goquery.NodeName(s)).Msg("skipping player config")
			return true
		}
		audio, ok := cfg["audio"]
		if !ok {
			return true
		}
		if u := findURL(audio); isStreamURL(u) {
			found = u
			return false
		}
		return true
	})
	return found
}

// findURL returns the first string under a "url" key, searching v depth first.
// Object keys are visited in sorted order so the result is stable.
func findURL(v any) string {
	switch t := v.(type) {
	case map[string]any:
		if s, ok := t["url"].(string); ok && s != "" {
			return strings.TrimSpace(s)
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if u := findURL(t[k]); u != "" {
				return u
			}
		}
	case []any:
		for _, item := range t {
			if u := findURL(item); u != "" {
				return u
			}
		}
	}
	return ""
}

func fromMediaElements(doc *goquery.Document) string {
	var found string
	doc.Find("source, audio, video").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, attr := range []string{"src", "data-url"} {
			if u := strings.TrimSpace(s.AttrOr(attr, "")); isStreamURL(u) {
				found = u
				return false
			}
		}
		return true
	})
	return found
}

func fromScripts(doc *goquery.Document) string {
	var found string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, u := range scriptURLPattern.FindAllString(s.Text(), -1) {
			if IsRTMP(u) || hasMediaExtension(u) {
				found = u
				return false
			}
		}
		return true
	})
	return found
}

func isStreamURL(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || IsRTMP(u)
}

func hasMediaExtension(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)
	for _, ext := range mediaExtensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}
