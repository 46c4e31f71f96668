package provider

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"wfmu/internal/extract"
	"wfmu/internal/httputil"
	"wfmu/internal/show"
)

// LinkKind buckets an anchor found inside a listing entry.
type LinkKind int

const (
	LinkNone     LinkKind = iota
	LinkPlaylist          // "See the playlist"
	LinkStream            // "MP3 - 128K" playlist file
	LinkPopup             // "Pop-up" flash player page
)

func (k LinkKind) String() string {
	switch k {
	case LinkPlaylist:
		return "playlist"
	case LinkStream:
		return "stream"
	case LinkPopup:
		return "popup"
	default:
		return "none"
	}
}

// datePattern matches "Month Day[,] Year".
var datePattern = regexp.MustCompile(`([A-Za-z]+ \d+,? \d{4})`)

// trailingPunct is trimmed from the end of titles.
const trailingPunct = " \t:;,.-–—|"

// parseEntries walks every list item in page order and keeps the ones whose
// text carries a date. Nothing here fails: malformed items are skipped.
func parseEntries(doc *goquery.Document, base *url.URL, opts Options) []show.Entry {
	var entries []show.Entry

	doc.Find("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		// containers of other list items are not entries themselves
		if li.Find("li").Length() > 0 {
			return true
		}

		text := collapseSpace(li.Text())
		m := datePattern.FindStringSubmatch(text)
		if m == nil {
			return true
		}

		entry := show.Entry{
			Date:    m[1],
			Title:   parseTitle(li),
			RawText: text,
		}

		if opts.CutoffYear > 0 && entry.Year() <= opts.CutoffYear {
			return false
		}

		classifyLinks(li, base, &entry)
		entries = append(entries, entry)

		return opts.MaxEntries <= 0 || len(entries) < opts.MaxEntries
	})

	return entries
}

// parseTitle returns the bold text of an entry without nested links and
// trailing punctuation.
func parseTitle(li *goquery.Selection) string {
	bold := li.Find("b").First()
	if bold.Length() == 0 {
		return ""
	}
	bold = bold.Clone()
	bold.Find("a").Remove()
	return strings.TrimRight(collapseSpace(bold.Text()), trailingPunct)
}

// classifyLink buckets an anchor by its label and href. First rule wins.
func classifyLink(text, href string) LinkKind {
	switch {
	case strings.Contains(text, "See the playlist"):
		return LinkPlaylist
	case text == "MP3 - 128K" && strings.HasSuffix(hrefPath(href), ".m3u"):
		return LinkStream
	case strings.Contains(text, "Pop-up") && strings.Contains(href, "flashplayer.php"):
		return LinkPopup
	default:
		return LinkNone
	}
}

// classifyLinks fills the link fields of entry from the anchors of li. The
// first link of each kind is kept.
func classifyLinks(li *goquery.Selection, base *url.URL, entry *show.Entry) {
	li.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		href = strings.TrimSpace(href)

		var field *string
		switch classifyLink(collapseSpace(a.Text()), href) {
		case LinkPlaylist:
			field = &entry.PlaylistLink
		case LinkStream:
			field = &entry.M3UURL
		case LinkPopup:
			field = &entry.PopupListenURL
		default:
			return
		}
		if *field != "" {
			return
		}
		*field = absoluteURL(base, href)
	})

	for _, src := range []string{entry.M3UURL, entry.PopupListenURL} {
		if entry.ShowID != "" && entry.ArchiveID != "" {
			break
		}
		if id := httputil.QueryValue(src, "show"); entry.ShowID == "" && httputil.ValidateNumericID(id) == nil {
			entry.ShowID = id
		}
		if id := httputil.QueryValue(src, "archive"); entry.ArchiveID == "" && httputil.ValidateNumericID(id) == nil {
			entry.ArchiveID = id
		}
	}

	if entry.M3UURL == "" && entry.PopupListenURL != "" {
		entry.M3UURL = extract.PlaylistFileURL(base.String(), entry.ShowID, entry.ArchiveID)
	}
}

func absoluteURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func hrefPath(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	return path.Clean("/" + u.Path)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FormatDisplayTitle creates the numbered menu line for an entry (1-based).
func FormatDisplayTitle(i int, e show.Entry) string {
	return fmt.Sprintf("%d. %s", i+1, e.Label())
}
