// Package show defines the show entry and snapshot types shared by the
// scraper, the resolver and the player.
package show

import (
	"regexp"
	"strconv"
	"time"
)

// Entry is one archived broadcast as listed on the show's playlist page.
// URL fields are filled by different fallback paths and may overlap.
type Entry struct {
	Date           string `json:"date"`             // free-text date, e.g. "April 24, 2025"
	Title          string `json:"title"`            // bold text of the list item
	ShowID         string `json:"show_id"`          // numeric show= query value
	ArchiveID      string `json:"archive_id"`       // numeric archive= query value
	PlaylistLink   string `json:"playlist_link"`    // "See the playlist" page
	PopupListenURL string `json:"popup_listen_url"` // flashplayer.php pop-up page
	M3UURL         string `json:"m3u_url"`          // listen.m3u playlist file
	MP3ListenURL   string `json:"mp3_listen_url"`   // first stream line of the playlist file
	DirectMediaURL string `json:"direct_media_url"` // media URL found on the player page
	MP4ListenURL   string `json:"mp4_listen_url"`   // storage-host rewrite of an RTMP URL
	RawText        string `json:"raw_text"`         // list item text, for debugging
}

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

// Label is the human-readable "<date> - <title>" form.
func (e Entry) Label() string {
	if e.Title == "" {
		return e.Date
	}
	return e.Date + " - " + e.Title
}

// Year returns the four digit year of Date, or 0 when none is present.
func (e Entry) Year() int {
	m := yearPattern.FindStringSubmatch(e.Date)
	if m == nil {
		return 0
	}
	y, _ := strconv.Atoi(m[1])
	return y
}

// Snapshot is the persisted result of one scrape.
type Snapshot struct {
	LastUpdated string  `json:"last_updated"` // RFC 3339
	SourceURL   string  `json:"source_url"`
	Playlists   []Entry `json:"playlists"`
}

// NewSnapshot stamps entries with the generation time and source page.
func NewSnapshot(entries []Entry, sourceURL string, now time.Time) Snapshot {
	if entries == nil {
		entries = []Entry{}
	}
	return Snapshot{
		LastUpdated: now.Format(time.RFC3339),
		SourceURL:   sourceURL,
		Playlists:   entries,
	}
}
