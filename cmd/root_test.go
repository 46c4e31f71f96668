package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"wfmu/internal/config"
	"wfmu/internal/errutil"
	"wfmu/internal/show"
	"wfmu/internal/snapshot"
)

const listingPage = `<html><body><ul>
<li><b>Hour of Power:</b> April 24, 2025
  <a href="/playlists/shows/151390">See the playlist</a>
  <a href="/listen.m3u?show=151390&amp;archive=269366">MP3 - 128K</a>
  <a href="/flashplayer.php?version=3&amp;show=151390&amp;archive=269366">Pop-up</a></li>
<li>Not a show</li>
<li><b>Older</b> April 25, 2024</li>
</ul></body></html>`

func TestEntryArg(t *testing.T) {
	entries := []show.Entry{{Date: "April 24, 2025"}, {Date: "April 17, 2025"}}

	tests := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{"1", "April 24, 2025", false},
		{" 2 ", "April 17, 2025", false},
		{"0", "", true},
		{"3", "", true},
		{"two", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := entryArg(entries, tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("entryArg() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Date != tt.want {
				t.Errorf("entryArg() = %q, want %q", got.Date, tt.want)
			}
		})
	}
}

func TestScrapeOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/playlists/LM":
			w.Write([]byte(listingPage))
		case "/archiveplayer/":
			w.Write([]byte(`<audio src="rtmp://host/mp4:LM/lm250424.mp4"></audio>`))
		case "/listen.m3u":
			w.Write([]byte("#EXTM3U\nhttps://example.com/stream.mp3\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg = config.Default()
	cfg.BaseURL = srv.URL
	cfg.StorageURL = "https://archive.example.org"
	cfg.Snapshot = filepath.Join(t.TempDir(), "snap.json")
	cfg.RequestInterval = 0
	cfg.CutoffYear = 2024
	cfg.Resolve = true

	n, path, err := scrapeOnce(context.Background())
	if err != nil {
		t.Fatalf("scrapeOnce() error: %v", err)
	}
	if n != 1 || path != cfg.Snapshot {
		t.Errorf("scrapeOnce() = %d, %q; want 1, %q", n, path, cfg.Snapshot)
	}

	snap, err := snapshot.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if snap.SourceURL != srv.URL+"/playlists/LM" {
		t.Errorf("SourceURL = %q", snap.SourceURL)
	}

	want := show.Entry{
		Date:           "April 24, 2025",
		Title:          "Hour of Power",
		ShowID:         "151390",
		ArchiveID:      "269366",
		PlaylistLink:   srv.URL + "/playlists/shows/151390",
		PopupListenURL: srv.URL + "/flashplayer.php?version=3&show=151390&archive=269366",
		M3UURL:         srv.URL + "/listen.m3u?show=151390&archive=269366",
		MP3ListenURL:   "https://example.com/stream.mp3",
		DirectMediaURL: "rtmp://host/mp4:LM/lm250424.mp4",
		MP4ListenURL:   "https://archive.example.org/LM/lm250424.mp4",
		RawText:        "Hour of Power: April 24, 2025 See the playlist MP3 - 128K Pop-up",
	}
	if diff := cmp.Diff([]show.Entry{want}, snap.Playlists); diff != "" {
		t.Errorf("snapshot entries mismatch (-want +got):\n%s", diff)
	}
}

func TestScrapeOnceFetchFailureWritesNothing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	cfg = config.Default()
	cfg.BaseURL = srv.URL
	cfg.Snapshot = filepath.Join(t.TempDir(), "snap.json")
	cfg.RequestInterval = 0

	if _, _, err := scrapeOnce(context.Background()); err == nil {
		t.Fatal("scrapeOnce() should fail on a 404 listing page")
	}
	if _, err := os.Stat(cfg.Snapshot); !os.IsNotExist(err) {
		t.Errorf("snapshot written despite failure: %v", err)
	}
}

// runCLI executes the command tree with args and returns what it printed.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		flagPlayer, flagSnapshot, flagShow, flagDebug = "", "", "", false
	})

	err = execute(context.Background())
	return out.String(), errOut.String(), err
}

// fakeTools puts executable stand-ins for names on an otherwise empty PATH.
func fakeTools(t *testing.T, names ...string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PATH", dir)
}

func TestPlayMissingToolReportedOnce(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, stderr, err := runCLI(t, "play", "--snapshot", filepath.Join(t.TempDir(), "snap.json"))
	if !errors.Is(err, errutil.ErrToolMissing) {
		t.Fatalf("execute() error = %v, want ErrToolMissing", err)
	}
	if got := strings.Count(stderr, "Error:"); got != 1 {
		t.Errorf("error printed %d times, want 1:\n%s", got, stderr)
	}
	if !strings.Contains(stderr, "mpv: required tool not found in PATH") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestPlayMissingRemuxer(t *testing.T) {
	fakeTools(t, "vlc")

	_, stderr, err := runCLI(t, "play", "--player", "VLC", "--snapshot", filepath.Join(t.TempDir(), "snap.json"))
	if !errors.Is(err, errutil.ErrToolMissing) {
		t.Fatalf("execute() error = %v, want ErrToolMissing", err)
	}
	if !strings.Contains(stderr, "ffmpeg: required tool not found in PATH") {
		t.Errorf("stderr = %q, want the remuxer reported", stderr)
	}
	if cfg.Player != "vlc" {
		t.Errorf("player = %q, want vlc", cfg.Player)
	}
}

func TestPlayMissingSnapshot(t *testing.T) {
	fakeTools(t, "mpv", "ffmpeg")

	stdout, stderr, err := runCLI(t, "play", "--snapshot", filepath.Join(t.TempDir(), "snap.json"))
	if err != nil {
		t.Fatalf("execute() error: %v", err)
	}
	if !strings.Contains(stdout, "No playlists found.") {
		t.Errorf("stdout = %q", stdout)
	}
	if strings.Contains(stderr, "Error:") {
		t.Errorf("missing snapshot reported as an error:\n%s", stderr)
	}
}
