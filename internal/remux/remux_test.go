package remux

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/bogem/id3v2"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"wfmu/internal/errutil"
	"wfmu/internal/show"
)

// fakeFFmpeg writes an executable script standing in for ffmpeg. The script
// body sees the output path as $last.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\nfor last; do :; done\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckAvailable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh in PATH")
	}
	if err := CheckAvailable("sh"); err != nil {
		t.Errorf("CheckAvailable(sh) error: %v", err)
	}

	err := CheckAvailable("sh", "wfmu-no-such-tool")
	if !errors.Is(err, errutil.ErrToolMissing) {
		t.Fatalf("CheckAvailable() error = %v, want ErrToolMissing", err)
	}
	if got, want := err.Error(), "wfmu-no-such-tool: required tool not found in PATH"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}

func TestRemuxArgs(t *testing.T) {
	got := remuxArgs("rtmp://host/mp4:LM/lm250424.mp4", "/tmp/x/stream.mp4")
	want := []string{
		"-hide_banner", "-nostdin",
		"-rtmp_live", "live",
		"-i", "rtmp://host/mp4:LM/lm250424.mp4",
		"-c", "copy",
		"-f", "mp4",
		"-movflags", "frag_keyframe+empty_moov",
		"/tmp/x/stream.mp4",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("remuxArgs() mismatch (-want +got):\n%s", diff)
	}
}

func TestStartAndClose(t *testing.T) {
	bin := fakeFFmpeg(t, `echo data > "$last"
exec sleep 30`)

	s, err := Start(context.Background(), bin, "rtmp://host/mp4:LM/lm250424.mp4", 200*time.Millisecond)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if filepath.Base(s.Path()) != "stream.mp4" {
		t.Errorf("Path() = %q, want .../stream.mp4", s.Path())
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Errorf("remux output missing after warmup: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(s.Path())); !os.IsNotExist(err) {
		t.Errorf("temp dir still present after Close(): %v", err)
	}
	select {
	case <-s.done:
	default:
		t.Error("remuxer still running after Close()")
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

func TestStartFailsDuringWarmup(t *testing.T) {
	bin := fakeFFmpeg(t, `echo "Connection refused" >&2
exit 1`)

	_, err := Start(context.Background(), bin, "rtmp://host/mp4:LM/x.mp4", 5*time.Second)
	if !errors.Is(err, errutil.ErrFfmpeg) {
		t.Errorf("Start() error = %v, want ErrFfmpeg", err)
	}
}

func TestStartCanceled(t *testing.T) {
	bin := fakeFFmpeg(t, `exec sleep 30`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := Start(ctx, bin, "rtmp://host/mp4:LM/x.mp4", 10*time.Second)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Start() error = %v, want deadline exceeded", err)
	}
}

func TestStartMissingTool(t *testing.T) {
	_, err := Start(context.Background(), "wfmu-no-such-ffmpeg", "rtmp://host/x", time.Millisecond)
	if !errors.Is(err, errutil.ErrToolMissing) {
		t.Errorf("Start() error = %v, want ErrToolMissing", err)
	}
}

func TestOutputExt(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/stream.mp3", ".mp3"},
		{"https://example.com/STREAM.MP3?x=1", ".mp3"},
		{"https://example.com/LM/lm250424.mp4", ".mp4"},
		{"rtmp://host/mp4:LM/lm250424.mp4", ".mp4"},
		{"https://example.com/listen", ".mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := outputExt(tt.url); got != tt.want {
				t.Errorf("outputExt(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestDownload(t *testing.T) {
	bin := fakeFFmpeg(t, `echo audio > "$last"`)
	dir := filepath.Join(t.TempDir(), "downloads")

	got, err := Download(context.Background(), bin, "https://example.com/stream.mp3", "A/B Show: Live", dir)
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	if want := filepath.Join(dir, "A_B Show_ Live.mp3"); got != want {
		t.Errorf("Download() = %q, want %q", got, want)
	}
	if _, err := os.Stat(got); err != nil {
		t.Errorf("downloaded file missing: %v", err)
	}
}

func TestDownloadRemovesPartialOutput(t *testing.T) {
	bin := fakeFFmpeg(t, `echo partial > "$last"
exit 1`)
	dir := t.TempDir()

	_, err := Download(context.Background(), bin, "https://example.com/LM/lm250424.mp4", "Hour of Power", dir)
	if !errors.Is(err, errutil.ErrFfmpeg) {
		t.Fatalf("Download() error = %v, want ErrFfmpeg", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Hour of Power.mp4")); !os.IsNotExist(err) {
		t.Errorf("partial download left behind: %v", err)
	}
}

func TestTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.mp3")
	if err := os.WriteFile(path, []byte("not really audio"), 0644); err != nil {
		t.Fatal(err)
	}

	e := show.Entry{
		Date:         "April 24, 2025",
		Title:        "Hour of Power",
		PlaylistLink: "https://www.wfmu.org/playlists/shows/151390",
	}
	if err := Tag(path, e); err != nil {
		t.Fatalf("Tag() error: %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()

	if got := tag.Title(); got != "April 24, 2025 - Hour of Power" {
		t.Errorf("Title() = %q", got)
	}
	if got := tag.Artist(); got != Artist {
		t.Errorf("Artist() = %q, want %q", got, Artist)
	}
	if got := tag.Year(); got != "2025" {
		t.Errorf("Year() = %q, want 2025", got)
	}
	if got := len(tag.GetFrames(tag.CommonID("Comments"))); got != 1 {
		t.Errorf("expected 1 comment frame, got %d", got)
	}
}

func TestTagSkipsNonMP3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.mp4")
	content := []byte("mp4 data")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	if err := Tag(path, show.Entry{Title: "x"}); err != nil {
		t.Fatalf("Tag() error: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Error("Tag() modified a non-mp3 file")
	}
}
