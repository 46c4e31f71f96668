package httputil

import (
	"path/filepath"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid HTTPS", "https://www.wfmu.org/playlists/LM", false},
		{"valid HTTP", "http://www.wfmu.org/listen.m3u?show=1&archive=2", false},
		{"rtmp rejected", "rtmp://wfmu.org/mp4:LM/lm250424.mp4", true},
		{"javascript scheme rejected", "javascript:alert(1)", true},
		{"data scheme rejected", "data:text/html,<h1>Hi</h1>", true},
		{"FTP rejected", "ftp://example.com/file", true},
		{"empty string", "", true},
		{"no host", "https://", true},
		{"valid with port", "https://example.com:8080/path", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNumericID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "151390", false},
		{"zero", "0", false},
		{"empty", "", true},
		{"letters", "abc", true},
		{"mixed", "123abc", true},
		{"negative", "-1", true},
		{"injection", "1&archive=2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNumericID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNumericID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal filename", "April 24, 2025 - Hour.mp3", "April 24, 2025 - Hour.mp3"},
		{"path traversal", "../../etc/passwd", "____etc_passwd"},
		{"slash in title", "A/B Show: Live", "A_B Show_ Live"},
		{"null bytes", "show\x00.mp3", "show.mp3"},
		{"Windows special chars", "x<>:\"|?*.mp3", "x_______.mp3"},
		{"empty string", "", "untitled"},
		{"just dots", "..", "untitled"},
		{"just dot", ".", "untitled"},
		{"whitespace", "   ", "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSafeDownloadPath(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"normal", "show.mp3", "show.mp3"},
		{"path traversal attempt", "../../etc/passwd", "____etc_passwd"},
		{"dot", ".", "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := SafeDownloadPath(dir, tt.filename)
			if err != nil {
				t.Fatalf("SafeDownloadPath() error = %v", err)
			}
			if want := filepath.Join(dir, tt.want); path != want {
				t.Errorf("SafeDownloadPath() = %q, want %q", path, want)
			}
		})
	}
}

func TestQueryValue(t *testing.T) {
	tests := []struct {
		url  string
		key  string
		want string
	}{
		{"https://www.wfmu.org/flashplayer.php?version=3&show=151390&archive=269366", "show", "151390"},
		{"https://www.wfmu.org/flashplayer.php?version=3&show=151390&archive=269366", "archive", "269366"},
		{"/listen.m3u?show=1", "archive", ""},
		{"%zz", "show", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url+"/"+tt.key, func(t *testing.T) {
			if got := QueryValue(tt.url, tt.key); got != tt.want {
				t.Errorf("QueryValue() = %q, want %q", got, tt.want)
			}
		})
	}
}
