// Package player launches external media players and controls them while
// they run. All player invocations use exec.Command with explicit argument
// slices, never a shell.
package player

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Player is the interface for media player implementations.
type Player interface {
	// Name returns the player name.
	Name() string

	// Available checks if the player binary exists in PATH.
	Available() bool

	// Start begins playback of url in the background.
	Start(ctx context.Context, url, title string) (Handle, error)
}

// Handle controls one running player process.
type Handle interface {
	// TogglePause flips between paused and playing and reports the new state.
	TogglePause() (paused bool, err error)

	// Stop ends playback. The process may linger until Close.
	Stop() error

	// Close quits the player and releases everything it holds.
	Close() error

	// Done is closed when the player process exits.
	Done() <-chan struct{}

	// Err is the reason the player exited on its own, or nil. Only
	// meaningful once Done is closed.
	Err() error

	// Position is the playback position in seconds, 0 if unknown.
	Position() float64
}

// New creates a player by name, ignoring case.
func New(name string) Player {
	switch strings.ToLower(name) {
	case "mpv":
		return &MPV{}
	case "vlc":
		return &VLC{}
	case "ffplay":
		return &FFplay{}
	default:
		return &MPV{} // Default to mpv
	}
}

func available(bin string) bool {
	_, err := exec.LookPath(bin)
	return err == nil
}

// FormatDuration formats seconds as H:MM:SS, or M:SS under an hour.
func FormatDuration(seconds float64) string {
	s := int(seconds)
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
