package player

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"

	"wfmu/internal/errutil"
)

// VLC implements the Player interface for VLC media player, driven through
// its rc interface on stdin. VLC reports no position over rc without
// polling, so Position is wall-clock time.
type VLC struct {
	// Bin overrides the binary, "vlc" when empty.
	Bin string
}

func (v *VLC) bin() string {
	if v.Bin != "" {
		return v.Bin
	}
	return "vlc"
}

func (v *VLC) Name() string { return "vlc" }

func (v *VLC) Available() bool { return available(v.bin()) }

func vlcArgs(url, title string) []string {
	return []string{
		"-I", "rc",
		"--no-video",
		"--play-and-exit",
		"--meta-title", title,
		url,
	}
}

// Start launches VLC with its rc interface bound to a stdin pipe.
func (v *VLC) Start(ctx context.Context, url, title string) (Handle, error) {
	h := &vlcHandle{process: newProcess(ctx, v.bin(), vlcArgs(url, title))}

	stdin, err := h.cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrapf(errutil.ErrPlayer, "vlc stdin: %v", err)
	}
	h.stdin = stdin

	if err := h.start(); err != nil {
		return nil, err
	}
	return h, nil
}

type vlcHandle struct {
	*process

	mu     sync.Mutex
	stdin  io.WriteCloser
	paused bool

	closeOnce sync.Once
}

func (h *vlcHandle) command(cmd string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := io.WriteString(h.stdin, cmd+"\n"); err != nil {
		return errors.Wrapf(errutil.ErrPlayer, "vlc %s: %v", cmd, err)
	}
	return nil
}

func (h *vlcHandle) TogglePause() (bool, error) {
	if err := h.command("pause"); err != nil {
		return false, err
	}
	h.mu.Lock()
	h.paused = !h.paused
	paused := h.paused
	h.mu.Unlock()
	h.clock.setPaused(paused)
	return paused, nil
}

func (h *vlcHandle) Stop() error {
	h.stopping.Store(true)
	return h.command("stop")
}

func (h *vlcHandle) Close() error {
	h.closeOnce.Do(func() {
		h.terminate(func() error { return h.command("quit") })
		h.stdin.Close()
	})
	return nil
}

func (h *vlcHandle) Position() float64 { return h.clock.elapsed() }
