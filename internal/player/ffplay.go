package player

import (
	"context"
	"sync"
)

// FFplay implements the Player interface for ffplay without a window.
// ffplay has no control channel, so pause suspends the process with job
// control signals and Position is wall-clock time.
type FFplay struct {
	// Bin overrides the binary, "ffplay" when empty.
	Bin string
}

func (f *FFplay) bin() string {
	if f.Bin != "" {
		return f.Bin
	}
	return "ffplay"
}

func (f *FFplay) Name() string { return "ffplay" }

func (f *FFplay) Available() bool { return available(f.bin()) }

func ffplayArgs(url string) []string {
	return []string{
		"-nodisp",
		"-autoexit",
		"-loglevel", "warning",
		url,
	}
}

// Start launches ffplay.
func (f *FFplay) Start(ctx context.Context, url, title string) (Handle, error) {
	h := &ffplayHandle{process: newProcess(ctx, f.bin(), ffplayArgs(url))}
	if err := h.start(); err != nil {
		return nil, err
	}
	return h, nil
}

type ffplayHandle struct {
	*process

	mu     sync.Mutex
	paused bool

	closeOnce sync.Once
}

func (h *ffplayHandle) TogglePause() (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := suspend(h.cmd.Process, !h.paused); err != nil {
		return h.paused, err
	}
	h.paused = !h.paused
	h.clock.setPaused(h.paused)
	return h.paused, nil
}

func (h *ffplayHandle) Stop() error {
	h.stopping.Store(true)
	return h.cmd.Process.Kill()
}

func (h *ffplayHandle) Close() error {
	h.closeOnce.Do(func() {
		h.terminate(func() error {
			h.mu.Lock()
			paused := h.paused
			h.mu.Unlock()
			if paused {
				_ = suspend(h.cmd.Process, false)
			}
			return h.cmd.Process.Kill()
		})
	})
	return nil
}

func (h *ffplayHandle) Position() float64 { return h.clock.elapsed() }
