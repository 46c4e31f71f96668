package player

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"wfmu/internal/errutil"
)

// MPV implements the Player interface for mpv.
// Control goes through mpv's JSON IPC on a Unix socket at a randomized
// temp path.
type MPV struct {
	// Bin overrides the binary, "mpv" when empty.
	Bin string
}

func (m *MPV) bin() string {
	if m.Bin != "" {
		return m.Bin
	}
	return "mpv"
}

func (m *MPV) Name() string { return "mpv" }

func (m *MPV) Available() bool { return available(m.bin()) }

func mpvArgs(url, title, socketPath string) []string {
	return []string{
		url,
		"--no-video",
		"--no-terminal",
		"--force-media-title=" + title,
		"--input-ipc-server=" + socketPath,
	}
}

// Start launches mpv and connects to its IPC socket in the background.
func (m *MPV) Start(ctx context.Context, url, title string) (Handle, error) {
	socketDir, err := os.MkdirTemp("", "wfmu-mpv-*")
	if err != nil {
		return nil, errors.Wrapf(errutil.ErrPlayer, "creating temp dir for mpv socket: %v", err)
	}
	socketPath := filepath.Join(socketDir, "socket")

	h := &mpvHandle{
		process:   newProcess(ctx, m.bin(), mpvArgs(url, title, socketPath)),
		socketDir: socketDir,
		logger:    zerolog.Ctx(ctx),
	}
	// mpv exits with 4 when quit by signal or the user
	h.exitOK = func(e *exec.ExitError) bool { return e.ExitCode() == 4 }

	if err := h.start(); err != nil {
		os.RemoveAll(socketDir)
		return nil, err
	}
	go h.connect(socketPath)
	return h, nil
}

type mpvHandle struct {
	*process
	socketDir string
	logger    *zerolog.Logger

	mu     sync.Mutex
	conn   net.Conn
	paused bool
	pos    float64

	closeOnce sync.Once
}

// connect waits for the IPC socket, then observes time-pos until mpv exits.
func (h *mpvHandle) connect(socketPath string) {
	var conn net.Conn
	for i := 0; i < 50; i++ {
		if h.exited() {
			return
		}
		c, err := net.Dial("unix", socketPath)
		if err == nil {
			conn = c
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if conn == nil {
		h.logger.Warn().Str("socket", socketPath).Msg("mpv IPC socket never appeared")
		return
	}

	h.mu.Lock()
	h.conn = conn
	h.mu.Unlock()

	if err := h.send("observe_property", 1, "time-pos"); err != nil {
		h.logger.Debug().Err(err).Msg("observing time-pos")
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var event struct {
			Event string  `json:"event"`
			Name  string  `json:"name"`
			Data  float64 `json:"data"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue
		}
		if event.Name == "time-pos" && event.Data > 0 {
			h.mu.Lock()
			h.pos = event.Data
			h.mu.Unlock()
		}
	}
}

// send writes one IPC command.
func (h *mpvHandle) send(args ...any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn == nil {
		return errors.Wrap(errutil.ErrPlayer, "mpv IPC not connected")
	}

	data, err := json.Marshal(map[string]any{"command": args})
	if err != nil {
		return errors.Wrap(errutil.ErrPlayer, err.Error())
	}
	if _, err := h.conn.Write(append(data, '\n')); err != nil {
		return errors.Wrapf(errutil.ErrPlayer, "mpv IPC: %v", err)
	}
	return nil
}

func (h *mpvHandle) TogglePause() (bool, error) {
	if err := h.send("cycle", "pause"); err != nil {
		return false, err
	}
	h.mu.Lock()
	h.paused = !h.paused
	paused := h.paused
	h.mu.Unlock()
	h.clock.setPaused(paused)
	return paused, nil
}

func (h *mpvHandle) Stop() error {
	h.stopping.Store(true)
	return h.send("stop")
}

func (h *mpvHandle) Close() error {
	h.closeOnce.Do(func() {
		h.terminate(func() error {
			if err := h.send("quit"); err != nil {
				return h.cmd.Process.Signal(os.Interrupt)
			}
			return nil
		})
		h.mu.Lock()
		if h.conn != nil {
			h.conn.Close()
		}
		h.mu.Unlock()
		os.RemoveAll(h.socketDir)
	})
	return nil
}

func (h *mpvHandle) Position() float64 {
	h.mu.Lock()
	pos := h.pos
	h.mu.Unlock()
	if pos > 0 {
		return pos
	}
	return h.clock.elapsed()
}
