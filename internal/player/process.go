package player

import (
	"context"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"wfmu/internal/errutil"
	"wfmu/internal/logutil"
)

// quitGrace is how long a player gets to exit after a polite quit.
const quitGrace = 2 * time.Second

// process is the lifecycle shared by every player: start, wait in the
// background, classify the exit and tear down.
type process struct {
	name string
	cmd  *exec.Cmd

	done     chan struct{}
	err      error // valid after done is closed
	stopping atomic.Bool

	// exitOK reports whether a non-zero exit still counts as a normal end.
	exitOK func(*exec.ExitError) bool

	clock clock
}

func newProcess(ctx context.Context, bin string, args []string) *process {
	name := filepath.Base(bin)
	cmd := exec.Command(bin, args...)

	out := logutil.Writer(*zerolog.Ctx(ctx), name)
	cmd.Stdout = out
	cmd.Stderr = out

	return &process{
		name: name,
		cmd:  cmd,
		done: make(chan struct{}),
	}
}

func (p *process) start() error {
	if err := p.cmd.Start(); err != nil {
		return errors.Wrapf(errutil.ErrPlayer, "starting %s: %v", p.name, err)
	}
	p.clock.start()

	go func() {
		err := p.cmd.Wait()
		if err != nil && !p.stopping.Load() {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) || p.exitOK == nil || !p.exitOK(exitErr) {
				p.err = errors.Wrapf(errutil.ErrPlayer, "%s: %v", p.name, err)
			}
		}
		close(p.done)
	}()
	return nil
}

func (p *process) Done() <-chan struct{} { return p.done }

func (p *process) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

func (p *process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// terminate asks the player to quit, then kills it after quitGrace.
func (p *process) terminate(quit func() error) {
	p.stopping.Store(true)
	if p.exited() {
		return
	}
	if quit != nil {
		_ = quit()
	}
	select {
	case <-p.done:
	case <-time.After(quitGrace):
		_ = p.cmd.Process.Kill()
		<-p.done
	}
}

// clock measures wall-clock playback time, excluding pauses.
type clock struct {
	mu       sync.Mutex
	started  time.Time
	pausedAt time.Time
	paused   time.Duration
}

func (c *clock) start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = time.Now()
}

func (c *clock) setPaused(paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	switch {
	case paused && c.pausedAt.IsZero():
		c.pausedAt = now
	case !paused && !c.pausedAt.IsZero():
		c.paused += now.Sub(c.pausedAt)
		c.pausedAt = time.Time{}
	}
}

func (c *clock) elapsed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started.IsZero() {
		return 0
	}
	end := time.Now()
	if !c.pausedAt.IsZero() {
		end = c.pausedAt
	}
	return (end.Sub(c.started) - c.paused).Seconds()
}
