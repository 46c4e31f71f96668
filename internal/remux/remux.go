// Package remux drives ffmpeg. Start pipes a live RTMP stream into a local
// fragmented MP4 the player can open; Download copies a stream into a file.
// Every invocation uses explicit argument slices, never a shell.
package remux

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"wfmu/internal/errutil"
	"wfmu/internal/logutil"
)

// stopGrace is how long ffmpeg gets to finalize after an interrupt.
const stopGrace = 2 * time.Second

// Session is a running remux into a private temp directory.
type Session struct {
	cmd  *exec.Cmd
	dir  string
	path string

	done chan struct{}
	err  error // valid after done is closed

	closeOnce sync.Once
	closeErr  error
}

// CheckAvailable verifies every binary can be found in PATH.
func CheckAvailable(bins ...string) error {
	for _, bin := range bins {
		if _, err := exec.LookPath(bin); err != nil {
			return errors.Wrap(errutil.ErrToolMissing, bin)
		}
	}
	return nil
}

// remuxArgs builds the ffmpeg arguments for a live RTMP to MP4 copy.
func remuxArgs(streamURL, outPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-rtmp_live", "live",
		"-i", streamURL,
		"-c", "copy",
		"-f", "mp4",
		"-movflags", "frag_keyframe+empty_moov",
		outPath,
	}
}

// Start launches bin remuxing streamURL into a randomized temp directory and
// waits warmup so the player has data to open. The caller must Close the
// session.
func Start(ctx context.Context, bin, streamURL string, warmup time.Duration) (*Session, error) {
	binPath, err := exec.LookPath(bin)
	if err != nil {
		return nil, errors.Wrap(errutil.ErrToolMissing, bin)
	}

	dir, err := os.MkdirTemp("", "wfmu-remux-*")
	if err != nil {
		return nil, errors.Wrapf(errutil.ErrFfmpeg, "creating temp dir: %v", err)
	}

	s := &Session{
		dir:  dir,
		path: filepath.Join(dir, "stream.mp4"),
		done: make(chan struct{}),
	}

	logger := zerolog.Ctx(ctx)
	s.cmd = exec.Command(binPath, remuxArgs(streamURL, s.path)...)
	s.cmd.Stderr = logutil.Writer(*logger, bin)

	logger.Debug().Str("url", streamURL).Str("output", s.path).Msg("starting remux")
	if err := s.cmd.Start(); err != nil {
		os.RemoveAll(dir)
		return nil, errors.Wrapf(errutil.ErrFfmpeg, "starting %s: %v", bin, err)
	}

	go func() {
		s.err = s.cmd.Wait()
		close(s.done)
	}()

	timer := time.NewTimer(warmup)
	defer timer.Stop()

	select {
	case <-timer.C:
		return s, nil
	case <-s.done:
		if s.err != nil {
			s.Close()
			return nil, errors.Wrapf(errutil.ErrFfmpeg, "%s exited during warmup: %v", bin, s.err)
		}
		// the whole stream fit in the warmup window
		return s, nil
	case <-ctx.Done():
		s.Close()
		return nil, ctx.Err()
	}
}

// Path is the file the remuxer writes to.
func (s *Session) Path() string { return s.path }

// Close stops the remuxer and removes its temp directory. Safe to call more
// than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		select {
		case <-s.done:
		default:
			// ffmpeg finalizes the container on interrupt
			_ = s.cmd.Process.Signal(os.Interrupt)
			select {
			case <-s.done:
			case <-time.After(stopGrace):
				_ = s.cmd.Process.Kill()
				<-s.done
			}
		}
		s.closeErr = os.RemoveAll(s.dir)
	})
	return s.closeErr
}
