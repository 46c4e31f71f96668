// Package playback runs the interactive loop: pick a show from the menu,
// resolve its stream, play it under single-key control, repeat.
package playback

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"wfmu/internal/config"
	"wfmu/internal/extract"
	"wfmu/internal/player"
	"wfmu/internal/show"
	"wfmu/internal/ui"
)

// DefaultPoll is the pause between control loop iterations.
const DefaultPoll = 100 * time.Millisecond

// Resolver finds the stream URL of an entry.
type Resolver interface {
	Resolve(ctx context.Context, e show.Entry) extract.Result
	ArchiveURL(rtmpURL string) (string, bool)
}

// Remuxed is a live stream being copied into a local file.
type Remuxed interface {
	Path() string
	Close() error
}

// RemuxFunc starts remuxing an RTMP URL.
type RemuxFunc func(ctx context.Context, url string) (Remuxed, error)

// Driver is the menu and playback loop.
type Driver struct {
	Resolver Resolver
	Player   player.Player
	Remux    RemuxFunc
	Console  *ui.Console
	Out      io.Writer

	// RTMPMode is config.RTMPRemux or config.RTMPArchive.
	RTMPMode string
	// Poll defaults to DefaultPoll.
	Poll time.Duration
}

// outcome is how one playback ended.
type outcome int

const (
	backToMenu outcome = iota
	exitProgram
)

// Run loops until the user quits or input ends.
func (d *Driver) Run(ctx context.Context, entries []show.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(d.Out, "No playlists found. Run \"wfmu scrape\" first.")
		return nil
	}

	logger := zerolog.Ctx(ctx)
	for {
		idx, err := ui.Select(ctx, d.Console, d.Out, entries)
		if errors.Is(err, ui.ErrQuit) {
			fmt.Fprintln(d.Out, "Quitting...")
			return nil
		}
		if err != nil {
			return err
		}

		e := entries[idx]
		res := d.Resolver.Resolve(ctx, e)
		if !res.Found() {
			fmt.Fprintln(d.Out, "No playable URL found for this show.")
			continue
		}
		logger.Debug().Str("url", res.URL).Str("strategy", string(res.Strategy)).Msg("resolved stream")

		out, err := d.play(ctx, res.URL, e.Label())
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			logger.Error().Err(err).Str("show", e.Label()).Msg("playback failed")
			fmt.Fprintln(d.Out, "Error playing stream.")
			continue
		}
		if out == exitProgram {
			return nil
		}
	}
}

// source picks what the player opens for url. RTMP is either rewritten to the
// storage host or remuxed into a temp file; release must always be called.
func (d *Driver) source(ctx context.Context, url string) (src string, release func(), err error) {
	if !extract.IsRTMP(url) {
		return url, func() {}, nil
	}

	if d.RTMPMode == config.RTMPArchive {
		if u, ok := d.Resolver.ArchiveURL(url); ok {
			return u, func() {}, nil
		}
		zerolog.Ctx(ctx).Info().Str("url", url).Msg("no archive rewrite, remuxing instead")
	}

	sess, err := d.Remux(ctx, url)
	if err != nil {
		return "", func() {}, err
	}
	return sess.Path(), func() { _ = sess.Close() }, nil
}

func (d *Driver) play(ctx context.Context, url, title string) (outcome, error) {
	src, release, err := d.source(ctx, url)
	defer release()
	if err != nil {
		return backToMenu, err
	}

	fmt.Fprintf(d.Out, "\nAttempting to play: %s\n", title)
	fmt.Fprintf(d.Out, "URL: %s\n\n", url)
	ui.PrintControls(d.Out, "\n")

	start := func() (player.Handle, error) { return d.Player.Start(ctx, src, title) }
	h, err := start()
	if err != nil {
		return backToMenu, err
	}

	restore, err := d.Console.Raw()
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("keys need Enter")
	}
	defer restore()

	eol := "\n"
	if d.Console.IsTerminal() {
		eol = "\r\n" // raw mode does no output processing
	}
	return d.control(ctx, h, start, eol)
}

// control polls keys and player state until playback ends. It owns h and
// closes whichever handle is current when it returns. After a stop, the
// player may exit on its own; p then starts the show again.
func (d *Driver) control(ctx context.Context, h player.Handle, start func() (player.Handle, error), eol string) (outcome, error) {
	defer func() {
		if h != nil {
			_ = h.Close()
		}
	}()

	poll := d.Poll
	if poll <= 0 {
		poll = DefaultPoll
	}
	say := func(msg string) { fmt.Fprint(d.Out, msg+eol) }
	logger := zerolog.Ctx(ctx)
	stopped := false

	for {
		if !stopped {
			select {
			case <-h.Done():
				if err := h.Err(); err != nil {
					return backToMenu, err
				}
				say("Finished")
				return backToMenu, nil
			default:
			}
		}

		select {
		case b, ok := <-d.Console.Keys():
			if !ok {
				say("Quitting...")
				return exitProgram, nil
			}
			switch b {
			case 3, 4: // Ctrl-C, Ctrl-D
				say("Quitting...")
				return exitProgram, nil
			case 'q', 'Q':
				say("Quitting...")
				return backToMenu, nil
			case 'p', 'P':
				if stopped {
					_ = h.Close()
					h = nil
					next, err := start()
					if err != nil {
						return backToMenu, err
					}
					h, stopped = next, false
					say("Playing")
					break
				}
				paused, err := h.TogglePause()
				if err != nil {
					logger.Warn().Err(err).Msg("toggling pause")
					break
				}
				state := "Playing"
				if paused {
					state = "Paused"
				}
				if pos := h.Position(); pos > 0 {
					state += " (" + player.FormatDuration(pos) + ")"
				}
				say(state)
			case 's', 'S':
				if !stopped {
					if err := h.Stop(); err != nil {
						logger.Warn().Err(err).Msg("stopping player")
					}
					stopped = true
				}
				say("Stopped")
			}
		default:
		}

		select {
		case <-ctx.Done():
			return exitProgram, ctx.Err()
		case <-time.After(poll):
		}
	}
}
