// Package ui is the console front end: a single stdin reader shared by the
// show menu and the single-key playback controls.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"wfmu/internal/errutil"
	"wfmu/internal/provider"
	"wfmu/internal/show"
)

// ErrQuit is returned when the user asks to quit.
var ErrQuit = errutil.NewInternalError("user quit")

const prompt = "Enter show number (or 'q' to quit): "

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))
)

// Console reads stdin on one goroutine for the life of the process, so the
// menu and the playback controls never race for input.
type Console struct {
	keys chan byte
	fd   int // terminal file descriptor, -1 when input is not a terminal
}

// NewConsole starts reading in. The reader goroutine ends at EOF or on a read
// error, closing Keys.
func NewConsole(in io.Reader) *Console {
	c := &Console{
		keys: make(chan byte, 256),
		fd:   -1,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.fd = int(f.Fd())
	}
	go c.read(in)
	return c
}

func (c *Console) read(in io.Reader) {
	defer close(c.keys)
	buf := make([]byte, 256)
	for {
		n, err := in.Read(buf)
		for _, b := range buf[:n] {
			c.keys <- b
		}
		if err != nil {
			return
		}
	}
}

// Keys delivers input one byte at a time.
func (c *Console) Keys() <-chan byte { return c.keys }

// IsTerminal reports whether input comes from a terminal.
func (c *Console) IsTerminal() bool { return c.fd >= 0 }

// ReadLine returns the next line without its terminator. io.EOF is returned
// once input ends with nothing buffered.
func (c *Console) ReadLine(ctx context.Context) (string, error) {
	var line []byte
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case b, ok := <-c.keys:
			if !ok {
				if len(line) == 0 {
					return "", io.EOF
				}
				return string(line), nil
			}
			switch b {
			case '\n':
				return strings.TrimSuffix(string(line), "\r"), nil
			default:
				line = append(line, b)
			}
		}
	}
}

// Raw switches the terminal to raw mode so single keys arrive without Enter.
// The returned func restores the previous mode. Without a terminal both are
// no-ops.
func (c *Console) Raw() (restore func(), err error) {
	if c.fd < 0 {
		return func() {}, nil
	}
	state, err := term.MakeRaw(c.fd)
	if err != nil {
		return func() {}, errors.Wrapf(errutil.ErrInternal, "raw terminal: %v", err)
	}
	return func() { _ = term.Restore(c.fd, state) }, nil
}

// PrintMenu lists entries numbered from 1.
func PrintMenu(out io.Writer, entries []show.Entry) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("Available shows:"))
	for i, e := range entries {
		fmt.Fprintln(out, provider.FormatDisplayTitle(i, e))
	}
	fmt.Fprintln(out)
}

// Select shows the menu and prompts until the user picks an entry. It returns
// the 0-based index, or ErrQuit on "q" or end of input. Blank lines are
// ignored.
func Select(ctx context.Context, c *Console, out io.Writer, entries []show.Entry) (int, error) {
	PrintMenu(out, entries)

	for {
		fmt.Fprint(out, prompt)
		line, err := c.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return -1, ErrQuit
		}
		if err != nil {
			return -1, err
		}

		choice := strings.TrimSpace(line)
		if choice == "" {
			continue // stray Enter, e.g. after a control key
		}
		if strings.EqualFold(choice, "q") {
			return -1, ErrQuit
		}

		n, err := strconv.Atoi(choice)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("Please enter a valid number."))
			continue
		}
		if n < 1 || n > len(entries) {
			fmt.Fprintln(out, errorStyle.Render("Invalid show number."))
			continue
		}
		return n - 1, nil
	}
}

// PrintControls shows the playback key bindings.
func PrintControls(out io.Writer, eol string) {
	fmt.Fprint(out, dimStyle.Render("Controls:")+eol)
	for _, l := range []string{"  q: Quit", "  p: Play/Pause", "  s: Stop"} {
		fmt.Fprint(out, dimStyle.Render(l)+eol)
	}
}
