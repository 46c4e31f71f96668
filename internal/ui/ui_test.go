package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"wfmu/internal/show"
)

var testEntries = []show.Entry{
	{Date: "April 24, 2025", Title: "Hour of Power"},
	{Date: "April 17, 2025", Title: "Spring Marathon Special"},
	{Date: "April 10, 2025"},
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     int
		wantErr  error
		wantOuts []string
	}{
		{"first", "1\n", 0, nil, nil},
		{"last with spaces", "  3 \r\n", 2, nil, nil},
		{"quit", "q\n", -1, ErrQuit, nil},
		{"quit upper", "Q\n", -1, ErrQuit, nil},
		{"end of input", "", -1, ErrQuit, nil},
		{"non numeric then valid", "abc\n2\n", 1, nil, []string{"Please enter a valid number."}},
		{"out of range then valid", "0\n4\n-1\n2\n", 1, nil, []string{"Invalid show number."}},
		{"blank lines skipped", "\n\r\n  \n3\n", 2, nil, nil},
		{"garbage then quit", "1.5\nq\n", -1, ErrQuit, []string{"Please enter a valid number."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := NewConsole(strings.NewReader(tt.input))

			got, err := Select(context.Background(), c, &out, testEntries)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Select() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Select() = %d, want %d", got, tt.want)
			}
			for _, want := range tt.wantOuts {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestSelectRepromptsAfterInvalid(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("x\n9\n1\n"))

	if _, err := Select(context.Background(), c, &out, testEntries); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(out.String(), prompt); got != 3 {
		t.Errorf("prompted %d times, want 3", got)
	}
}

func TestSelectBlankLineNoError(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("\n1\n"))

	if _, err := Select(context.Background(), c, &out, testEntries); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "Please enter a valid number.") {
		t.Errorf("blank line reported as invalid:\n%s", out.String())
	}
}

func TestPrintMenu(t *testing.T) {
	var out bytes.Buffer
	PrintMenu(&out, testEntries)

	for _, want := range []string{
		"Available shows:",
		"1. April 24, 2025 - Hour of Power\n",
		"2. April 17, 2025 - Spring Marathon Special\n",
		"3. April 10, 2025\n",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("menu missing %q:\n%s", want, out.String())
		}
	}
}

func TestReadLineCanceled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	c := NewConsole(r)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := c.ReadLine(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("ReadLine() error = %v, want deadline exceeded", err)
	}
}

func TestReadLineUnterminated(t *testing.T) {
	c := NewConsole(strings.NewReader("first\nlast"))

	for _, want := range []string{"first", "last"} {
		got, err := c.ReadLine(context.Background())
		if err != nil || got != want {
			t.Fatalf("ReadLine() = %q, %v; want %q, nil", got, err, want)
		}
	}
	if _, err := c.ReadLine(context.Background()); err != io.EOF {
		t.Errorf("ReadLine() at end = %v, want io.EOF", err)
	}
}

func TestKeys(t *testing.T) {
	c := NewConsole(strings.NewReader("ps"))

	var got []byte
	for b := range c.Keys() {
		got = append(got, b)
	}
	if string(got) != "ps" {
		t.Errorf("Keys() delivered %q, want \"ps\"", got)
	}
	if c.IsTerminal() {
		t.Error("a string reader is not a terminal")
	}
}

func TestRawWithoutTerminal(t *testing.T) {
	c := NewConsole(strings.NewReader(""))
	restore, err := c.Raw()
	if err != nil {
		t.Fatalf("Raw() error: %v", err)
	}
	restore()
}
