// Package logutil builds the zerolog logger used by every command.
package logutil

import (
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to w. Debug lowers the level and adds
// the caller to every line.
func New(w io.Writer, debug bool) zerolog.Logger {
	zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
		return filepath.Base(file) + ":" + strconv.Itoa(line)
	}

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	logger := zerolog.New(out).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	if debug {
		logger = logger.Level(zerolog.DebugLevel).With().Caller().Logger()
	}
	return logger
}

// Writer adapts a logger into an io.Writer that emits each write as one
// debug line. Used for child process output.
func Writer(logger zerolog.Logger, source string) io.Writer {
	return &lineWriter{logger: logger.With().Str("source", source).Logger()}
}

type lineWriter struct {
	logger zerolog.Logger
}

func (w *lineWriter) Write(p []byte) (int, error) {
	msg := string(p)
	for len(msg) > 0 && (msg[len(msg)-1] == '\n' || msg[len(msg)-1] == '\r') {
		msg = msg[:len(msg)-1]
	}
	if msg != "" {
		w.logger.Debug().Msg(msg)
	}
	return len(p), nil
}
