package fitsview

import (
	"io"
	"log"
	"strings"
)

// Logger writes timestamped render progress lines. Each line is written as
// soon as it is produced so callers can stream it to a live view. A nil
// *Logger discards everything.
type Logger struct {
	l *log.Logger
}

// lineWriter hands every complete log line to fn. log.Logger issues exactly
// one Write per line.
type lineWriter struct {
	fn func(string)
}

func (w lineWriter) Write(p []byte) (int, error) {
	w.fn(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// NewLogger logs to w. When onLine is non-nil it also receives every line,
// timestamp included, without the trailing newline.
func NewLogger(w io.Writer, onLine func(line string)) *Logger {
	if w == nil {
		w = io.Discard
	}
	if onLine != nil {
		w = io.MultiWriter(w, lineWriter{fn: onLine})
	}
	return &Logger{l: log.New(w, "", log.LstdFlags|log.Lmicroseconds)}
}

func (l *Logger) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	l.l.Printf(format, args...)
}
