// Package logger provides a small leveled logger that tags every line with a
// colored subsystem prefix.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/beka-birhanu/vinom-snake/config"
	"github.com/beka-birhanu/vinom-snake/service/i"
)

var ErrEmptyPrefix = errors.New("logger prefix must not be empty")

var _ i.Logger = &Logger{}

// Logger writes "[PREFIX] [LEVEL] message" lines to the underlying writer.
type Logger struct {
	prefix string
	color  string
	out    *log.Logger
}

// New creates a Logger for the subsystem named by prefix.
func New(prefix, color string, w io.Writer) (*Logger, error) {
	if prefix == "" {
		return nil, ErrEmptyPrefix
	}
	if w == nil {
		w = io.Discard
	}

	return &Logger{
		prefix: prefix,
		color:  color,
		out:    log.New(w, "", log.LstdFlags),
	}, nil
}

// Info logs informational messages.
func (l *Logger) Info(msg string) {
	l.write(config.LogInfoColor, "INFO", msg)
}

// Warning logs recoverable problems.
func (l *Logger) Warning(msg string) {
	l.write(config.LogWarningColor, "WARNING", msg)
}

// Error logs failures.
func (l *Logger) Error(msg string) {
	l.write(config.LogErrorColor, "ERROR", msg)
}

func (l *Logger) write(levelColor, level, msg string) {
	l.out.Println(fmt.Sprintf("%s[%s]%s %s[%s]%s %s",
		l.color, l.prefix, config.ColorReset,
		levelColor, level, config.LogColorReset,
		msg,
	))
}

// Discard returns a Logger that drops everything. Handy in tests.
func Discard() *Logger {
	l, _ := New("DISCARD", "", io.Discard)
	return l
}
