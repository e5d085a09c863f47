package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goliatone/go-cvbuilder/cv"
)

// slogLogger adapts slog to cv.Logger.
type slogLogger struct {
	l *slog.Logger
}

var _ cv.Logger = slogLogger{}

func newLogger(w io.Writer, level string) slogLogger {
	return slogLogger{l: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (s slogLogger) Debugf(format string, args ...any) { s.l.Debug(fmt.Sprintf(format, args...)) }
func (s slogLogger) Infof(format string, args ...any)  { s.l.Info(fmt.Sprintf(format, args...)) }
func (s slogLogger) Errorf(format string, args ...any) { s.l.Error(fmt.Sprintf(format, args...)) }
