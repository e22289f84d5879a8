package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const logTimeFormat = "2006-01-02 15:04:05"

// Logger provides structured, leveled logging throughout the application.
// Messages go to the console and, for stage loggers, to an append-only log file.
type Logger struct {
	zl   zerolog.Logger
	file *os.File
}

// NewLogger creates a new Logger writing to stdout.
func NewLogger() *Logger {
	return &Logger{zl: newZerolog(consoleWriter(os.Stdout, false))}
}

// NewLoggerTo creates a Logger writing plain lines to w.
func NewLoggerTo(w io.Writer) *Logger {
	return &Logger{zl: newZerolog(consoleWriter(w, true))}
}

// NewStageLogger creates a Logger that writes to stdout and appends to
// logDir/fileName. The caller must Close it.
func NewStageLogger(logDir, fileName string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(logDir, fileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	out := zerolog.MultiLevelWriter(consoleWriter(os.Stdout, false), consoleWriter(f, true))
	return &Logger{zl: newZerolog(out), file: f}, nil
}

func newZerolog(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(levelFromEnv()).With().Timestamp().Logger()
}

func consoleWriter(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: logTimeFormat,
	}
}

// LOG_LEVEL selects the minimum level; unknown values fall back to info.
func levelFromEnv() zerolog.Level {
	raw := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// WithField returns a child logger that tags every line with key=value.
// The child shares the parent's log file.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

// Close releases the stage log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) Info(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}
