package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// logState holds the global logger, its level and its output file
type logState struct {
	logger *slog.Logger
	level  *slog.LevelVar
	file   *os.File
}

// Options selects where and how log records are written
type Options struct {
	File   string // empty means stderr
	Level  string // debug, info, warn, error
	Format string // text or json
}

var globalLogger *logState

// init creates the global logger with stderr output by default.
// stdout is reserved for command output.
func init() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	globalLogger = &logState{
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
		level:  level,
		file:   os.Stderr,
	}
}

// Configure replaces the global logger according to opts
func Configure(opts Options) error {
	level := new(slog.LevelVar)
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}
	level.Set(lvl)

	out := os.Stderr
	if opts.File != "" {
		out, err = os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("open log file %s: %w", opts.File, err)
		}
	}

	Close()
	globalLogger = &logState{
		logger: slog.New(newHandler(out, opts.Format, level)),
		level:  level,
		file:   out,
	}
	return nil
}

// SetLevel changes the level of the global logger in place
func SetLevel(level slog.Level) {
	globalLogger.level.Set(level)
}

// ParseLevel maps a configuration string onto a slog level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func newHandler(w io.Writer, format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   slog.TimeKey,
					Value: slog.StringValue(a.Value.Time().Format("2006/01/02 15:04:05.000000")),
				}
			}
			return a
		},
	}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Logger returns the global structured logger so components can take it as a dependency
func Logger() *slog.Logger {
	return globalLogger.logger
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Standard logging methods
func Debug(msg string, args ...any) {
	globalLogger.logger.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	globalLogger.logger.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	globalLogger.logger.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	globalLogger.logger.Error(msg, args...)
}

// Close closes the log file if one is open
func Close() {
	if globalLogger != nil && globalLogger.file != nil && globalLogger.file != os.Stderr && globalLogger.file != os.Stdout {
		globalLogger.file.Close()
	}
}
