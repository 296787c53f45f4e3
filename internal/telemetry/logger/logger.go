package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the application logger interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn or error. Empty means warn.
	Level string
	// Format is text (default) or json. Text omits timestamps since it is
	// read on a terminal next to command output.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// level is shared by every logger so SetLevel applies without rebuilding.
var level = func() *slog.LevelVar {
	v := new(slog.LevelVar)
	v.Set(slog.LevelWarn)
	return v
}()

// ParseLevel accepts debug, info, warn (or warning) and error. Empty is warn.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("logger: unknown level %q", s)
}

// New creates a logger and sets the shared level.
func New(cfg Config) (Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", FormatText:
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level, ReplaceAttr: dropTime})
	case FormatJSON:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level, ReplaceAttr: redact})
	default:
		return nil, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}

	level.Set(lvl)
	return &slogLogger{l: slog.New(handler), ctx: context.Background()}, nil
}

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return redact(groups, a)
}

// SetLevel changes the level of every logger.
func SetLevel(s string) error {
	lvl, err := ParseLevel(s)
	if err != nil {
		return err
	}
	level.Set(lvl)
	return nil
}

// CurrentLevel returns the shared level as accepted by ParseLevel.
func CurrentLevel() string {
	return strings.ToLower(level.Level().String())
}

type slogLogger struct {
	l   *slog.Logger
	ctx context.Context
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.DebugContext(s.ctx, msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.InfoContext(s.ctx, msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.WarnContext(s.ctx, msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.ErrorContext(s.ctx, msg, args...) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...), ctx: s.ctx}
}

// WithContext binds ctx and adds its request ID, if any.
func (s *slogLogger) WithContext(ctx context.Context) Logger {
	l := s.l
	if id := RequestID(ctx); id != "" {
		l = l.With("request_id", id)
	}
	return &slogLogger{l: l, ctx: ctx}
}

var defaultLogger atomic.Value

func init() {
	l, _ := New(Config{})
	defaultLogger.Store(holder{l})
}

// holder keeps atomic.Value stores of one concrete type.
type holder struct{ Logger }

// SetDefault replaces the logger returned by Default. Nil is ignored.
func SetDefault(l Logger) {
	if l != nil {
		defaultLogger.Store(holder{l})
	}
}

// Default returns the process-wide logger.
func Default() Logger {
	return defaultLogger.Load().(holder).Logger
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	return &slogLogger{l: slog.New(slog.DiscardHandler), ctx: context.Background()}
}
