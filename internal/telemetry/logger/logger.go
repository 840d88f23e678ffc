package logger

import (
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
}

// Config holds logger configuration.
type Config struct {
	Level  string    // debug, info, warn, error
	Format string    // json (default) or text
	Output io.Writer // default os.Stderr

	AddSource bool
}

// DefaultConfig returns the configuration of the package default logger.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "json",
		Output: os.Stderr,
	}
}

// level is shared by every logger built with New, so SetLevel and config
// reloads adjust all of them at once.
var level = new(slog.LevelVar)

type slogLogger struct {
	*slog.Logger
}

// New builds a logger writing cfg.Format records to cfg.Output. Secret
// attributes are redacted before they reach the handler.
func New(cfg Config) (Logger, error) {
	lvl, ok := lookupLevel(cfg.Level)
	if !ok && cfg.Level != "" {
		return nil, fmt.Errorf("logger: unknown level %q", cfg.Level)
	}
	level.Set(lvl)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		h = slog.NewJSONHandler(out, opts)
	case "text":
		h = slog.NewTextHandler(out, opts)
	default:
		return nil, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}

	return slogLogger{slog.New(h)}, nil
}

func (l slogLogger) With(args ...any) Logger {
	return slogLogger{l.Logger.With(args...)}
}

// Slog returns the *slog.Logger behind l, for packages that take one
// directly. Foreign Logger implementations get slog.Default().
func Slog(l Logger) *slog.Logger {
	if sl, ok := l.(slogLogger); ok {
		return sl.Logger
	}
	return slog.Default()
}

// SetLevel changes the level of every logger built with New. Unknown
// names select info.
func SetLevel(name string) {
	lvl, _ := lookupLevel(name)
	level.Set(lvl)
}

// GetLevel returns the current level name in lower case.
func GetLevel() string {
	return strings.ToLower(level.Level().String())
}

// ValidLevel reports whether name is a known level.
func ValidLevel(name string) bool {
	_, ok := lookupLevel(name)
	return ok
}

func lookupLevel(name string) (slog.Level, bool) {
	if strings.EqualFold(name, "warning") {
		name = "warn"
	}
	var lvl slog.Level
	if name == "" || lvl.UnmarshalText([]byte(name)) != nil {
		return slog.LevelInfo, false
	}
	// UnmarshalText accepts offsets such as "info+2"; only plain names count.
	if strings.ContainsAny(name, "+-") {
		return slog.LevelInfo, false
	}
	return lvl, true
}

var std atomic.Value // slogLogger

func init() {
	l, _ := New(DefaultConfig())
	std.Store(l)
}

// SetDefault replaces the package default logger and slog's default, so
// libraries logging through slog.Default follow the same configuration.
// Foreign Logger implementations are ignored.
func SetDefault(l Logger) {
	sl, ok := l.(slogLogger)
	if !ok {
		return
	}
	std.Store(sl)
	slog.SetDefault(sl.Logger)
}

// Default returns the package default logger.
func Default() Logger {
	return std.Load().(slogLogger)
}
