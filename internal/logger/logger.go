// Package logger builds the process logger: tint on terminals, slog text
// elsewhere.
package logger

import (
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Options configure New.
type Options struct {
	Level string
	// Output defaults to os.Stderr.
	Output io.Writer
	// Terminal forces the tint handler on or off; nil detects it.
	Terminal *bool
}

// ParseLevel maps a level name to a slog level. Unknown names mean warn,
// which keeps normal runs quiet.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "err", "error":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}

// New returns a logger for opts.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := &slog.LevelVar{}
	level.Set(ParseLevel(opts.Level))

	terminal := isTerminal(out)
	if opts.Terminal != nil {
		terminal = *opts.Terminal
	}
	if terminal {
		return slog.New(newTerminalHandler(out, level))
	}
	return slog.New(newTextHandler(out, level))
}

func newTextHandler(w io.Writer, level *slog.LevelVar) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				return slog.String(a.Key, strings.ToLower(a.Value.Any().(slog.Level).String()))
			}
			return a
		},
	})
}

func newTerminalHandler(w io.Writer, level *slog.LevelVar) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		NoColor:   runtime.GOOS == "windows",
		AddSource: level.Level() <= slog.LevelDebug,
		Level:     level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
