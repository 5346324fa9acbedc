package logger

import (
	"io"
	"log/slog"
	"os"
)

type Options struct {
	Debug      bool
	ShowSource bool
	// JSON switches to the JSON handler for log collectors.
	JSON bool
}

// New builds a handler-backed logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	hopts := &slog.HandlerOptions{
		Level:     level,
		AddSource: opts.ShowSource,
	}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, hopts)
	} else {
		handler = slog.NewTextHandler(w, hopts)
	}
	return slog.New(handler)
}

func SetupGlobal(opts Options) {
	// stderr keeps stdout free for keyword output in CLI mode
	slog.SetDefault(New(os.Stderr, opts))
}
