package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options describes logger construction parameters.
type Options struct {
	// Level is debug, info, warn or error. Anything else means info.
	Level string
	// Format is console (default) or json.
	Format string
	// Output receives log lines. Defaults to os.Stderr.
	Output io.Writer
	// Development adds the caller to every line. Debug level always does.
	Development bool
}

type handlerFactory func(w io.Writer, level slog.Leveler, addSource bool) slog.Handler

var handlerFactories = map[string]handlerFactory{
	"console": newConsoleHandler,
	"json":    newJSONHandler,
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	factory, ok := handlerFactories[format]
	if !ok {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}
	level := parseLevel(opts.Level)
	return slog.New(factory(output, level, opts.Development || level <= slog.LevelDebug)), nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ValidLevel reports whether level is empty or one of the names New
// understands, in any case.
func ValidLevel(level string) bool {
	name := strings.ToLower(strings.TrimSpace(level))
	_, ok := levels[name]
	return ok || name == ""
}

func parseLevel(level string) slog.Level {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return l
	}
	return slog.LevelInfo
}
