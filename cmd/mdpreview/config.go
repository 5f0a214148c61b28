package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fwojciec/preview"
	"github.com/fwojciec/preview/yaml"
)

type flagValues struct {
	configPath string
	debounce   time.Duration
	mode       string
	serve      string
	strict     bool
	logPath    string
	logLevel   string

	print bool
	width int

	dump      string
	root      string
	out       string
	snapshots bool
}

func (f *flagValues) register(fs *flag.FlagSet) *flag.FlagSet {
	fs.StringVar(&f.configPath, "config", "", "Path to a YAML config file")
	fs.DurationVar(&f.debounce, "debounce", preview.DefaultDebounce, "Quiet period before a render")
	fs.StringVar(&f.mode, "mode", "", "Initial preview mode: side-by-side, hidden")
	fs.StringVar(&f.serve, "serve", "", "Address for the browser mirror (e.g. :8080)")
	fs.BoolVar(&f.strict, "strict", false, "Fail renders whose patch diverges")
	fs.StringVar(&f.logPath, "log", "", "Write logs to this file")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.BoolVar(&f.print, "print", false, "Print the rendered file and exit")
	fs.IntVar(&f.width, "width", 80, "Width used by -print")
	fs.StringVar(&f.dump, "dump", "", "Render files matching this glob and exit")
	fs.StringVar(&f.root, "root", ".", "Directory searched by -dump")
	fs.StringVar(&f.out, "out", "out", "Output directory for -dump")
	fs.BoolVar(&f.snapshots, "snapshots", false, "Also write JSON tree snapshots with -dump")
	return fs
}

// loadConfig reads the config file, if any, then applies the flags that
// were set explicitly.
func loadConfig(f flagValues, fs *flag.FlagSet) (preview.Config, error) {
	cfg := preview.DefaultConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = yaml.LoadFile(f.configPath); err != nil {
			return preview.Config{}, err
		}
	}

	var err error
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "debounce":
			cfg.Debounce = f.debounce
		case "mode":
			if _, ok := preview.ParseMode(f.mode); !ok {
				err = fmt.Errorf("unknown mode %q: %w", f.mode, preview.ErrValidation)
			}
			cfg.Mode = f.mode
		case "serve":
			cfg.Addr = f.serve
		case "strict":
			cfg.Strict = f.strict
		case "log-level":
			if _, ok := parseLevel(f.logLevel); !ok {
				err = fmt.Errorf("unknown log level %q: %w", f.logLevel, preview.ErrValidation)
			}
			cfg.LogLevel = f.logLevel
		}
	})
	if err != nil {
		return preview.Config{}, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func parseLevel(s string) (slog.Level, bool) {
	switch s {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return 0, false
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	l, ok := parseLevel(level)
	if !ok {
		return nil, fmt.Errorf("unknown log level %q: %w", level, preview.ErrValidation)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

// logOutput opens the log destination. The TUI owns the terminal, so it
// logs only to a file.
func logOutput(path string, tui bool) (io.Writer, func(), error) {
	switch {
	case path != "":
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log: %w", err)
		}
		return f, func() { f.Close() }, nil
	case tui:
		return io.Discard, func() {}, nil
	default:
		return os.Stderr, func() {}, nil
	}
}
