// Command mdpreview opens a markdown file in an editor with a live preview.
//
// The source file is read once and never written back.
//
// Usage:
//
//	mdpreview [flags] [file.md]
//
// Flags:
//
//	-config string     Path to a YAML config file
//	-debounce duration Quiet period before a render (default 200ms)
//	-mode string       Initial preview mode: side-by-side, hidden
//	-serve string      Address for the browser mirror (e.g. :8080)
//	-strict            Fail renders whose patch diverges
//	-log string        Write logs to this file
//	-log-level string  debug, info, warn, error
//	-print             Print the rendered file and exit
//	-width int         Width used by -print (default 80)
//	-dump string       Render files matching this glob and exit
//	-root string       Directory searched by -dump (default ".")
//	-out string        Output directory for -dump (default "out")
//	-snapshots         Also write JSON tree snapshots with -dump
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fwojciec/preview"
	"github.com/fwojciec/preview/bluemonday"
	bt "github.com/fwojciec/preview/bubbletea"
	"github.com/fwojciec/preview/goldmark"
	previewhttp "github.com/fwojciec/preview/http"
	"github.com/fwojciec/preview/live"
	"github.com/fwojciec/preview/terminal"
	"github.com/fwojciec/preview/typeset"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mdpreview: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse flags.
	var f flagValues
	fs := f.register(flag.CommandLine)
	flag.Parse()

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig(f, fs)
	if err != nil {
		return err
	}

	tui := f.dump == "" && !f.print
	logOut, closeLog, err := logOutput(f.logPath, tui)
	if err != nil {
		return err
	}
	defer closeLog()
	logger, err := newLogger(logOut, cfg.LogLevel)
	if err != nil {
		return err
	}

	theme := preview.DefaultTheme()
	renderer := newRenderer(cfg)
	var formatter *typeset.Formatter
	if cfg.Math {
		formatter = typeset.New(typeset.WithLogger(logger))
	}
	layout := terminal.New(terminal.WithTheme(theme), terminal.WithMath(mathText(formatter)))

	if f.dump != "" {
		n, err := dump(ctx, f.root, f.dump, f.out, renderer, f.snapshots, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "rendered %d files into %s\n", n, f.out)
		return nil
	}

	text, err := readSource(flag.Arg(0))
	if err != nil {
		return err
	}

	if f.print {
		return printPage(ctx, os.Stdout, text, renderer, formatter, layout, f.width)
	}

	// Create the previewer.
	buf := live.NewBuffer(text)
	opts := []live.Option{
		live.WithWindow(cfg.Debounce),
		live.WithStrict(cfg.Strict),
		live.WithMode(cfg.PreviewMode()),
		live.WithLogger(logger),
	}
	if formatter != nil {
		opts = append(opts, live.WithFormatter(formatter))
	}
	p := live.New(buf, renderer, opts...)
	buf.Watch(p)
	defer p.Close()
	if err := p.RenderNow(); err != nil {
		return fmt.Errorf("initial render: %w", err)
	}

	if cfg.Addr != "" {
		srv := previewhttp.NewServer(p, buf, renderer, previewhttp.WithLogger(logger))
		srv.Addr = cfg.Addr
		if err := srv.Open(); err != nil {
			return err
		}
		defer srv.Close()
	}

	// Create and run TUI.
	m := bt.New(p, buf, theme, bt.WithLayout(layout))
	if err := bt.Run(ctx, m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

// readSource reads the file being edited. A missing file starts empty.
func readSource(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		return string(data), nil
	case errors.Is(err, os.ErrNotExist):
		return "", nil
	default:
		return "", fmt.Errorf("read %s: %w", path, err)
	}
}

func newRenderer(cfg preview.Config) *goldmark.Renderer {
	opts := []goldmark.Option{goldmark.WithMath(cfg.Math)}
	if cfg.Hashtags {
		opts = append(opts, goldmark.WithHashtags(cfg.TagBase))
	}
	if cfg.Sanitize {
		opts = append(opts, goldmark.WithSanitizer(bluemonday.New()))
	}
	return goldmark.New(opts...)
}

// mathText reads typeset math for the terminal layout.
func mathText(f *typeset.Formatter) func(*preview.Node) (string, bool) {
	if f == nil {
		return nil
	}
	return func(n *preview.Node) (string, bool) {
		r, ok := f.Lookup(n)
		if !ok || r.Err != nil {
			return "", false
		}
		return r.Text, true
	}
}

// printPage renders text once, waiting for math, and writes the page to w.
func printPage(ctx context.Context, w io.Writer, text string, r preview.Renderer, f *typeset.Formatter, layout *terminal.Layout, width int) error {
	root, err := r.Render([]byte(text))
	if err != nil {
		return err
	}
	if f != nil {
		if job := f.Prepare(root); job != nil {
			// Spans that fail keep their TeX.
			_ = job(ctx)
		}
	}
	page := layout.Render(root, width)
	if page.Height() == 0 {
		return nil
	}
	_, err = fmt.Fprintln(w, page.String())
	return err
}
