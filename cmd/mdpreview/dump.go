package main

import (
	"context"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/preview"
	previewjson "github.com/fwojciec/preview/json"
)

// dump renders every file under root matching pattern into outDir as HTML,
// keeping relative paths. With snapshots it also writes the tree as JSON.
// It returns the number of files rendered.
func dump(ctx context.Context, root, pattern, outDir string, r preview.Renderer, snapshots bool, logger *slog.Logger) (int, error) {
	if !doublestar.ValidatePattern(pattern) {
		return 0, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	var n int
	err := doublestar.GlobWalk(os.DirFS(root), pattern, func(path string, d iofs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := dumpFile(filepath.Join(root, filepath.FromSlash(path)), filepath.Join(outDir, filepath.FromSlash(path)), r, snapshots); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logger.Debug("rendered", "path", path)
		n++
		return nil
	})
	return n, err
}

func dumpFile(src, dst string, r preview.Renderer, snapshots bool) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	base := strings.TrimSuffix(dst, filepath.Ext(dst))

	markup, err := r.Markup(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(base+".html", markup, 0o644); err != nil {
		return fmt.Errorf("write markup: %w", err)
	}

	if !snapshots {
		return nil
	}
	root, err := r.Render(data)
	if err != nil {
		return err
	}
	return previewjson.Save(base+".json", &preview.Snapshot{Root: root, Generation: 1})
}
