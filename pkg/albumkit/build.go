package albumkit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"
	"k8s.io/klog/v2"
)

// Summary reports what a build did.
type Summary struct {
	Found     int
	Generated int
	Skipped   int
}

// ThumbPath returns where the thumbnail for source belongs:
// <root>/<album>/thumbs/<path below album>. ok is false for files directly
// under root, which belong to no album.
func ThumbPath(root string, source string) (string, bool) {
	rel, err := filepath.Rel(root, source)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}

	album, name, found := strings.Cut(rel, "/")
	if !found || name == "" {
		return "", false
	}
	return filepath.Join(root, album, ThumbDirName, filepath.FromSlash(name)), true
}

// Build brings the thumbnail cache under c.Root up to date. A missing or empty
// root is not an error. The first transcode or I/O failure cancels the
// remaining work and is returned.
func Build(ctx context.Context, c *Config) (*Summary, error) {
	klog.Infof("build: %s", c.Root)

	sources, err := Walk(c.Root)
	if errors.Is(err, ErrNotFound) {
		klog.Infof("No albums directory found at %s, skipping thumbnail generation.", c.Root)
		return &Summary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	if len(sources) == 0 {
		klog.Infof("No album images found in %s, skipping thumbnail generation.", c.Root)
		return &Summary{}, nil
	}

	opts := ThumbOpts{Width: c.width(), Quality: c.quality()}
	workers := c.workers()
	klog.V(1).Infof("processing %d sources with %d workers", len(sources), workers)

	var generated, skipped atomic.Int64
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError().WithMaxGoroutines(workers)

	for _, src := range sources {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			dest, ok := ThumbPath(c.Root, src)
			if !ok {
				klog.Warningf("skipping %s: not inside an album directory", src)
				skipped.Add(1)
				return nil
			}

			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return &IOError{Path: filepath.Dir(dest), Op: "mkdir", Err: err}
			}

			if IsFresh(src, dest) {
				skipped.Add(1)
				return nil
			}

			tm, err := Synthesize(src, dest, opts)
			if err != nil {
				klog.Errorf("create failed: %v", err)
				return err
			}
			klog.V(1).Infof("created %dx%d thumb: %s", tm.X, tm.Y, tm.Path)
			generated.Add(1)
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("thumbnails: %w", err)
	}

	s := &Summary{
		Found:     len(sources),
		Generated: int(generated.Load()),
		Skipped:   int(skipped.Load()),
	}
	klog.V(1).Infof("build summary: %+v", *s)
	return s, nil
}

// String renders the summary the way the batch job reports it.
func (s Summary) String() string {
	if s.Generated == 1 {
		return "Generated 1 thumbnail."
	}
	return fmt.Sprintf("Generated %d thumbnails.", s.Generated)
}
