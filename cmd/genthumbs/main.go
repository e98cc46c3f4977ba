// genthumbs brings the thumbnail cache of an album tree up to date.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/fsnotify/fsnotify"
	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"

	"github.com/tstromberg/albumkit/pkg/albumkit"
	"github.com/tstromberg/albumkit/pkg/settings"
)

var (
	configFlag = flag.String("config", "", "path to a YAML config file (default: ./albumkit.yaml if present)")
	rootFlag   = flag.String("root", "", "album root directory")
	width      = flag.Int("width", 0, "maximum thumbnail width in pixels")
	quality    = flag.Int("quality", 0, "encoder quality for lossy formats")
	workers    = flag.Int("workers", 0, "parallel transcodes (0 = one per CPU)")
	watchFlag  = flag.Bool("watch", false, "watch the album root for changes and rebuild")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	s, err := settings.Load(*configFlag)
	if err != nil {
		klog.Exitf("config: %v", err)
	}
	applyFlags(s)
	if err := s.Validate(); err != nil {
		klog.Exitf("config: %v", err)
	}

	c := s.BuildConfig()
	defer albumkit.Shutdown()

	ctx := context.Background()
	if err := build(ctx, c); err != nil {
		albumkit.Shutdown()
		klog.Exitf("Thumbnail generation failed: %v", err)
	}

	if *watchFlag {
		if err := watch(ctx, c); err != nil {
			albumkit.Shutdown()
			klog.Exitf("watch failed: %v", err)
		}
	}
}

// applyFlags overrides settings with flags given on the command line.
func applyFlags(s *settings.Settings) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "root":
			s.Root = *rootFlag
		case "width":
			s.Width = *width
		case "quality":
			s.Quality = *quality
		case "workers":
			s.Workers = *workers
		}
	})
}

func build(ctx context.Context, c *albumkit.Config) error {
	sum, err := albumkit.Build(ctx, c)
	if err != nil {
		return err
	}
	fmt.Println(sum)
	return nil
}

// watch rebuilds whenever an album directory changes. Events from thumbnail
// directories are ignored so that a build does not trigger itself.
func watch(ctx context.Context, c *albumkit.Config) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	dirs, err := albumDirs(c.Root)
	if err != nil {
		return err
	}
	klog.Infof("watching %d dirs ...", len(dirs))
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if albumkit.IsCacheDirectory(filepath.Base(event.Name)) || albumkit.IsCacheDirectory(filepath.Base(filepath.Dir(event.Name))) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}

			klog.V(1).Infof("event: %s", event)
			if event.Has(fsnotify.Create) {
				if st, err := os.Stat(event.Name); err == nil && st.IsDir() {
					if err := w.Add(event.Name); err != nil {
						klog.Warningf("unable to watch %s: %v", event.Name, err)
					}
				}
			}

			if err := build(ctx, c); err != nil {
				klog.Errorf("rebuild failed: %v", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			klog.Errorf("watch error: %v", err)
		}
	}
}

// albumDirs returns root and every directory below it except thumbnail caches.
func albumDirs(root string) ([]string, error) {
	root = filepath.Clean(root)
	dirs := []string{root}
	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if path == root || !de.IsDir() {
				return nil
			}
			if albumkit.IsCacheDirectory(de.Name()) {
				return godirwalk.SkipThis
			}
			dirs = append(dirs, path)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list dirs: %w", err)
	}

	slices.Sort(dirs)
	return slices.Compact(dirs), nil
}
