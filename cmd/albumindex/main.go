// albumindex builds the album catalog from an album tree and writes it as a
// JSON manifest, optionally publishing the tree next to it.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
	"k8s.io/klog/v2"

	"github.com/tstromberg/albumkit/pkg/albumkit"
	"github.com/tstromberg/albumkit/pkg/settings"
)

// ManifestName is the file written into the output directory.
const ManifestName = "albums.json"

var (
	configFlag = flag.String("config", "", "path to a YAML config file (default: ./albumkit.yaml if present)")
	rootFlag   = flag.String("root", "", "album root directory")
	urlBase    = flag.String("url-base", "", "URL prefix the album tree is served under")
	outDir     = flag.String("out", "", "output directory for the manifest and published images (default: manifest to stdout)")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	s, err := settings.Load(*configFlag)
	if err != nil {
		klog.Exitf("config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "root":
			s.Root = *rootFlag
		case "url-base":
			s.URLBase = *urlBase
		case "out":
			s.Out = *outDir
		}
	})

	c, err := albumkit.Load(s.Root, s.URLBase)
	if err != nil {
		klog.Exitf("index failed: %v", err)
	}

	var buf bytes.Buffer
	if err := albumkit.WriteManifest(&buf, c); err != nil {
		klog.Exitf("manifest failed: %v", err)
	}

	if s.Out == "" {
		if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
			klog.Exitf("write: %v", err)
		}
		return
	}

	if err := publish(s.Root, s.Out); err != nil {
		klog.Exitf("publish failed: %v", err)
	}

	p := filepath.Join(s.Out, ManifestName)
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		klog.Exitf("write manifest: %v", err)
	}
	klog.Infof("wrote %d albums to %s", len(c.ListAlbums()), p)
}

// publish copies the indexable images of root into out/<base of root>, so that
// manifest URLs resolve relative to out.
func publish(root string, out string) error {
	if _, err := os.Stat(root); err != nil {
		klog.Warningf("nothing to publish: %v", err)
		return nil
	}

	dest := filepath.Join(out, filepath.Base(filepath.Clean(root)))
	klog.Infof("publishing %s -> %s", root, dest)
	err := copy.Copy(root, dest, copy.Options{
		Skip: func(info os.FileInfo, src, _ string) (bool, error) {
			if info.Name()[0] == '.' && src != root {
				return true, nil
			}
			if info.IsDir() {
				return false, nil
			}
			return !albumkit.IsIndexableImage(src), nil
		},
		PreserveTimes: true,
	})
	if err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return nil
}
