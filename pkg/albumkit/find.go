package albumkit

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// Walk returns every supported source image under root, skipping thumbnail
// directories entirely. Entries are returned in file system listing order.
func Walk(root string) ([]string, error) {
	root = filepath.Clean(root)
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
		}
		return nil, &IOError{Path: root, Op: "stat", Err: err}
	}

	found := []string{}
	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if path == root {
				return nil
			}

			name := de.Name()
			if isHidden(name) {
				return godirwalk.SkipThis
			}

			if de.IsDir() {
				if IsCacheDirectory(name) {
					klog.V(2).Infof("skipping cache dir %s", path)
					return godirwalk.SkipThis
				}
				return nil
			}

			if IsSupportedImage(path) {
				klog.V(1).Infof("found %s", path)
				found = append(found, path)
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}

	return found, nil
}

// Asset is an image on disk and the URL the presentation layer loads it from.
type Asset struct {
	// Path is relative to the album root and slash-separated.
	Path string
	URL  string
}

// Inventory is the raw material for a Catalog.
type Inventory struct {
	Sources []Asset
	Thumbs  []Asset
}

// Scan walks root in lexical order, sorting indexable images into sources
// and thumbnails. URLs are urlBase joined with the escaped relative path.
// Scan never fails: a missing or unreadable root yields an empty inventory,
// and unreadable entries below it are skipped.
func Scan(root string, urlBase string) (*Inventory, error) {
	root = filepath.Clean(root)
	inv := &Inventory{}
	st, err := os.Stat(root)
	if err != nil {
		klog.Warningf("album root %s is unusable: %v", root, err)
		return inv, nil
	}
	if !st.IsDir() {
		klog.Warningf("album root %s is not a directory", root)
		return inv, nil
	}

	err = godirwalk.Walk(root, &godirwalk.Options{
		ErrorCallback: func(p string, err error) godirwalk.ErrorAction {
			klog.Warningf("skipping %s: %v", p, err)
			return godirwalk.SkipNode
		},
		Callback: func(p string, de *godirwalk.Dirent) error {
			if p == root {
				return nil
			}
			if isHidden(de.Name()) {
				return godirwalk.SkipThis
			}
			if de.IsDir() || !IsIndexableImage(p) {
				return nil
			}

			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			a := Asset{Path: rel, URL: assetURL(urlBase, rel)}

			if inThumbDir(rel) {
				inv.Thumbs = append(inv.Thumbs, a)
			} else {
				inv.Sources = append(inv.Sources, a)
			}
			return nil
		},
	})
	if err != nil {
		klog.Warningf("scan of %s stopped early: %v", root, err)
	}

	klog.V(1).Infof("scanned %s: %d sources, %d thumbs", root, len(inv.Sources), len(inv.Thumbs))
	return inv, nil
}

func assetURL(base string, rel string) string {
	parts := strings.Split(rel, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	escaped := strings.Join(parts, "/")
	if base == "" {
		return escaped
	}
	return strings.TrimSuffix(base, "/") + "/" + escaped
}

func inThumbDir(rel string) bool {
	dir := path.Dir(rel)
	for _, seg := range strings.Split(dir, "/") {
		if IsCacheDirectory(seg) {
			return true
		}
	}
	return false
}
