package albumkit

import (
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	"k8s.io/klog/v2"

	_ "golang.org/x/image/webp"
)

// ThumbOpts are thumbnail options.
type ThumbOpts struct {
	// Width is the maximum output width. Narrower images are not enlarged.
	Width   int
	Quality int
}

// ThumbMeta describes a thumbnail.
type ThumbMeta struct {
	X    int
	Y    int
	Path string
}

// IsFresh returns true if thumbPath exists and is at least as new as sourcePath.
// Any stat failure counts as stale.
func IsFresh(sourcePath string, thumbPath string) bool {
	sst, err := os.Stat(sourcePath)
	if err != nil {
		klog.V(1).Infof("stale %s: %v", thumbPath, err)
		return false
	}

	tst, err := os.Stat(thumbPath)
	if err != nil {
		klog.V(1).Infof("stale %s: does not exist", thumbPath)
		return false
	}

	if tst.ModTime().Before(sst.ModTime()) {
		klog.V(1).Infof("stale %s: source newer", thumbPath)
		return false
	}
	return true
}

// codecFor picks the output codec from the source extension, never the content.
func codecFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".webp":
		return "webp"
	case ".avif":
		return "avif"
	default:
		return "jpeg"
	}
}

// Synthesize writes a resized copy of sourcePath to destPath, encoded with the
// codec matching the source extension.
func Synthesize(sourcePath string, destPath string, t ThumbOpts) (*ThumbMeta, error) {
	klog.V(1).Infof("creating thumb %s -> %s (%+v)", sourcePath, destPath, t)

	img, err := decode(sourcePath)
	if err != nil {
		return nil, &TranscodeError{Path: sourcePath, Op: "decode", Err: err}
	}

	rimg, err := resizeToWidth(img, t.Width)
	if err != nil {
		return nil, &TranscodeError{Path: sourcePath, Op: "resize", Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return nil, &IOError{Path: filepath.Dir(destPath), Op: "mkdir", Err: err}
	}

	if err := save(destPath, rimg, codecFor(sourcePath), t.Quality); err != nil {
		return nil, err
	}

	return &ThumbMeta{X: rimg.Bounds().Dx(), Y: rimg.Bounds().Dy(), Path: destPath}, nil
}

func decode(path string) (image.Image, error) {
	if codecFor(path) == "avif" {
		return vipsDecode(path)
	}
	return imaging.Open(path, imaging.AutoOrientation(true))
}

// resizeToWidth scales img down to width, keeping the aspect ratio.
func resizeToWidth(img image.Image, width int) (image.Image, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 {
		return nil, fmt.Errorf("no X for %+v", img.Bounds())
	}
	if h == 0 {
		return nil, fmt.Errorf("no Y for %+v", img.Bounds())
	}

	if width <= 0 || w <= width {
		return img, nil
	}

	scale := float64(width) / float64(w)
	y := max(int(math.Round(float64(h)*scale)), 1)
	return transform.Resize(img, width, y, transform.Lanczos), nil
}

// save encodes into a hidden temp file and renames it over path, so a failed
// encode never leaves a partial thumbnail that looks fresh.
func save(path string, img image.Image, codec string, quality int) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".thumb-*")
	if err != nil {
		return &IOError{Path: path, Op: "create", Err: err}
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := f.Chmod(0o644); err != nil {
		f.Close()
		return &IOError{Path: tmp, Op: "chmod", Err: err}
	}

	if err := encode(f, img, codec, quality); err != nil {
		f.Close()
		return &TranscodeError{Path: path, Op: "encode", Err: err}
	}

	if err := f.Close(); err != nil {
		return &IOError{Path: path, Op: "write", Err: err}
	}

	if err := os.Rename(tmp, path); err != nil {
		return &IOError{Path: path, Op: "rename", Err: err}
	}
	return nil
}

func encode(w io.Writer, img image.Image, codec string, quality int) error {
	switch codec {
	case "png":
		return imgio.PNGEncoder()(w, img)
	case "webp", "avif":
		bs, err := vipsEncode(img, codec, quality)
		if err != nil {
			return err
		}
		_, err = w.Write(bs)
		return err
	default:
		return imgio.JPEGEncoder(quality)(w, img)
	}
}
