package albumkit

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
	"k8s.io/klog/v2"
)

var (
	vipsOnce    sync.Once
	vipsMu      sync.Mutex
	vipsRunning bool
)

// startVips starts libvips on first use. It is never restarted once Shutdown is called.
func startVips() {
	vipsOnce.Do(func() {
		vips.LoggingSettings(func(domain string, level vips.LogLevel, msg string) {
			switch level {
			case vips.LogLevelError, vips.LogLevelCritical:
				klog.Errorf("[%s] %s", domain, msg)
			case vips.LogLevelWarning:
				klog.Warningf("[%s] %s", domain, msg)
			default:
				klog.V(2).Infof("[%s] %s", domain, msg)
			}
		}, vips.LogLevelWarning)

		// Parallelism comes from the build's worker pool, not from vips.
		vips.Startup(&vips.Config{
			ConcurrencyLevel: 1,
			MaxCacheMem:      50 * 1024 * 1024,
			MaxCacheSize:     100,
		})

		vipsMu.Lock()
		vipsRunning = true
		vipsMu.Unlock()
		klog.V(1).Infof("libvips %s started", vips.Version)
	})
}

// Shutdown releases libvips resources. Call once before the process exits.
func Shutdown() {
	vipsMu.Lock()
	defer vipsMu.Unlock()
	if vipsRunning {
		vips.Shutdown()
		vipsRunning = false
	}
}

// vipsDecode loads formats the Go image decoders cannot read, such as AVIF.
func vipsDecode(path string) (image.Image, error) {
	startVips()

	ref, err := vips.LoadImageFromFile(path, vips.NewImportParams())
	if err != nil {
		return nil, fmt.Errorf("vips load: %w", err)
	}
	defer ref.Close()

	if err := ref.AutoRotate(); err != nil {
		return nil, fmt.Errorf("vips autorotate: %w", err)
	}

	bs, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, fmt.Errorf("vips export: %w", err)
	}

	return imaging.Decode(bytes.NewReader(bs))
}

// vipsEncode encodes img as WebP or AVIF at the given quality.
func vipsEncode(img image.Image, format string, quality int) ([]byte, error) {
	startVips()

	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return nil, fmt.Errorf("png stage: %w", err)
	}

	ref, err := vips.NewImageFromBuffer(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("vips load: %w", err)
	}
	defer ref.Close()

	var bs []byte
	switch format {
	case "webp":
		p := vips.NewWebpExportParams()
		p.Quality = quality
		p.StripMetadata = true
		bs, _, err = ref.ExportWebp(p)
	case "avif":
		p := vips.NewAvifExportParams()
		p.Quality = quality
		p.StripMetadata = true
		bs, _, err = ref.ExportAvif(p)
	default:
		return nil, fmt.Errorf("vips cannot encode %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("vips export %s: %w", format, err)
	}
	return bs, nil
}
