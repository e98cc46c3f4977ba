package albumkit

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// createTestImage writes a gradient image of the given size, encoded by the
// extension of path. Formats that need libvips are skipped if it cannot encode them.
func createTestImage(t *testing.T, path string, width, height int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / width),
				G: uint8((y * 255) / height),
				B: 128,
				A: 255,
			})
		}
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	var buf bytes.Buffer
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".jpg", ".jpeg":
		require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	case ".png", ".gif":
		require.NoError(t, png.Encode(&buf, img))
	case ".webp", ".avif":
		bs, err := vipsEncode(img, ext[1:], 90)
		if err != nil {
			t.Skipf("libvips cannot encode %s: %v", ext, err)
		}
		buf.Write(bs)
	default:
		t.Fatalf("unsupported test image format: %s", ext)
	}

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// touch writes a non-image file.
func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
}

// formatOf reports the container format of an encoded image file.
func formatOf(t *testing.T, path string) string {
	t.Helper()
	bs, err := os.ReadFile(path)
	require.NoError(t, err)

	if len(bs) > 12 && string(bs[4:8]) == "ftyp" && strings.HasPrefix(string(bs[8:12]), "avi") {
		return "avif"
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(bs))
	require.NoError(t, err)
	return format
}

// dimsOf reads the pixel size of an encoded image from its header.
func dimsOf(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	ic, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return ic.Width, ic.Height
}
