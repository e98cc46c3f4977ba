package albumkit

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFresh(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.jpg")
	thumb := filepath.Join(dir, "thumbs", "a.jpg")
	touch(t, src)

	now := time.Now()
	tests := []struct {
		name      string
		thumbTime *time.Time
		want      bool
	}{
		{name: "missing thumb"},
		{name: "older thumb", thumbTime: ptr(now.Add(-time.Hour))},
		{name: "same mtime", thumbTime: ptr(now), want: true},
		{name: "newer thumb", thumbTime: ptr(now.Add(time.Hour)), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.RemoveAll(filepath.Dir(thumb)))
			require.NoError(t, os.Chtimes(src, now, now))
			if tt.thumbTime != nil {
				touch(t, thumb)
				require.NoError(t, os.Chtimes(thumb, *tt.thumbTime, *tt.thumbTime))
			}
			assert.Equal(t, tt.want, IsFresh(src, thumb))
		})
	}
}

func TestIsFreshMissingSource(t *testing.T) {
	dir := t.TempDir()
	thumb := filepath.Join(dir, "thumbs", "a.jpg")
	touch(t, thumb)
	assert.False(t, IsFresh(filepath.Join(dir, "a.jpg"), thumb))
}

func TestCodecFor(t *testing.T) {
	for path, want := range map[string]string{
		"a.png":  "png",
		"a.PNG":  "png",
		"a.webp": "webp",
		"a.avif": "avif",
		"a.jpg":  "jpeg",
		"a.jpeg": "jpeg",
		"a.JPG":  "jpeg",
	} {
		assert.Equal(t, want, codecFor(path), path)
	}
}

func TestSynthesize(t *testing.T) {
	dir := t.TempDir()
	opts := ThumbOpts{Width: 900, Quality: 72}

	tests := []struct {
		name          string
		file          string
		width, height int
		wantX, wantY  int
		wantFormat    string
	}{
		{name: "wide jpeg is shrunk", file: "wide.jpg", width: 1800, height: 1200, wantX: 900, wantY: 600, wantFormat: "jpeg"},
		{name: "jpeg extension", file: "tall.jpeg", width: 1000, height: 2000, wantX: 900, wantY: 1800, wantFormat: "jpeg"},
		{name: "narrow png kept", file: "small.png", width: 320, height: 200, wantX: 320, wantY: 200, wantFormat: "png"},
		{name: "exact width kept", file: "exact.png", width: 900, height: 10, wantX: 900, wantY: 10, wantFormat: "png"},
		{name: "webp", file: "pic.webp", width: 1200, height: 300, wantX: 900, wantY: 225, wantFormat: "webp"},
		{name: "avif", file: "pic.avif", width: 1000, height: 500, wantX: 900, wantY: 450, wantFormat: "avif"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := filepath.Join(dir, tt.file)
			dest := filepath.Join(dir, "album", ThumbDirName, tt.file)
			createTestImage(t, src, tt.width, tt.height)

			tm, err := Synthesize(src, dest, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantX, tm.X)
			assert.Equal(t, tt.wantY, tm.Y)
			assert.Equal(t, dest, tm.Path)
			assert.LessOrEqual(t, tm.X, opts.Width)
			assert.LessOrEqual(t, tm.X, tt.width)
			assert.Equal(t, tt.wantFormat, formatOf(t, dest))

			if tt.wantFormat != "avif" {
				x, y := dimsOf(t, dest)
				assert.Equal(t, tt.wantX, x)
				assert.Equal(t, tt.wantY, y)
			}
		})
	}
}

func TestSynthesizeCorrupt(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.jpg")
	dest := filepath.Join(dir, "thumbs", "bad.jpg")
	touch(t, src)

	_, err := Synthesize(src, dest, ThumbOpts{Width: 900, Quality: 72})
	require.Error(t, err)

	var te *TranscodeError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "decode", te.Op)
	assert.Equal(t, src, te.Path)
	assert.NoFileExists(t, dest)
}

func TestSynthesizeUnwritable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	dir := t.TempDir()
	src := filepath.Join(dir, "a.jpg")
	createTestImage(t, src, 10, 10)

	ro := filepath.Join(dir, "ro")
	require.NoError(t, os.MkdirAll(ro, 0o555))

	_, err := Synthesize(src, filepath.Join(ro, "thumbs", "a.jpg"), ThumbOpts{Width: 900, Quality: 72})
	var ioe *IOError
	require.True(t, errors.As(err, &ioe), "got %v", err)
}

func TestSynthesizeLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.png")
	dest := filepath.Join(dir, "thumbs", "a.png")
	createTestImage(t, src, 50, 40)

	_, err := Synthesize(src, dest, ThumbOpts{Width: 900, Quality: 72})
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.png", entries[0].Name())
}

func TestResizeToWidth(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantX, wantY int
	}{
		{w: 1000, h: 1000, max: 900, wantX: 900, wantY: 900},
		{w: 3000, h: 1, max: 900, wantX: 900, wantY: 1},
		{w: 899, h: 300, max: 900, wantX: 899, wantY: 300},
		{w: 1001, h: 333, max: 1000, wantX: 1000, wantY: 333},
	}

	for _, tt := range tests {
		img := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
		got, err := resizeToWidth(img, tt.max)
		require.NoError(t, err)
		assert.Equal(t, tt.wantX, got.Bounds().Dx(), "%dx%d", tt.w, tt.h)
		assert.Equal(t, tt.wantY, got.Bounds().Dy(), "%dx%d", tt.w, tt.h)
	}

	_, err := resizeToWidth(image.NewRGBA(image.Rect(0, 0, 0, 10)), 900)
	assert.Error(t, err)
}

func ptr[T any](v T) *T { return &v }
