// Package albumkit discovers album images on disk, keeps a thumbnail cache
// next to them up to date, and folds both into a queryable album catalog.
package albumkit

const (
	// ThumbDirName is the reserved directory name holding thumbnails inside each album.
	ThumbDirName = "thumbs"

	// DefaultWidth is the maximum thumbnail width in pixels.
	DefaultWidth = 900

	// DefaultQuality is applied to every lossy codec that accepts a quality setting.
	DefaultQuality = 72
)

// Config holds configuration for a thumbnail build.
type Config struct {
	Root    string
	Width   int
	Quality int
	// Workers caps parallel transcodes. Zero means one per available CPU.
	Workers int
}

func (c *Config) width() int {
	if c.Width <= 0 {
		return DefaultWidth
	}
	return c.Width
}

func (c *Config) quality() int {
	if c.Quality <= 0 {
		return DefaultQuality
	}
	return c.Quality
}

func (c *Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return workerCount(1.0, 0)
}
