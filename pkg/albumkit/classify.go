package albumkit

import (
	"path/filepath"
	"strings"
)

// buildExtensions are the source formats the thumbnail build can transcode.
var buildExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".avif": true,
}

// IsSupportedImage returns true if path has an extension the thumbnail build accepts.
func IsSupportedImage(path string) bool {
	return buildExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsIndexableImage returns true if path can appear in the catalog. GIFs are
// listed as-is but never thumbnailed.
func IsIndexableImage(path string) bool {
	return IsSupportedImage(path) || strings.EqualFold(filepath.Ext(path), ".gif")
}

// IsCacheDirectory returns true if name is the reserved thumbnail directory.
func IsCacheDirectory(name string) bool {
	return name == ThumbDirName
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
