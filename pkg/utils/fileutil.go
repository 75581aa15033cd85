package utils

import (
	"fmt"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaFilename synthesizes a unique output filename for one downloaded
// sample: {prefix}_{epoch-millis}_{index}.{ext}. The millisecond timestamp
// plus the per-operation sample index keeps concurrently-completing
// operations from colliding without any coordination.
func MediaFilename(prefix string, ts time.Time, index int, ext string) string {
	if ext == "" {
		ext = "mp4"
	}
	return fmt.Sprintf("%s_%d_%d.%s", prefix, ts.UnixMilli(), index, ext)
}

// ExtForMime maps a media content type to a filename extension.
func ExtForMime(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "video/mp4":
		return "mp4"
	case "video/webm":
		return "webm"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	default:
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			return strings.TrimPrefix(exts[0], ".")
		}
		return "mp4"
	}
}

// StorageKey builds a bucket key for a mirrored file.
func StorageKey(filename string) string {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)
	return fmt.Sprintf("generated/%s_%s%s", name, uuid.New().String()[:8], ext)
}

// LocalFileURL converts a local path into a file:// URL usable for preview
// or playback.
func LocalFileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}
