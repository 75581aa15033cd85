package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMediaFilename_UniqueUnderTimestampCollision(t *testing.T) {
	ts := time.UnixMilli(1724900000000)

	// Two samples of the same operation share a timestamp; the index keeps
	// them apart.
	a := MediaFilename("veo", ts, 0, "mp4")
	b := MediaFilename("veo", ts, 1, "mp4")

	assert.Equal(t, "veo_1724900000000_0.mp4", a)
	assert.Equal(t, "veo_1724900000000_1.mp4", b)
	assert.NotEqual(t, a, b)
}

func TestMediaFilename_DefaultExt(t *testing.T) {
	name := MediaFilename("veo", time.UnixMilli(1), 0, "")
	assert.True(t, strings.HasSuffix(name, ".mp4"))
}

func TestExtForMime(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"video/mp4", "mp4"},
		{"video/webm", "webm"},
		{"image/jpeg", "jpg"},
		{"image/png; charset=binary", "png"},
		{"application/octet-stream", "mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtForMime(tt.contentType))
		})
	}
}

func TestStorageKey(t *testing.T) {
	key := StorageKey("veo_1_0.mp4")
	assert.True(t, strings.HasPrefix(key, "generated/veo_1_0_"))
	assert.True(t, strings.HasSuffix(key, ".mp4"))
	assert.NotEqual(t, key, StorageKey("veo_1_0.mp4"))
}

func TestLocalFileURL(t *testing.T) {
	url := LocalFileURL("/tmp/out/veo_1_0.mp4")
	assert.Equal(t, "file:///tmp/out/veo_1_0.mp4", url)
}
