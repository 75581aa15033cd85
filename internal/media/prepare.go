package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/namngocngo2210/veo3/internal/config"
	"github.com/namngocngo2210/veo3/internal/models"

	// Register webp decoding for image.Decode.
	_ "golang.org/x/image/webp"
)

// Preparer normalizes user-supplied input images before they are submitted
// inline: oversized images are fitted within the configured edge and
// re-encoded as JPEG to keep request bodies small.
type Preparer struct {
	maxEdge int
	quality int
}

func NewPreparer(cfg config.MediaConfig) *Preparer {
	if cfg.MaxImageEdge <= 0 {
		cfg.MaxImageEdge = 2048
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 85
	}
	return &Preparer{maxEdge: cfg.MaxImageEdge, quality: cfg.JPEGQuality}
}

// Prepare validates raw image bytes and returns them as an inline input
// image. Images already within bounds keep their original bytes and format.
func (p *Preparer) Prepare(data []byte, contentType string) (*models.InputImage, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= p.maxEdge && bounds.Dy() <= p.maxEdge {
		return &models.InputImage{
			Data:     base64.StdEncoding.EncodeToString(data),
			MimeType: contentType,
		}, nil
	}

	fitted := imaging.Fit(img, p.maxEdge, p.maxEdge, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &models.InputImage{
		Data:     base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType: "image/jpeg",
	}, nil
}
