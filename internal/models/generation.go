package models

import "time"

const (
	StatusIdle      = "idle"
	StatusLoading   = "loading"
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusCancelled = "cancelled"
)

const (
	AspectRatioLandscape = "16:9"
	AspectRatioPortrait  = "9:16"
	AspectRatioSquare    = "1:1"
)

// MaxReferenceImages bounds the reference-image list accepted per request.
const MaxReferenceImages = 3

// InputImage is an encoded image supplied as generation input.
type InputImage struct {
	Data     string `json:"data"`      // base64 encoded bytes
	MimeType string `json:"mime_type"` // e.g. image/jpeg
}

// GenerationRequest describes a single generation. Immutable once built;
// the orchestrator never mutates it.
type GenerationRequest struct {
	Prompt          string       `json:"prompt" binding:"required"`
	Model           string       `json:"model"`
	APIKey          string       `json:"-"`
	AspectRatio     string       `json:"aspect_ratio,omitempty"`
	OutputDir       string       `json:"output_dir,omitempty"`
	Image           *InputImage  `json:"image,omitempty"`
	LastFrame       *InputImage  `json:"last_frame,omitempty"`
	ReferenceImages []InputImage `json:"reference_images,omitempty"`
}

// GenerationResult accumulates the outcome of one generation. Only
// successfully downloaded samples appear in PreviewURLs/LocalPaths, so the
// two lists always have the same length.
type GenerationResult struct {
	Status      string    `json:"status"`
	PreviewURLs []string  `json:"preview_urls,omitempty"`
	LocalPaths  []string  `json:"local_paths,omitempty"`
	Error       string    `json:"error,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Terminal reports whether no further updates will follow for this result.
func (r *GenerationResult) Terminal() bool {
	return r.Status == StatusSuccess || r.Status == StatusError || r.Status == StatusCancelled
}
