package veo

// Wire shapes for the predictLongRunning protocol. Field names follow the
// provider's JSON exactly; absence and empty object are distinct on the wire,
// hence the pointer-heavy layout.

type inlineImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type referenceImage struct {
	Image         inlineImage `json:"image"`
	ReferenceType string      `json:"referenceType"`
}

const referenceTypeAsset = "asset"

type instance struct {
	Prompt string       `json:"prompt"`
	Image  *inlineImage `json:"image,omitempty"`
}

type parameters struct {
	AspectRatio     string           `json:"aspectRatio,omitempty"`
	LastFrame       *inlineImage     `json:"lastFrame,omitempty"`
	ReferenceImages []referenceImage `json:"referenceImages,omitempty"`
}

func (p *parameters) empty() bool {
	return p.AspectRatio == "" && p.LastFrame == nil && len(p.ReferenceImages) == 0
}

type predictRequest struct {
	Instances  []instance  `json:"instances"`
	Parameters *parameters `json:"parameters,omitempty"`
}

type predictResponse struct {
	Name string `json:"name"`
}

type generatedVideo struct {
	URI string `json:"uri"`
}

type generatedSample struct {
	Video generatedVideo `json:"video"`
}

type generateVideoResponse struct {
	GeneratedSamples []generatedSample `json:"generatedSamples"`
}

type operationResponse struct {
	Name     string `json:"name"`
	Done     bool   `json:"done"`
	Response *struct {
		GenerateVideoResponse generateVideoResponse `json:"generateVideoResponse"`
	} `json:"response,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Operation is an opaque handle to an in-flight server-side generation job.
type Operation struct {
	Name string
}

// Sample is one produced resource of a completed operation.
type Sample struct {
	URI string
}
