package veo

import (
	"errors"
	"fmt"
)

// ErrNoContent is returned when an operation completes without producing
// any samples. The job itself "succeeded" on the provider side, but the
// caller cannot act on an empty result.
var ErrNoContent = errors.New("operation completed without generated samples")

// SubmissionError means the provider rejected the creation request.
type SubmissionError struct {
	StatusCode int
	Message    string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed (status %d): %s", e.StatusCode, e.Message)
}

// PollingError means a status-check call itself failed, as opposed to the
// underlying job failing.
type PollingError struct {
	StatusCode int
	Message    string
}

func (e *PollingError) Error() string {
	return fmt.Sprintf("polling failed (status %d): %s", e.StatusCode, e.Message)
}

// DownloadError means fetching one produced resource failed. It is non-fatal
// to the surrounding operation.
type DownloadError struct {
	StatusCode int
	URI        string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download failed (status %d): %s", e.StatusCode, e.URI)
}
