package models

import "time"

// LicenseStatus is the cached outcome of the most recent license check.
type LicenseStatus struct {
	Valid     bool      `json:"valid"`
	License   string    `json:"license,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// ActivationRequest is the API payload for activating a license key.
type ActivationRequest struct {
	Key string `json:"key" binding:"required"`
}

// ActivationResult is the provider's answer to an activation attempt.
type ActivationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}
