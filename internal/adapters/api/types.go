// Package api provides an HTTP adapter for Hauler: REST endpoints to start,
// cancel and inspect copy jobs plus SSE event streaming for progress.
package api

// APIResponse wraps all API responses with a consistent structure.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StartCopyRequest is the request body for starting a copy job.
type StartCopyRequest struct {
	SourcePath      string `json:"sourcePath"`
	DestinationPath string `json:"destinationPath"`
	Resume          bool   `json:"resume,omitempty"`
}

// ProbeRequest is the request body for a destination writability probe.
type ProbeRequest struct {
	DestinationPath string `json:"destinationPath"`
}
