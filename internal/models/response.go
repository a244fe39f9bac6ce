// Package models holds the JSON envelopes shared by handlers and middleware
package models

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Dataset   bool   `json:"dataset_loaded"`
}

// ListResponse wraps a plain list of names
type ListResponse struct {
	Items []string `json:"items"`
	Count int      `json:"count"`
}

// NewListResponse creates a ListResponse; a nil slice encodes as []
func NewListResponse(items []string) ListResponse {
	if items == nil {
		items = []string{}
	}
	return ListResponse{Items: items, Count: len(items)}
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
