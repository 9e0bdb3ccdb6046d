// Package httpapi provides HTTP handlers and data transfer objects for the propstats API.
package httpapi

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse represents the aggregate stats response
type StatsResponse struct {
	PropositionCount int64 `json:"proposition_count"`
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
