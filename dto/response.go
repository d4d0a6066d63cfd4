package dto

import "errors"

// Custom errors
var (
	ErrNoDocument    = errors.New("a document image is required")
	ErrNoCredentials = errors.New("no API credential configured")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ExtractionResponse is the final response structure for an extraction call
type ExtractionResponse struct {
	Record          *KYCRecord `json:"record"`
	ModelUsed       string     `json:"model_used"`
	ConfidenceScore float64    `json:"confidence_score"`
	Warnings        []string   `json:"warnings,omitempty"`
	ProcessedAt     string     `json:"processed_at"`
}

// RecordsResponse lists every record currently in the store
type RecordsResponse struct {
	Count   int          `json:"count"`
	Records []*KYCRecord `json:"records"`
}

// CredentialsResponse reports the outcome of an API credential check
type CredentialsResponse struct {
	Valid  bool     `json:"valid"`
	Models []string `json:"models,omitempty"`
}
