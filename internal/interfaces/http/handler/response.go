package handler

import "github.com/fincore/backend/internal/interfaces/http/dto"

// APIResponse documents the success envelope with a typed payload
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse documents the failure envelope
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// MessageData carries a human readable confirmation
// @Description Confirmation message
type MessageData struct {
	Message string `json:"message" example:"Session closed"`
}

// ValidityData answers a yes/no question about a date
// @Description Date validity
type ValidityData struct {
	Date  string `json:"date" example:"2024-03-04"`
	Valid bool   `json:"valid"`
}
