// Package api contains the HTTP API contracts of the Stress PnL service.
// Version v1 represents the current stable API version.
package api

import (
	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

// Workbook API Requests

// PeerComparisonRequest is the body of the peer endpoints
type PeerComparisonRequest struct {
	Selection domain.Selection `json:"selection"`
	domain.PeerRequest
}

// Responses

// Response is the envelope of every successful JSON response
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

// Success wraps data in a success envelope
func Success(data interface{}) Response {
	return Response{Status: "success", Data: data}
}

// SavedExport reports where a server-side export was written
type SavedExport struct {
	FileName string `json:"file_name"`
	Path     string `json:"path"`
	Bytes    int    `json:"bytes"`
}
