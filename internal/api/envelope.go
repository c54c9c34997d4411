package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is sent as "v" so clients can detect format changes.
const envelopeVersion = 1

// Envelope is the JSON shape of every huma response body.
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps handler output and errors in an Envelope.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return Envelope{
			Version: envelopeVersion,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}
	return Envelope{Version: envelopeVersion, Success: true, Data: v}, nil
}
