package api

import "github.com/danielgtaylor/huma/v2"

// Envelope provides a consistent JSON response structure.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`
}

// EnvelopeTransformer wraps successful response bodies in the standard
// envelope. Error bodies are already shaped by APIError and pass through.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if v == nil {
		return v, nil
	}
	if _, isErr := v.(*APIError); isErr {
		return v, nil
	}
	return Envelope{Success: status < "400", Data: v}, nil
}
