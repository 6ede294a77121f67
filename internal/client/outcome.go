package client

import (
	"encoding/json"
)

// Outcome is the uniform result of a marketplace call after normalization.
// OK mirrors the endpoint's success flag; Message carries the server's
// message verbatim when one was provided.
type Outcome struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// flagField names the boolean success field an endpoint uses. Most
// endpoints reply {status: bool, ...}; the complete-lead endpoint replies
// {success: bool, ...}. The adapter tolerates the inconsistency so call
// sites never branch on field names.
type flagField string

const (
	flagStatus  flagField = "status"
	flagSuccess flagField = "success"
)

// envelope is the raw marketplace response shape.
type envelope struct {
	Status  *bool           `json:"status"`
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// outcome normalizes the envelope using the endpoint-appropriate flag.
// A missing flag reads as failure.
func (e *envelope) outcome(flag flagField) Outcome {
	ok := false
	switch flag {
	case flagSuccess:
		ok = e.Success != nil && *e.Success
	default:
		ok = e.Status != nil && *e.Status
	}

	return Outcome{OK: ok, Message: e.Message}
}
