package authapi

import (
	"encoding/json"
	"errors"
	"fmt"
)

// BodyKind tags how a failure payload was understood. The auth and catalog
// services both answer errors as `{ errors?: []string, message?: string }`;
// anything else is Unrecognized and falls through to the caller's fallback
// message.
type BodyKind int

const (
	BodyUnrecognized BodyKind = iota
	BodyValidationErrors
	BodyMessage
)

// APIError is a non-2xx response from the auth or catalog service.
type APIError struct {
	Status int
	Kind   BodyKind
	Errors []string
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.UserMessage("request failed"))
}

// UserMessage applies the extraction policy: the first validation error
// wins, then the message field, then the operation-specific fallback.
func (e *APIError) UserMessage(fallback string) string {
	switch e.Kind {
	case BodyValidationErrors:
		return e.Errors[0]
	case BodyMessage:
		return e.Msg
	default:
		return fallback
	}
}

// DecodeError classifies a failure payload into the tagged variant.
func DecodeError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Kind: BodyUnrecognized}
	var payload struct {
		Errors  []string `json:"errors"`
		Message string   `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}
	switch {
	case len(payload.Errors) > 0 && payload.Errors[0] != "":
		apiErr.Kind = BodyValidationErrors
		apiErr.Errors = payload.Errors
	case payload.Message != "":
		apiErr.Kind = BodyMessage
		apiErr.Msg = payload.Message
	}
	return apiErr
}

// UserMessage extracts a human-readable message from any client error.
// Network and transport failures have no payload to mine, so they map to
// the fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage(fallback)
	}
	return fallback
}
