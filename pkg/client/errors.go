package client

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// APIError is the single error shape the transport returns.
// Status is the HTTP status code, or 0 when no response was received.
// Data is the server's error payload (json.RawMessage or body text) or a message string.
type APIError struct {
	Status int
	Data   any
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("network error: %s", e.message())
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.message())
}

func (e *APIError) message() string {
	switch d := e.Data.(type) {
	case string:
		return d
	case json.RawMessage:
		if msg := payloadMessage(d); msg != "" {
			return msg
		}
		return string(d)
	case nil:
		return ""
	default:
		return fmt.Sprint(d)
	}
}

func networkError(err error) *APIError {
	return &APIError{Data: err.Error()}
}

// AsAPIError extracts the *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus returns true if err (or any wrapped error) is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Status == code
	}
	return false
}

// IsNetwork reports whether err is a failure where no response was received.
func IsNetwork(err error) bool {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Status == 0
	}
	return false
}

// Message returns a human readable message for err, preferring the server's own wording.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := AsAPIError(err); ok {
		if msg := apiErr.message(); msg != "" {
			return msg
		}
	}
	return err.Error()
}

// payloadMessage looks for "message", "error" and then the first validation error.
func payloadMessage(data []byte) string {
	if !gjson.ValidBytes(data) {
		return ""
	}
	for _, path := range []string{"message", "error"} {
		if r := gjson.GetBytes(data, path); r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	var first string
	gjson.GetBytes(data, "errors").ForEach(func(_, v gjson.Result) bool {
		if v.IsArray() {
			v = v.Get("0")
		}
		first = v.String()
		return first == ""
	})
	return first
}
