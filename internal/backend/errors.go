package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ServerRejectedError is a non-2xx answer from the backend.
type ServerRejectedError struct {
	StatusCode int
	Detail     string // the backend's detail message, empty when none was sent
}

func (e *ServerRejectedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Detail)
}

// TransportError means the backend could not be reached or its answer could not be read.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Detail returns the backend detail message carried by err, if any.
func Detail(err error) string {
	var rejected *ServerRejectedError
	if errors.As(err, &rejected) {
		return rejected.Detail
	}
	return ""
}

// IsNotFoundError reports whether err is a 404 from the backend.
func IsNotFoundError(err error) bool {
	var rejected *ServerRejectedError
	return errors.As(err, &rejected) && rejected.StatusCode == http.StatusNotFound
}

// IsTransportError reports whether err is a network level failure.
func IsTransportError(err error) bool {
	var transport *TransportError
	return errors.As(err, &transport)
}

// parseDetail extracts the detail message from an error body. The backend sends
// either {"detail": "text"} or a validation list {"detail": [{"msg": "..."}]}.
func parseDetail(body []byte) string {
	var raw struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &raw); err != nil || len(raw.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
