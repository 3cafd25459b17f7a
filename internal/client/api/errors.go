package api

import (
	"encoding/json"
	"fmt"
)

// NetworkError means the request never reached the backend or the response
// never arrived. It is independent of any HTTP status.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response. Message holds whatever human-readable
// detail the body carried, Body the raw payload for callers that want more.
type HTTPError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d", e.Status)
}

// extractMessage pulls the detail out of an error body. The backend answers
// with "message", validation layers with "error", the JWT layer with "msg";
// collect whichever are present, in that order.
func extractMessage(body []byte) string {
	var fields struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	out := ""
	for _, part := range []string{fields.Message, fields.Error, fields.Msg} {
		if part == "" {
			continue
		}
		if out != "" {
			out += " - "
		}
		out += part
	}
	return out
}
