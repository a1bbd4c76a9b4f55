package remote

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Kind classifies why a remote call failed. Each kind gets its own message.
type Kind string

const (
	// KindToken: the identity provider had no token, no request was sent.
	KindToken Kind = "token"
	// KindTransport: the request did not complete.
	KindTransport Kind = "transport"
	// KindStatus: the server answered with a non-2xx status.
	KindStatus Kind = "status"
	// KindShape: the server answered 2xx but the body failed validation.
	KindShape Kind = "shape"
	// KindInput: the call was refused locally before any request.
	KindInput Kind = "input"
)

// Error is returned by every Client operation. Message is safe to show to the
// user; Err carries the detail that goes to the logs.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

const maxErrorBody = 64 << 10

// ParseFetchError turns a failed response into a readable message. It prefers
// the server's own "message" field and never fails.
func ParseFetchError(resp *http.Response) string {
	fallback := fmt.Sprintf("Request failed with status %d", resp.StatusCode)
	if resp.Body == nil {
		return fallback
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return fallback
	}
	var payload struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == nil || *payload.Message == "" {
		return fallback
	}
	return *payload.Message
}

// HTTPStatus is the status the BFF answers with for this failure.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInput:
		return http.StatusBadRequest
	case KindToken:
		return http.StatusUnauthorized
	case KindStatus:
		if e.Status >= 400 && e.Status <= 599 {
			return e.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}
