// Package apierror provides the JSON error body returned by routes.
//
// Every failure response has the same shape:
//
//	{"error": "Internal Server Error", "requestId": "..."}
//
// The request id is omitted when none was assigned. Internal error details
// are never part of the body.
package apierror

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// InternalMessage is the client-facing message for unhandled failures.
const InternalMessage = "Internal Server Error"

// Error is a client-safe error response.
type Error struct {
	Status    int    `json:"-"`
	Message   string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Write sends an Error as a JSON HTTP response.
func Write(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status)

	if encErr := json.NewEncoder(w).Encode(err); encErr != nil {
		slog.Error("failed to encode error response", "err", encErr)
	}
}

// New returns an error with the given status and message.
func New(status int, msg, requestID string) *Error {
	return &Error{
		Status:    status,
		Message:   msg,
		RequestID: requestID,
	}
}

// Internal returns the generic 500 error for unexpected server failures.
func Internal(requestID string) *Error {
	return New(http.StatusInternalServerError, InternalMessage, requestID)
}
