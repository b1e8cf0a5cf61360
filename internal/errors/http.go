// Package errors defines the JSON error envelope and the mapping from
// domain errors to stable HTTP error codes.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/printforge/slicerd/internal/server/middleware"
	"github.com/printforge/slicerd/pkg/profile"
	"github.com/printforge/slicerd/pkg/slicer"
)

// Stable error codes surfaced to callers.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeBusy             = "BUSY"
	CodeTimeout          = "TIMEOUT"
	CodeEngineFailure    = "ENGINE_FAILURE"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternal         = "INTERNAL_ERROR"
)

// PayloadTooLargeError reports a request body over the configured cap.
type PayloadTooLargeError struct {
	Limit int64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("file too large, maximum upload size is %d bytes", e.Limit)
}

// ErrorDetail is the payload inside the envelope.
type ErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// HTTPErrorResponse is the JSON envelope for every error response.
type HTTPErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// WriteError emits the standard envelope with the given status code.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	resp := HTTPErrorResponse{Error: ErrorDetail{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetRequestID(r.Context()),
		Details:   details,
	}}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// RespondWithError maps a domain error onto the envelope vocabulary.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, profile.ErrInvalidCategory),
		errors.Is(err, profile.ErrInvalidName),
		errors.Is(err, profile.ErrInvalidDocument),
		errors.Is(err, slicer.ErrUnsupportedModel):
		WriteError(w, r, http.StatusBadRequest, CodeValidation, err.Error(), nil)

	case profile.IsNotFound(err), slicer.IsNotFound(err):
		WriteError(w, r, http.StatusNotFound, CodeNotFound, err.Error(), nil)

	case profile.IsConflict(err):
		WriteError(w, r, http.StatusConflict, CodeConflict, err.Error(), nil)

	case slicer.IsBusy(err):
		WriteError(w, r, http.StatusConflict, CodeBusy, "Slicer is busy. Try again later.",
			map[string]any{"busy": true})

	case slicer.IsTimeout(err):
		WriteError(w, r, http.StatusGatewayTimeout, CodeTimeout, err.Error(), nil)

	case slicer.IsEngineFailure(err):
		var ee *slicer.EngineError
		errors.As(err, &ee)
		WriteError(w, r, http.StatusInternalServerError, CodeEngineFailure, err.Error(),
			map[string]any{
				"exit_code": ee.ExitCode,
				"stdout":    ee.Stdout,
				"stderr":    ee.Stderr,
			})

	default:
		var tooLarge *PayloadTooLargeError
		if errors.As(err, &tooLarge) {
			WriteError(w, r, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, tooLarge.Error(), nil)
			return
		}
		WriteError(w, r, http.StatusInternalServerError, CodeInternal, "Internal server error", nil)
	}
}
