package handlers

import (
	"net/http"

	apperrors "github.com/printforge/slicerd/internal/errors"
)

// httpErrorResponder is the pluggable error writer used by all handlers.
// Tests swap it to observe error paths without decoding envelopes.
var httpErrorResponder = defaultHTTPErrorResponder

func defaultHTTPErrorResponder(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.RespondWithError(w, r, err)
}

// SetHTTPErrorResponder replaces the error writer. Passing nil resets to
// the default.
func SetHTTPErrorResponder(f func(http.ResponseWriter, *http.Request, error)) {
	if f == nil {
		httpErrorResponder = defaultHTTPErrorResponder
		return
	}
	httpErrorResponder = f
}

// ResetHTTPErrorResponder restores the default error writer.
func ResetHTTPErrorResponder() {
	httpErrorResponder = defaultHTTPErrorResponder
}

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	httpErrorResponder(w, r, err)
}
