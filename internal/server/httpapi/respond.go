package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

const (
	maxBodySize = 1 << 20

	msgUnauthorized = "unauthorized"
	msgInternal     = "internal server error"
	msgBadBody      = "invalid request body"
	msgItemNotFound = "Item not found"
	msgEmailTaken   = "User with this email already exists"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeInternal answers 500 with the request ID so a report can be matched
// to the server log.
func writeInternal(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:     msgInternal,
		RequestID: RequestIDFromContext(r.Context()),
	})
}

// decodeJSON reads a single JSON object of type T from the request body.
// On failure it writes the error response and returns false.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return v, false
		}
		writeError(w, http.StatusBadRequest, msgBadBody)
		return v, false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return v, false
	}
	return v, true
}

// mapError translates a service error into a response. Errors that carry
// no caller-facing meaning are logged and answered with 500.
func (a *API) mapError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Msg)
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, msgItemNotFound)
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusBadRequest, msgEmailTaken)
	default:
		a.logger.Error(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error(),
			"internal", errors.Is(err, common.ErrorInternal),
		)
		writeInternal(w, r)
	}
}
