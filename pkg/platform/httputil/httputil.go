// Package httputil centralizes JSON encoding/decoding and error translation
// for the HTTP layer so handlers stay thin.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "landshare/pkg/domain-errors"
)

// errorBody is the wire shape for failures. Internal errors omit the
// description so infrastructure details never leak to clients.
type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// statusFor maps domain error codes to HTTP statuses.
func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput, dErrors.CodeZeroAmount:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized, dErrors.CodeRoleNotGranted:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeDuplicateProperty,
		dErrors.CodeAlreadyFractionalized, dErrors.CodeListingNotOpen,
		dErrors.CodePoolAlreadyExists:
		return http.StatusConflict
	case dErrors.CodeInsufficientBalance, dErrors.CodeNothingToClaim,
		dErrors.CodeMismatchedAttestation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders a coded domain error as JSON.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := statusFor(code)

	body := errorBody{Error: string(code)}
	if status != http.StatusInternalServerError {
		var coded *dErrors.Error
		if errors.As(err, &coded) {
			body.Description = coded.Message()
		}
	}

	WriteJSON(w, status, body)
}

// WriteJSON renders v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON decodes the request body into T, rejecting unknown fields.
// On failure it writes a bad_request response and returns ok=false.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var req T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(r.Context(), "request body rejected", "error", err)
		}
		WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed request body"))
		return req, false
	}
	return req, true
}
