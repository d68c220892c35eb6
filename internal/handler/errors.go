package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pkordes/event-catalog/internal/domain"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code and a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// notFoundBody returns an ErrorResponse for a missing resource.
// The caller supplies the human-readable message (e.g. "event not found")
// because the handler is the layer that knows what was being looked up.
func notFoundBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "not_found", Message: message}}
}

// validationBody returns an ErrorResponse for a domain validation failure.
func validationBody(err error) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: unwrapMessage(err)}}
}

// requestBody returns an ErrorResponse for a request rejected before reaching
// the service layer (malformed JSON, non-numeric id, bad query parameter).
func requestBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "bad_request", Message: message}}
}

// unwrapMessage extracts the human-readable part of a domain error.
// A *domain.FieldError renders as e.g. "title should not be empty"; any other
// error falls back to its full text.
func unwrapMessage(err error) string {
	var fe *domain.FieldError
	if errors.As(err, &fe) {
		return fe.Error()
	}
	return err.Error()
}

// fail maps a service error to a status code and writes the error body.
// notFound is the message used for a bare domain.ErrNotFound.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var tooLarge *http.MaxBytesError
	var fe *domain.FieldError

	switch {
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge,
			ErrorResponse{Error: ErrorDetail{Code: "payload_too_large", Message: "request body too large"}})
	case errors.Is(err, domain.ErrNotFound) && errors.As(err, &fe):
		writeJSON(w, http.StatusNotFound, notFoundBody(fe.Error()))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, notFoundBody(notFound))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
	default:
		s.log.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError,
			ErrorResponse{Error: ErrorDetail{Code: "internal_error", Message: "internal server error"}})
	}
}

// writeJSON encodes body with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
