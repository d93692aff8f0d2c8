package handler

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/axiompay/internal/adapter/http/dto"
	"github.com/iho/axiompay/internal/domain"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response outside the category vocabulary, such
// as unknown routes.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Status:  dto.StatusError,
		Message: message,
	})
}

// writeFailure translates err into the stable caller vocabulary. Internal
// errors are logged in full and answered with an opaque message.
func writeFailure(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	failure := domain.Translate(err)
	status := statusForCategory(failure.Category)

	ev := logger.Warn()
	if status >= http.StatusInternalServerError {
		ev = logger.Error()
	}
	ev.Err(err).
		Str("category", string(failure.Category)).
		Str("code", failure.Code).
		Str("request_id", chimiddleware.GetReqID(r.Context())).
		Str("path", r.URL.Path).
		Msg("request failed")

	writeJSON(w, status, dto.ErrorFromFailure(failure))
}

// statusForCategory maps error categories to HTTP status codes.
func statusForCategory(c domain.Category) int {
	switch c {
	case domain.CategoryInvalidRequest:
		return http.StatusBadRequest
	case domain.CategoryLedgerRejected:
		return http.StatusUnprocessableEntity
	case domain.CategoryTransientNetworkFailure, domain.CategoryConfiguration:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Invalid("body", "must be a JSON object")
	}
	return nil
}
