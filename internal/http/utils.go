package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// WriteJSONError writes a JSON error response with the given message and status code.
// It sets the Content-Type header to application/json and automatically formats
// the response as {"error": "message"}.
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON writes a JSON response with the given status code and data.
// It sets the Content-Type header to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// StatusForError maps service errors onto HTTP status codes.
func StatusForError(err error) int {
	var (
		validationErr domain.ValidationError
		notFound      *domain.ErrNotFound
		unauthorized  *domain.ErrUnauthorized
		forbidden     *domain.ErrForbidden
		quotaErr      *domain.ErrQuotaExceeded
		upstream      *domain.ErrUpstream
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &quotaErr):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrNoQwenKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with the status matching its type. Server
// errors are logged.
func writeServiceError(w http.ResponseWriter, log logger.Logger, operation string, err error) {
	status := StatusForError(err)
	if status >= http.StatusInternalServerError {
		log.WithField("operation", operation).WithField("error", err.Error()).Error("Request failed")
	}

	var quotaErr *domain.ErrQuotaExceeded
	if errors.As(err, &quotaErr) {
		writeJSON(w, status, map[string]interface{}{
			"error":    err.Error(),
			"resource": string(quotaErr.Resource),
			"limit":    quotaErr.Limit,
			"used":     quotaErr.Used,
		})
		return
	}
	WriteJSONError(w, err.Error(), status)
}

// decodeJSON decodes a bounded JSON body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return domain.NewValidationError("failed to read request body")
	}
	if len(body) > maxBodyBytes {
		return domain.NewValidationError("request body too large")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	return nil
}

// queryInt reads an integer query parameter, returning def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}

// pathMovieID parses the {movieId} path segment.
func pathMovieID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("movieId"))
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("invalid movie id")
	}
	return id, nil
}
