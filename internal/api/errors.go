package api

import (
	"errors"
	"net/http"

	"resume-skills/internal/cv"
	"resume-skills/internal/llm"

	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps pipeline failures to HTTP status codes: upload and format
// problems are the caller's, vocabulary and provider problems are ours.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, cv.ErrNoFileProvided),
		errors.Is(err, cv.ErrUnsupportedFormat),
		errors.Is(err, cv.ErrCorruptDocument),
		errors.Is(err, cv.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrProviderTransport):
		return http.StatusBadGateway
	case errors.Is(err, llm.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		zap.L().Info("request rejected", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
