package api

import (
	"errors"
	"net/http"

	"overlay-stream/storage"

	"go.uber.org/zap"
)

// ValidationError is a client error detected before any store call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError reports a well-formed key with no matching document.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

var (
	errInvalidOverlayID = &ValidationError{Message: "Invalid overlay ID"}
	errOverlayNotFound  = &NotFoundError{Message: "Overlay not found"}
	errLogoNotFound     = &NotFoundError{Message: "Logo not found"}
)

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		storageErr    *storage.Error
		maxBytesErr   *http.MaxBytesError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
	case errors.As(err, &maxBytesErr):
		status = http.StatusRequestEntityTooLarge
	case errors.As(err, &storageErr):
		h.Log.Error("storage operation failed",
			zap.String("op", storageErr.Op),
			zap.String("path", r.URL.Path),
			zap.Error(storageErr.Err),
		)
	default:
		h.Log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}

	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}
