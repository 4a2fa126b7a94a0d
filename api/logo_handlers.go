package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"overlay-stream/model"
	"overlay-stream/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultMaxLogoBytes = 5 << 20
	multipartOverhead   = 64 << 10
)

type logoResponse struct {
	Message string     `json:"message"`
	Logo    model.Logo `json:"logo"`
}

// handleUploadLogo accepts a multipart "file" field and stores it as a
// normalised PNG. The returned URL can be used as the content of a logo
// overlay.
func (h *Handlers) handleUploadLogo(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.MaxLogoBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxLogoBytes
	}

	if r.ContentLength > maxBytes+multipartOverhead {
		h.Log.Warn("logo exceeds size limit", zap.Int64("content_length", r.ContentLength), zap.Int64("limit", maxBytes))
		h.respondError(w, r, &http.MaxBytesError{Limit: maxBytes})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, maxBytesErr)
			return
		}
		h.respondError(w, r, &ValidationError{Message: "Invalid multipart form"})
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, r, &ValidationError{Message: "No file found in the request"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		h.respondError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}
	if int64(len(data)) > maxBytes {
		h.respondError(w, r, &http.MaxBytesError{Limit: maxBytes})
		return
	}

	logo, err := h.Logos.SaveLogo(data)
	if errors.Is(err, storage.ErrInvalidImage) {
		h.respondError(w, r, &ValidationError{Message: "File is not a supported image"})
		return
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	logo.URL = "/api/logos/" + logo.Name

	h.Log.Info("logo uploaded",
		zap.String("filename", header.Filename),
		zap.String("name", logo.Name),
		zap.Int("width", logo.Width),
		zap.Int("height", logo.Height),
	)
	h.writeJSON(w, http.StatusCreated, logoResponse{Message: "Logo uploaded successfully", Logo: logo})
}

func (h *Handlers) handleGetLogo(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	file, err := h.Logos.OpenLogo(name)
	switch {
	case errors.Is(err, storage.ErrInvalidLogoName):
		h.respondError(w, r, &ValidationError{Message: "Invalid logo name"})
		return
	case errors.Is(err, storage.ErrNotFound):
		h.respondError(w, r, errLogoNotFound)
		return
	case err != nil:
		h.respondError(w, r, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		h.respondError(w, r, fmt.Errorf("stat logo: %w", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	http.ServeContent(w, r, name, info.ModTime(), file)
}
