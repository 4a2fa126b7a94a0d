package api

import (
	"errors"
	"net/http"

	"overlay-stream/model"
	"overlay-stream/storage"

	"go.uber.org/zap"
)

type settingsResponse struct {
	Message  string          `json:"message,omitempty"`
	Settings *model.Settings `json:"settings"`
}

// handleGetSettings answers {"settings": null} until the first save.
func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.GetSettings(r.Context(), model.SettingsTypeRTSP)
	if errors.Is(err, storage.ErrNotFound) {
		h.writeJSON(w, http.StatusOK, settingsResponse{})
		return
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, settingsResponse{Settings: settings})
}

func (h *Handlers) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var req saveSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		h.respondError(w, r, &ValidationError{Message: "RTSP URL is required"})
		return
	}

	settings := model.Settings{Type: model.SettingsTypeRTSP, RTSPURL: req.RTSPURL}
	if err := h.Settings.SaveSettings(r.Context(), settings); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.Log.Info("saved RTSP settings", zap.String("rtsp_url", truncate(settings.RTSPURL, 50)))
	h.writeJSON(w, http.StatusOK, settingsResponse{
		Message:  "RTSP settings saved successfully",
		Settings: &settings,
	})
}
