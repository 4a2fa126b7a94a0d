package api

import (
	"errors"
	"net/http"

	"overlay-stream/model"
	"overlay-stream/storage"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type overlayResponse struct {
	Message string         `json:"message,omitempty"`
	Overlay *model.Overlay `json:"overlay"`
}

type overlaysResponse struct {
	Overlays []model.Overlay `json:"overlays"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// overlayID parses the {id} path parameter, rejecting anything that is not a
// well-formed ObjectID before it reaches the store.
func overlayID(r *http.Request) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, "id")
	if !primitive.IsValidObjectID(raw) {
		return primitive.NilObjectID, errInvalidOverlayID
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, errInvalidOverlayID
	}
	return id, nil
}

func (h *Handlers) handleCreateOverlay(w http.ResponseWriter, r *http.Request) {
	var req createOverlayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		h.respondError(w, r, err)
		return
	}

	overlay := req.toOverlay()
	id, err := h.Overlays.InsertOverlay(r.Context(), overlay)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	overlay.ID = id

	h.Log.Info("created overlay",
		zap.String("id", id.Hex()),
		zap.String("type", overlay.Type),
		zap.String("content", truncate(overlay.Content, 30)),
	)
	h.writeJSON(w, http.StatusCreated, overlayResponse{
		Message: "Overlay created successfully",
		Overlay: &overlay,
	})
}

func (h *Handlers) handleListOverlays(w http.ResponseWriter, r *http.Request) {
	overlays, err := h.Overlays.FindOverlays(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if overlays == nil {
		overlays = []model.Overlay{}
	}

	h.writeJSON(w, http.StatusOK, overlaysResponse{Overlays: overlays})
}

func (h *Handlers) handleGetOverlay(w http.ResponseWriter, r *http.Request) {
	id, err := overlayID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	overlay, err := h.Overlays.FindOverlay(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		h.respondError(w, r, errOverlayNotFound)
		return
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, overlayResponse{Overlay: overlay})
}

// handleUpdateOverlay applies a partial update and answers with the document
// as stored afterwards, not with an echo of the request.
func (h *Handlers) handleUpdateOverlay(w http.ResponseWriter, r *http.Request) {
	id, err := overlayID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req updateOverlayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		h.respondError(w, r, err)
		return
	}

	matched, err := h.Overlays.UpdateOverlay(r.Context(), id, req.toUpdate())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !matched {
		h.respondError(w, r, errOverlayNotFound)
		return
	}

	overlay, err := h.Overlays.FindOverlay(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted between the update and the read.
		h.respondError(w, r, errOverlayNotFound)
		return
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.Log.Info("updated overlay", zap.String("id", id.Hex()))
	h.writeJSON(w, http.StatusOK, overlayResponse{
		Message: "Overlay updated successfully",
		Overlay: overlay,
	})
}

func (h *Handlers) handleDeleteOverlay(w http.ResponseWriter, r *http.Request) {
	id, err := overlayID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	deleted, err := h.Overlays.DeleteOverlay(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !deleted {
		h.respondError(w, r, errOverlayNotFound)
		return
	}

	h.Log.Info("deleted overlay", zap.String("id", id.Hex()))
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Overlay deleted successfully"})
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
