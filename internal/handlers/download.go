package handlers

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ai-tryon-studio/internal/imaging"
)

// handleDownload exposes one image of a history item as a file attachment
// with a time-suffixed filename.
func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	m := h.machine(r)

	item, ok := m.History().Find(mux.Vars(r)["id"])
	if !ok {
		writeJSON(w, http.StatusNotFound, apiError{Error: "unknown history item"})
		return
	}

	encoded := item.ResultImage
	switch r.URL.Query().Get("image") {
	case "person":
		encoded = item.PersonImage
	case "cloth":
		encoded = item.ClothImage
	case "", "result":
	default:
		writeJSON(w, http.StatusBadRequest, apiError{Error: "image must be person, cloth or result"})
		return
	}

	raw, err := base64.StdEncoding.DecodeString(imaging.StripEnvelope(encoded))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "stored image is not decodable"})
		return
	}

	mimeType := imaging.MimeType(encoded)
	ext := ".png"
	if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
		ext = exts[0]
	}

	filename := fmt.Sprintf("tryon-%d%s", time.Now().UnixMilli(), ext)
	w.Header().Set("content-type", mimeType)
	w.Header().Set("content-disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
