package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"ai-tryon-studio/internal/catalog"
	"ai-tryon-studio/internal/history"
	"ai-tryon-studio/internal/wizard"
)

type stateResponse struct {
	Step             int    `json:"step"`
	SelectedPersonID string `json:"selectedPersonId,omitempty"`
	SelectedClothID  string `json:"selectedClothId,omitempty"`
	PersonImage      string `json:"personImage,omitempty"`
	ClothImage       string `json:"clothImage,omitempty"`
	ResultImage      string `json:"resultImage,omitempty"`
	ClothPrompt      string `json:"clothPrompt"`
	GeneratingCloth  bool   `json:"generatingCloth"`
	GeneratingResult bool   `json:"generatingResult"`
	ErrorMessage     string `json:"errorMessage,omitempty"`
	HistoryLength    int    `json:"historyLength"`
	Configured       bool   `json:"configured"`
}

func (h *Handler) snapshot(m *wizard.Machine) stateResponse {
	st := m.Snapshot()
	return stateResponse{
		Step:             int(st.Step),
		SelectedPersonID: st.SelectedPersonID,
		SelectedClothID:  st.SelectedClothID,
		PersonImage:      m.DisplayPerson(),
		ClothImage:       m.DisplayCloth(),
		ResultImage:      st.ResultImage,
		ClothPrompt:      st.ClothPrompt,
		GeneratingCloth:  st.GeneratingCloth,
		GeneratingResult: st.GeneratingResult,
		ErrorMessage:     st.ErrorMessage,
		HistoryLength:    m.History().Len(),
		Configured:       h.configured,
	}
}

func (h *Handler) handleHealthy(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.snapshot(h.machine(r)))
}

func roleFromRequest(r *http.Request) (wizard.Role, bool) {
	switch mux.Vars(r)["role"] {
	case "person":
		return wizard.RolePerson, true
	case "cloth":
		return wizard.RoleCloth, true
	}
	return 0, false
}

func (h *Handler) handleAssets(w http.ResponseWriter, r *http.Request) {
	role, ok := roleFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, apiError{Error: "unknown role"})
		return
	}

	m := h.machine(r)
	var c catalog.Catalog
	if role == wizard.RolePerson {
		c = m.People()
	} else {
		c = m.Clothes()
	}

	writeJSON(w, http.StatusOK, map[string]any{"assets": c.Assets()})
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	role, ok := roleFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, apiError{Error: "unknown role"})
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	m := h.machine(r)
	var found bool
	// Resolution may outlive the request; the HTTP context is not used.
	if role == wizard.RolePerson {
		found = m.SelectPerson(context.Background(), req.ID)
	} else {
		found = m.SelectCloth(context.Background(), req.ID)
	}
	if !found {
		writeJSON(w, http.StatusNotFound, apiError{Error: "unknown asset id"})
		return
	}

	writeJSON(w, http.StatusOK, h.snapshot(m))
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	role, ok := roleFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, apiError{Error: "unknown role"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "missing image"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "failed to read image"})
		return
	}

	m := h.machine(r)
	declaredMime := header.Header.Get("Content-Type")
	if role == wizard.RolePerson {
		err = m.UploadPerson(context.Background(), data, declaredMime)
	} else {
		err = m.UploadCloth(context.Background(), data, declaredMime)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, h.snapshot(m))
}

func (h *Handler) handleClothPrompt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	m := h.machine(r)
	m.SetClothPrompt(req.Prompt)
	writeJSON(w, http.StatusOK, h.snapshot(m))
}

func (h *Handler) handleGenerateCloth(w http.ResponseWriter, r *http.Request) {
	m := h.machine(r)
	m.GenerateCloth(context.Background())
	writeJSON(w, http.StatusAccepted, h.snapshot(m))
}

func (h *Handler) handleTryOn(w http.ResponseWriter, r *http.Request) {
	m := h.machine(r)
	m.BeginTryOn(context.Background())
	writeJSON(w, http.StatusAccepted, h.snapshot(m))
}

func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Step int `json:"step"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	m := h.machine(r)
	m.GoToStep(wizard.Step(req.Step))
	writeJSON(w, http.StatusOK, h.snapshot(m))
}

func (h *Handler) handleDismissError(w http.ResponseWriter, r *http.Request) {
	m := h.machine(r)
	m.DismissError()
	writeJSON(w, http.StatusOK, h.snapshot(m))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	m := h.machine(r)

	items := make([]history.Item, 0, m.History().Len())
	for item := range m.History().All() {
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	m := h.machine(r)
	if !m.Restore(strings.TrimSpace(mux.Vars(r)["id"])) {
		writeJSON(w, http.StatusNotFound, apiError{Error: "unknown history item"})
		return
	}
	writeJSON(w, http.StatusOK, h.snapshot(m))
}
