// Package handlers exposes the wizard over a JSON API. Selection, upload and
// generation are asynchronous: endpoints dispatch the action and answer with
// the current snapshot, which clients poll via /api/state.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"

	"ai-tryon-studio/internal/identity"
	"ai-tryon-studio/internal/wizard"
)

const sessionKey = "wizard_session"

type Options struct {
	Wizards  *wizard.Store
	Sessions *scs.SessionManager

	// Configured mirrors the gateway credential presence so the UI can show
	// a persistent "not configured" indicator.
	Configured bool

	MaxUploadBytes int64
	Logger         *slog.Logger
}

type Handler struct {
	wizards        *wizard.Store
	sessions       *scs.SessionManager
	configured     bool
	maxUploadBytes int64
	logger         *slog.Logger
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxUploadBytes := opts.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = 25 << 20
	}

	return &Handler{
		wizards:        opts.Wizards,
		sessions:       opts.Sessions,
		configured:     opts.Configured,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/healthy", h.handleHealthy).Methods(http.MethodGet)
	api.HandleFunc("/state", h.handleState).Methods(http.MethodGet)
	api.HandleFunc("/assets/{role}", h.handleAssets).Methods(http.MethodGet)
	api.HandleFunc("/assets/{role}/select", h.handleSelect).Methods(http.MethodPost)
	api.HandleFunc("/assets/{role}/upload", h.handleUpload).Methods(http.MethodPost)
	api.HandleFunc("/cloth/prompt", h.handleClothPrompt).Methods(http.MethodPost)
	api.HandleFunc("/cloth/generate", h.handleGenerateCloth).Methods(http.MethodPost)
	api.HandleFunc("/tryon", h.handleTryOn).Methods(http.MethodPost)
	api.HandleFunc("/navigate", h.handleNavigate).Methods(http.MethodPost)
	api.HandleFunc("/error/dismiss", h.handleDismissError).Methods(http.MethodPost)
	api.HandleFunc("/history", h.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/history/{id}/restore", h.handleRestore).Methods(http.MethodPost)
	api.HandleFunc("/history/{id}/download", h.handleDownload).Methods(http.MethodGet)

	return r
}

// machine returns the wizard for the caller's session, creating both the
// session key and the machine on first contact.
func (h *Handler) machine(r *http.Request) *wizard.Machine {
	sid := h.sessions.GetString(r.Context(), sessionKey)
	if sid == "" {
		sid = identity.New("s")
		h.sessions.Put(r.Context(), sessionKey, sid)
	}
	return h.wizards.Get(sid)
}

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid request body"})
		return false
	}
	return true
}
