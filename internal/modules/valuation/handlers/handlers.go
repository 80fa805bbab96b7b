// Package handlers exposes valuation policy management over HTTP.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/conviction/internal/modules/universe"
	"github.com/aristath/conviction/internal/modules/valuation"
	"github.com/aristath/conviction/pkg/logger"
)

// Handler manages valuation policies. Writes go through the repository and
// the in-memory registry together so the engine sees changes immediately.
type Handler struct {
	registry *valuation.OverrideRegistry
	repo     *universe.Repository
	log      zerolog.Logger
}

// NewHandler creates a valuation policy handler.
func NewHandler(registry *valuation.OverrideRegistry, repo *universe.Repository, log zerolog.Logger) *Handler {
	return &Handler{registry: registry, repo: repo, log: logger.Handler(log, "valuation")}
}

// Routes returns the policy router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/policies", h.listPolicies)
	r.Put("/policies/{code}", h.putPolicy)
	r.Delete("/policies/{code}", h.deletePolicy)
	return r
}

func (h *Handler) listPolicies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.List())
}

func (h *Handler) putPolicy(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var p valuation.Policy
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "malformed policy body")
		return
	}
	p.Code = code

	switch p.Kind {
	case valuation.PolicyStandard, valuation.PolicyPeer, valuation.PolicyCustom:
	default:
		writeError(w, http.StatusBadRequest, "unknown policy kind")
		return
	}
	if p.Kind == valuation.PolicyPeer && p.PeerName == "" {
		writeError(w, http.StatusBadRequest, "peer policy requires peer_name")
		return
	}

	if err := h.repo.SavePolicy(r.Context(), p); err != nil {
		h.log.Error().Err(err).Str("code", code).Msg("policy save failed")
		writeError(w, http.StatusInternalServerError, "failed to save policy")
		return
	}
	h.registry.Set(p)
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) deletePolicy(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	removed, err := h.repo.DeletePolicy(r.Context(), code)
	if err != nil {
		h.log.Error().Err(err).Str("code", code).Msg("policy delete failed")
		writeError(w, http.StatusInternalServerError, "failed to delete policy")
		return
	}
	h.registry.Remove(code)
	if !removed {
		writeError(w, http.StatusNotFound, "no policy for "+code)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": code})
}

type envelope struct {
	Data     any      `json:"data"`
	Metadata metadata `json:"metadata"`
}

type metadata struct {
	Timestamp string `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{
		Data:     data,
		Metadata: metadata{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
