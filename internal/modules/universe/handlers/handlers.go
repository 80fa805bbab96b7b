// Package handlers exposes universe management over HTTP.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/conviction/internal/domain"
	"github.com/aristath/conviction/internal/modules/universe"
	"github.com/aristath/conviction/pkg/logger"
)

// Handler manages the analyzable securities.
type Handler struct {
	repo *universe.Repository
	log  zerolog.Logger
}

// NewHandler creates a universe handler.
func NewHandler(repo *universe.Repository, log zerolog.Logger) *Handler {
	return &Handler{repo: repo, log: logger.Handler(log, "universe")}
}

// Routes returns the universe router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/securities", h.list)
	r.Get("/securities/{code}", h.get)
	r.Put("/securities/{code}", h.put)
	r.Delete("/securities/{code}", h.delete)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	securities, err := h.repo.ListSecurities(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("universe listing failed")
		writeError(w, http.StatusInternalServerError, "failed to list securities")
		return
	}
	if securities == nil {
		securities = []domain.Security{}
	}
	writeJSON(w, http.StatusOK, securities)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	sec, err := h.repo.GetSecurity(r.Context(), code)
	if err != nil {
		h.log.Error().Err(err).Str("code", code).Msg("security fetch failed")
		writeError(w, http.StatusInternalServerError, "failed to load security")
		return
	}
	if sec == nil {
		writeError(w, http.StatusNotFound, "unknown security "+code)
		return
	}
	writeJSON(w, http.StatusOK, sec)
}

func (h *Handler) put(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var sec domain.Security
	if err := json.NewDecoder(r.Body).Decode(&sec); err != nil {
		writeError(w, http.StatusBadRequest, "malformed security body")
		return
	}
	sec.Code = code
	if sec.Name == "" {
		writeError(w, http.StatusBadRequest, "security requires a name")
		return
	}
	switch sec.Market {
	case domain.MarketKOSPI, domain.MarketKOSDAQ:
	default:
		writeError(w, http.StatusBadRequest, "unknown market")
		return
	}

	if err := h.repo.UpsertSecurity(r.Context(), sec); err != nil {
		h.log.Error().Err(err).Str("code", code).Msg("security save failed")
		writeError(w, http.StatusInternalServerError, "failed to save security")
		return
	}
	writeJSON(w, http.StatusOK, sec)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if err := h.repo.DeleteSecurity(r.Context(), code); err != nil {
		h.log.Error().Err(err).Str("code", code).Msg("security delete failed")
		writeError(w, http.StatusInternalServerError, "failed to delete security")
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
