// Package handlers exposes stored reports over HTTP.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/conviction/internal/modules/reports"
	"github.com/aristath/conviction/pkg/logger"
)

// Handler serves stored reports.
type Handler struct {
	repo *reports.Repository
	log  zerolog.Logger
}

// NewHandler creates a reports handler.
func NewHandler(repo *reports.Repository, log zerolog.Logger) *Handler {
	return &Handler{repo: repo, log: logger.Handler(log, "reports")}
}

// Routes returns the reports router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/latest/{code}", h.latest)
	r.Get("/latest/{code}/risk", h.latestRisk)
	r.Get("/{id}", h.get)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	summaries, err := h.repo.List(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("report listing failed")
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	if summaries == nil {
		summaries = []reports.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("report_id", id).Msg("report fetch failed")
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "no report "+id)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	report, err := h.repo.Latest(r.Context(), code)
	if err != nil {
		h.log.Error().Err(err).Str("code", code).Msg("latest report fetch failed")
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "no reports for "+code)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// latestRisk serves just the risk profile from the most recent report, for
// clients that only monitor risk posture.
func (h *Handler) latestRisk(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	report, err := h.repo.Latest(r.Context(), code)
	if err != nil {
		h.log.Error().Err(err).Str("code", code).Msg("latest report fetch failed")
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "no reports for "+code)
		return
	}
	writeJSON(w, http.StatusOK, report.Risk)
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
