package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/conviction/internal/services"
	"github.com/aristath/conviction/pkg/logger"
)

// AnalysisHandler triggers analyses over HTTP.
type AnalysisHandler struct {
	analysis *services.AnalysisService
	log      zerolog.Logger
}

// NewAnalysisHandler creates an analysis handler.
func NewAnalysisHandler(analysis *services.AnalysisService, log zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis, log: logger.Handler(log, "analysis")}
}

// Routes returns the analysis router.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/batch", h.runBatch)
	r.Post("/{code}", h.runOne)
	return r
}

func (h *AnalysisHandler) runOne(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	report, err := h.analysis.Analyze(r.Context(), code)
	if err != nil {
		h.log.Error().Err(err).Str("code", code).Msg("analysis failed")
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AnalysisHandler) runBatch(w http.ResponseWriter, r *http.Request) {
	result, err := h.analysis.AnalyzeAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("batch analysis failed")
		writeError(w, http.StatusInternalServerError, "batch analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
