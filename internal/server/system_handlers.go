package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/conviction/internal/database"
	"github.com/aristath/conviction/pkg/logger"
)

// SystemHandler reports process and host health.
type SystemHandler struct {
	databases []*database.DB
	started   time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a system handler.
func NewSystemHandler(databases []*database.DB, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		databases: databases,
		started:   time.Now(),
		log:       logger.Handler(log, "system"),
	}
}

// Routes returns the system router.
func (h *SystemHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/status", h.status)
	return r
}

// Health is the liveness probe: it verifies every database responds.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	for _, db := range h.databases {
		if err := db.HealthCheck(r.Context()); err != nil {
			h.log.Error().Err(err).Msg("health check failed")
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type systemStatus struct {
	UptimeSeconds float64  `json:"uptime_seconds"`
	HostUptime    uint64   `json:"host_uptime_seconds"`
	CPUPercent    float64  `json:"cpu_percent"`
	MemoryPercent float64  `json:"memory_percent"`
	DiskPercent   float64  `json:"disk_percent"`
	Databases     []dbInfo `json:"databases"`
}

type dbInfo struct {
	Path    string `json:"path"`
	Healthy bool   `json:"healthy"`
}

func (h *SystemHandler) status(w http.ResponseWriter, r *http.Request) {
	status := systemStatus{UptimeSeconds: time.Since(h.started).Seconds()}

	if up, err := host.Uptime(); err == nil {
		status.HostUptime = up
	}
	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		status.CPUPercent = percentages[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status.MemoryPercent = vm.UsedPercent
	}
	if du, err := disk.Usage("/"); err == nil {
		status.DiskPercent = du.UsedPercent
	}
	for _, db := range h.databases {
		status.Databases = append(status.Databases, dbInfo{
			Path:    db.Path(),
			Healthy: db.HealthCheck(r.Context()) == nil,
		})
	}

	writeJSON(w, http.StatusOK, status)
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
