package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/frahmantamala/agency-ops/internal/core/database"
)

const (
	statusUp   = "up"
	statusDown = "down"
)

// componentCheck probes one dependency; a nil error means healthy.
type componentCheck struct {
	name  string
	probe func(ctx context.Context) error
}

type componentReport struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

type healthReport struct {
	Status     string                     `json:"status"`
	Time       time.Time                  `json:"time"`
	Components map[string]componentReport `json:"components"`
}

type HealthHandler struct {
	checks  []componentCheck
	timeout time.Duration
}

// NewHealthHandler checks database connectivity and that the schema has
// been migrated.
func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{
		timeout: 2 * time.Second,
		checks: []componentCheck{
			{name: db.Driver, probe: db.Ping},
			{name: "schema", probe: func(ctx context.Context) error {
				if !db.Gorm.WithContext(ctx).Migrator().HasTable("sessions") {
					return fmt.Errorf("sessions table missing, run migrate")
				}
				return nil
			}},
		},
	}
}

func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, map[string]string{"status": statusUp})
}

func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	report := healthReport{
		Status:     statusUp,
		Time:       time.Now().UTC(),
		Components: make(map[string]componentReport, len(h.checks)),
	}
	for _, c := range h.checks {
		started := time.Now()
		cr := componentReport{Status: statusUp}
		if err := c.probe(ctx); err != nil {
			cr.Status = statusDown
			cr.Error = err.Error()
			report.Status = statusDown
		}
		cr.LatencyMs = time.Since(started).Milliseconds()
		report.Components[c.name] = cr
	}

	code := http.StatusOK
	if report.Status == statusDown {
		code = http.StatusServiceUnavailable
	}
	writeHealth(w, code, report)
}

func writeHealth(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
