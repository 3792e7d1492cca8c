// Package health provides health checking functionality for the intake service.
package health

import (
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/giygas/fiche-dentaire/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	sessions           interfaces.SessionStore
	exporter           interfaces.Exporter
	registryConfigured bool
	startTime          time.Time
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(sessions interfaces.SessionStore, exporter interfaces.Exporter, registryConfigured bool) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		sessions:           sessions,
		exporter:           exporter,
		registryConfigured: registryConfigured,
		startTime:          time.Now(),
	}
}

// HealthCheck reports whether reports can still be exported. A service
// without a medication registry works but is degraded.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	writable := outputWritable(h.exporter.Dir())
	uptime := time.Since(h.startTime)

	switch {
	case !writable:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case !h.registryConfigured:
		status = "degraded"
		httpStatus = http.StatusOK

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"sessions":            h.sessions.Count(),
		"output_dir":          h.exporter.Dir(),
		"output_writable":     writable,
		"registry_configured": h.registryConfigured,
		"uptime_hours":        math.Round(uptime.Hours()*10) / 10,
	}

	return status, data, httpStatus
}

// outputWritable creates dir if needed and probes it with a temporary file
func outputWritable(dir string) bool {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false
	}
	f, err := os.CreateTemp(dir, ".health-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	return os.Remove(filepath.Clean(name)) == nil
}
