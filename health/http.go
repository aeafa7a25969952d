package health

import (
	"encoding/json"
	"errors"
	"net/http"
)

// LivenessHandler returns an HTTP handler for liveness probes.
// This only confirms the process is serving; it runs no checkers.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler returns an HTTP handler for readiness probes backed by
// the orchestrator. Cached reports satisfy readiness; pass ?refresh=1 to
// force a fresh run.
func ReadinessHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := svc.GetSystemHealth(r.Context(), r.URL.Query().Get("refresh") == "1")

		w.Header().Set("Content-Type", "text/plain")
		switch report.OverallStatus {
		case StatusHealthy:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		case StatusWarning:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("WARNING"))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("CRITICAL"))
		}
	}
}

// ReportHandler returns an HTTP handler that serves the full system report
// as JSON. Pass ?refresh=1 to bypass the report cache.
func ReportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := svc.GetSystemHealth(r.Context(), r.URL.Query().Get("refresh") == "1")

		w.Header().Set("Content-Type", "application/json")
		if report.OverallStatus == StatusCritical {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(report)
	}
}

// CheckHandler returns an HTTP handler that runs a single named checker,
// bypassing the report cache. The name comes from the "name" query
// parameter.
func CheckHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		result, err := svc.GetCheck(r.Context(), name)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			status := http.StatusInternalServerError
			if errors.Is(err, ErrCheckerNotFound) {
				status = http.StatusNotFound
			}
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if result.Status == StatusCritical {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(result)
	}
}

// RegisterHandlers registers the standard health endpoints on the mux.
func RegisterHandlers(mux *http.ServeMux, svc *Service) {
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/readyz", ReadinessHandler(svc))
	mux.HandleFunc("/health", ReportHandler(svc))
	mux.HandleFunc("/health/check", CheckHandler(svc))
}
