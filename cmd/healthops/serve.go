package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"github.com/jonwraymond/healthops/alert"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the health endpoints over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			registry := prometheus.NewRegistry()
			exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
			if err != nil {
				return err
			}
			provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
			defer func() { _ = provider.Shutdown(context.Background()) }()

			metrics, err := observe.NewMetrics(provider.Meter("healthops"))
			if err != nil {
				return err
			}

			eng, err := buildEngine(cfg, logger, metrics)
			if err != nil {
				return err
			}
			defer eng.Close()

			mux := http.NewServeMux()
			health.RegisterHandlers(mux, eng.service)
			registerAlertHandlers(mux, eng.alertStore, cfg.Serve.AuthSecret, logger)
			if cfg.Serve.Metrics {
				mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			}

			server := &http.Server{
				Addr:              cfg.Serve.Addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Keep the cached report warm so probes rarely pay for a run.
			go refreshLoop(ctx, eng.service, cfg.Service.RefreshInterval.Std(), logger)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("serving", zap.String("addr", cfg.Serve.Addr))
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}

func refreshLoop(ctx context.Context, svc *health.Service, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report := svc.GetSystemHealth(ctx, false)
			if report.OverallStatus != health.StatusHealthy {
				logger.Warn("scheduled health run not healthy",
					zap.String("overall", report.OverallStatus.String()))
			}
		}
	}
}

// registerAlertHandlers mounts the operator alert endpoints. When secret is
// non-empty the mutating endpoints require a bearer token.
func registerAlertHandlers(mux *http.ServeMux, store alert.Store, secret string, logger *zap.Logger) {
	mux.HandleFunc("GET /alerts", func(w http.ResponseWriter, r *http.Request) {
		alerts, err := store.List(r.Context(), r.URL.Query().Get("all") == "1")
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(alerts)
	})

	mux.Handle("POST /alerts/resolve", requireToken(secret, logger,
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				ID    string `json:"id"`
				Actor string `json:"actor"`
				Notes string `json:"notes"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
				writeError(w, http.StatusBadRequest, errors.New("id is required"))
				return
			}
			if err := store.Resolve(r.Context(), req.ID, req.Actor, req.Notes); err != nil {
				writeError(w, alertStatusCode(err), err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})))

	mux.Handle("POST /alerts/reopen", requireToken(secret, logger,
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				ID string `json:"id"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
				writeError(w, http.StatusBadRequest, errors.New("id is required"))
				return
			}
			if err := store.Reopen(r.Context(), req.ID); err != nil {
				writeError(w, alertStatusCode(err), err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})))
}

func alertStatusCode(err error) int {
	switch {
	case errors.Is(err, alert.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, alert.ErrAlreadyResolved):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
