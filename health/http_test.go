package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("body = %q, want OK", rec.Body.String())
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		wantCode int
		wantBody string
	}{
		{"healthy", Healthy("ok"), http.StatusOK, "OK"},
		{"warning", Warning("degraded"), http.StatusOK, "WARNING"},
		{"critical", Critical("down"), http.StatusServiceUnavailable, "CRITICAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(map[string]Checker{
				"database": &countingChecker{name: "database", result: tt.result},
			})

			rec := httptest.NewRecorder()
			ReadinessHandler(svc)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestReadinessHandler_RefreshQueryForcesRun(t *testing.T) {
	db := &countingChecker{name: "database", result: Healthy("ok")}
	svc := newTestService(map[string]Checker{"database": db})
	handler := ReadinessHandler(svc)

	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/readyz", nil))
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/readyz?refresh=1", nil))

	if db.calls.Load() != 2 {
		t.Errorf("checker invoked %d times, want 2 with ?refresh=1", db.calls.Load())
	}
}

func TestReportHandler(t *testing.T) {
	svc := newTestService(map[string]Checker{
		"database": &countingChecker{name: "database", result: Healthy("ok")},
		"cache":    &countingChecker{name: "cache", result: Critical("down")},
	})

	rec := httptest.NewRecorder()
	ReportHandler(svc)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 for a critical report", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if report.OverallStatus != StatusCritical {
		t.Errorf("OverallStatus = %v, want critical", report.OverallStatus)
	}
	if len(report.Checks) != 2 {
		t.Errorf("checks map has %d entries, want 2", len(report.Checks))
	}
}

func TestCheckHandler(t *testing.T) {
	svc := newTestService(map[string]Checker{
		"database": &countingChecker{name: "database", result: Healthy("ok")},
	})
	handler := CheckHandler(svc)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/health/check?name=database", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var result Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/health/check?name=nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d for unknown checker, want 404", rec.Code)
	}
}

func TestCheckHandler_CriticalResultIs503(t *testing.T) {
	svc := newTestService(map[string]Checker{
		"database": &countingChecker{name: "database", result: Critical("down")},
	})

	rec := httptest.NewRecorder()
	CheckHandler(svc)(rec, httptest.NewRequest(http.MethodGet, "/health/check?name=database", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestRegisterHandlers(t *testing.T) {
	svc := newTestService(map[string]Checker{
		"database": &countingChecker{name: "database", result: Healthy("ok")},
	})
	mux := http.NewServeMux()
	RegisterHandlers(mux, svc)

	for _, path := range []string{"/healthz", "/readyz", "/health", "/health/check?name=database"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}
