package health

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusWarning, "warning"},
		{StatusCritical, "critical"},
		{Status(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatus_Ordering(t *testing.T) {
	if !(StatusHealthy < StatusWarning && StatusWarning < StatusCritical) {
		t.Error("severity order must be healthy < warning < critical")
	}
	if MaxStatus(StatusHealthy, StatusCritical) != StatusCritical {
		t.Error("MaxStatus(healthy, critical) should be critical")
	}
	if MaxStatus(StatusWarning, StatusHealthy) != StatusWarning {
		t.Error("MaxStatus(warning, healthy) should be warning")
	}
}

func TestParseStatus_UnknownMapsToCritical(t *testing.T) {
	if got := ParseStatus("bogus"); got != StatusCritical {
		t.Errorf("ParseStatus(bogus) = %v, want critical", got)
	}
}

func TestStatus_JSONRoundTrip(t *testing.T) {
	for _, status := range []Status{StatusHealthy, StatusWarning, StatusCritical} {
		data, err := json.Marshal(status)
		if err != nil {
			t.Fatalf("marshal %v: %v", status, err)
		}
		var back Status
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != status {
			t.Errorf("round trip %v -> %s -> %v", status, data, back)
		}
	}
}

func TestResult_Constructors(t *testing.T) {
	r := Healthy("ok")
	if r.Status != StatusHealthy || r.Message != "ok" {
		t.Errorf("Healthy() = %+v", r)
	}
	if r.Timestamp.IsZero() {
		t.Error("constructor should stamp the result")
	}
	if r.ResponseTimeMS != nil {
		t.Error("response time should be absent until set")
	}

	r = Critical("down").WithDetail("error", "boom").WithResponseTime(1500 * time.Microsecond)
	if r.Details["error"] != "boom" {
		t.Errorf("Details = %v", r.Details)
	}
	if r.ResponseTimeMS == nil || *r.ResponseTimeMS != 1.5 {
		t.Errorf("ResponseTimeMS = %v, want 1.5", r.ResponseTimeMS)
	}
}

func TestCheckerFunc(t *testing.T) {
	checker := NewCheckerFunc("test", func(context.Context) Result {
		return Warning("meh")
	})
	if checker.Name() != "test" {
		t.Errorf("Name() = %q", checker.Name())
	}
	if got := checker.Check(context.Background()); got.Status != StatusWarning {
		t.Errorf("Check().Status = %v, want warning", got.Status)
	}
}
