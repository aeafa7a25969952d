package health

import (
	"reflect"
	"testing"
	"time"
)

func TestNewReport_OverallIsMaxSeverity(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Result
		want   Status
	}{
		{
			name: "all healthy",
			checks: map[string]Result{
				"db": Healthy("ok"), "cache": Healthy("ok"),
			},
			want: StatusHealthy,
		},
		{
			name: "warning dominates healthy",
			checks: map[string]Result{
				"db": Healthy("ok"), "memory": Warning("high"),
			},
			want: StatusWarning,
		},
		{
			name: "critical dominates everything",
			checks: map[string]Result{
				"db": Healthy("ok"), "cache": Critical("down"), "memory": Warning("high"),
			},
			want: StatusCritical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := NewReport(tt.checks, time.Millisecond)
			if report.OverallStatus != tt.want {
				t.Errorf("OverallStatus = %v, want %v", report.OverallStatus, tt.want)
			}
		})
	}
}

func TestNewReport_EmptyIsCritical(t *testing.T) {
	report := NewReport(map[string]Result{}, 0)

	if report.OverallStatus != StatusCritical {
		t.Errorf("empty report OverallStatus = %v, want critical", report.OverallStatus)
	}
	if report.Summary.TotalChecks != 0 {
		t.Errorf("TotalChecks = %d, want 0", report.Summary.TotalChecks)
	}
	// 100% by definition: no division by zero, and the criticality comes
	// from the overall status, not the rate.
	if report.Summary.SuccessRate != 100.0 {
		t.Errorf("SuccessRate = %v, want 100", report.Summary.SuccessRate)
	}
}

func TestNewReport_Summary(t *testing.T) {
	report := NewReport(map[string]Result{
		"db":     Critical("down"),
		"cache":  Healthy("ok"),
		"worker": Critical("stale"),
		"memory": Warning("high"),
	}, 250*time.Millisecond)

	s := report.Summary
	if s.TotalChecks != 4 || s.FailedChecks != 2 || s.SuccessfulChecks != 2 {
		t.Errorf("counts = %d/%d/%d, want 4/2/2",
			s.TotalChecks, s.FailedChecks, s.SuccessfulChecks)
	}
	if s.SuccessRate != 50.0 {
		t.Errorf("SuccessRate = %v, want 50", s.SuccessRate)
	}
	if want := []string{"db", "worker"}; !reflect.DeepEqual(s.FailedNames, want) {
		t.Errorf("FailedNames = %v, want %v", s.FailedNames, want)
	}
	if s.ExecutionTimeMS != 250.0 {
		t.Errorf("ExecutionTimeMS = %v, want 250", s.ExecutionTimeMS)
	}
}
