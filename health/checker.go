package health

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Status represents the severity of a health check outcome.
// Statuses are totally ordered: StatusHealthy < StatusWarning < StatusCritical.
type Status int

const (
	// StatusHealthy indicates the probed subsystem is functioning normally.
	StatusHealthy Status = iota
	// StatusWarning indicates the subsystem works but needs attention.
	StatusWarning
	// StatusCritical indicates the subsystem is failing.
	StatusCritical
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusWarning:
		return "warning"
	case StatusCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseStatus parses a string status. Unknown strings map to StatusCritical
// so that a corrupted cached report is never read back as healthy.
func ParseStatus(s string) Status {
	switch s {
	case "healthy":
		return StatusHealthy
	case "warning":
		return StatusWarning
	default:
		return StatusCritical
	}
}

// MarshalJSON encodes the status as its string form.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status from its string form.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("health: invalid status: %w", err)
	}
	*s = ParseStatus(str)
	return nil
}

// MaxStatus returns the more severe of two statuses.
func MaxStatus(a, b Status) Status {
	if b > a {
		return b
	}
	return a
}

// Result contains the outcome of a single health check invocation.
type Result struct {
	// Status is the severity classification.
	Status Status `json:"status"`

	// Message is a human-readable summary.
	Message string `json:"message"`

	// Details contains probe-specific structured data.
	Details map[string]any `json:"details,omitempty"`

	// ResponseTimeMS is how long the check took, in milliseconds.
	// Nil when the probe never started.
	ResponseTimeMS *float64 `json:"response_time_ms,omitempty"`

	// Timestamp is when the result was produced.
	Timestamp time.Time `json:"timestamp"`
}

// Healthy creates a healthy result.
func Healthy(message string) Result {
	return Result{
		Status:    StatusHealthy,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Warning creates a warning result.
func Warning(message string) Result {
	return Result{
		Status:    StatusWarning,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Critical creates a critical result.
func Critical(message string) Result {
	return Result{
		Status:    StatusCritical,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithDetails sets the details on a result.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// WithDetail sets one detail entry, allocating the map if needed.
func (r Result) WithDetail(key string, value any) Result {
	if r.Details == nil {
		r.Details = make(map[string]any, 1)
	}
	r.Details[key] = value
	return r
}

// WithResponseTime records the elapsed time on a result.
func (r Result) WithResponseTime(d time.Duration) Result {
	ms := float64(d.Microseconds()) / 1000.0
	r.ResponseTimeMS = &ms
	return r
}

// Checker is the interface every health probe implements.
//
// Contract:
//   - Check must honor ctx cancellation and deadlines for its blocking calls.
//   - A failure inside diagnostics gathering must not prevent a best-effort
//     Result for the primary signal.
type Checker interface {
	// Name returns the unique name of this checker.
	Name() string

	// Check performs the health check and returns the result.
	Check(ctx context.Context) Result
}

// CheckerFunc adapts an ordinary function to the Checker interface.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc creates a new CheckerFunc.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

// Name returns the name of this checker.
func (f *CheckerFunc) Name() string {
	return f.name
}

// Check performs the health check.
func (f *CheckerFunc) Check(ctx context.Context) Result {
	return f.fn(ctx)
}
