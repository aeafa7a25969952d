package health_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/jonwraymond/healthops/health"
)

func ExampleNewCheckerFunc() {
	dbChecker := health.NewCheckerFunc("database", func(ctx context.Context) health.Result {
		// Simulate a successful ping
		return health.Healthy("database connected")
	})

	ctx := context.Background()
	result := dbChecker.Check(ctx)

	fmt.Println("Checker name:", dbChecker.Name())
	fmt.Println("Status:", result.Status.String())
	fmt.Println("Message:", result.Message)
	// Output:
	// Checker name: database
	// Status: healthy
	// Message: database connected
}

func ExampleHealthy() {
	result := health.Healthy("all systems operational")

	fmt.Println("Status:", result.Status.String())
	fmt.Println("Message:", result.Message)
	// Output:
	// Status: healthy
	// Message: all systems operational
}

func ExampleResult_WithDetails() {
	result := health.Warning("memory usage 84.0%").WithDetails(map[string]any{
		"used_percent": 84.0,
		"total":        "16 GiB",
	})

	fmt.Println("Status:", result.Status.String())
	fmt.Printf("Used: %.0f%%\n", result.Details["used_percent"].(float64))
	// Output:
	// Status: warning
	// Used: 84%
}

func ExampleService_GetSystemHealth() {
	svc := health.NewService(map[string]health.Checker{
		"database": health.NewCheckerFunc("database", func(ctx context.Context) health.Result {
			return health.Healthy("connection OK")
		}),
		"memory": health.NewCheckerFunc("memory", func(ctx context.Context) health.Result {
			return health.Warning("84% used")
		}),
	}, health.ServiceConfig{})

	ctx := context.Background()
	report := svc.GetSystemHealth(ctx, false)

	fmt.Println("Overall:", report.OverallStatus.String())
	fmt.Println("Total checks:", report.Summary.TotalChecks)
	fmt.Println("Failed checks:", report.Summary.FailedChecks)
	// Output:
	// Overall: warning
	// Total checks: 2
	// Failed checks: 0
}

func ExampleService_GetCheck() {
	svc := health.NewService(map[string]health.Checker{
		"database": health.NewCheckerFunc("database", func(ctx context.Context) health.Result {
			return health.Healthy("connection OK")
		}),
	}, health.ServiceConfig{})

	ctx := context.Background()

	result, err := svc.GetCheck(ctx, "database")
	if err == nil {
		fmt.Println("Status:", result.Status.String())
	}

	_, err = svc.GetCheck(ctx, "unknown")
	fmt.Println("Unknown checker error:", errors.Is(err, health.ErrCheckerNotFound))
	// Output:
	// Status: healthy
	// Unknown checker error: true
}

func ExampleStatus_String() {
	statuses := []health.Status{
		health.StatusHealthy,
		health.StatusWarning,
		health.StatusCritical,
	}

	for _, s := range statuses {
		fmt.Println(s.String())
	}
	// Output:
	// healthy
	// warning
	// critical
}

func ExampleRegisterHandlers() {
	svc := health.NewService(map[string]health.Checker{
		"test": health.NewCheckerFunc("test", func(ctx context.Context) health.Result {
			return health.Healthy("ok")
		}),
	}, health.ServiceConfig{})

	mux := http.NewServeMux()
	health.RegisterHandlers(mux, svc)

	endpoints := []string{"/healthz", "/readyz", "/health"}
	for _, ep := range endpoints {
		req := httptest.NewRequest("GET", ep, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		fmt.Printf("%s: %d\n", ep, rec.Code)
	}
	// Output:
	// /healthz: 200
	// /readyz: 200
	// /health: 200
}
