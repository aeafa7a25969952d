package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
)

func newCheckCmd() *cobra.Command {
	var (
		force   bool
		name    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the health checks once and print the report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			eng, err := buildEngine(cfg, logger, observe.NewNopMetrics())
			if err != nil {
				return err
			}
			defer eng.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if name != "" {
				result, err := eng.service.GetCheck(ctx, name)
				if err != nil {
					return err
				}
				printResult(name, result)
				return statusExitCode(result.Status)
			}

			report := eng.service.GetSystemHealth(ctx, force)
			printReport(report)
			return statusExitCode(report.OverallStatus)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "bypass the report cache")
	cmd.Flags().StringVar(&name, "check", "", "run only the named checker")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline for the run")
	return cmd
}

func printReport(report *health.Report) {
	names := make([]string, 0, len(report.Checks))
	for name := range report.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		printResult(name, report.Checks[name])
	}

	source := "fresh"
	if report.Cached {
		source = "cached"
	}
	fmt.Printf("\noverall: %s (%s, %d/%d ok, %.1f%%, %.0fms)\n",
		report.OverallStatus,
		source,
		report.Summary.SuccessfulChecks,
		report.Summary.TotalChecks,
		report.Summary.SuccessRate,
		report.Summary.ExecutionTimeMS,
	)
}

func printResult(name string, result health.Result) {
	elapsed := ""
	if result.ResponseTimeMS != nil {
		elapsed = fmt.Sprintf(" (%.0fms)", *result.ResponseTimeMS)
	}
	fmt.Printf("%-10s %-8s %s%s\n", name, result.Status, result.Message, elapsed)
}

// exitCode is returned from RunE so deferred cleanup runs before main
// exits with it.
type exitCode int

func (c exitCode) Error() string {
	return fmt.Sprintf("exit code %d", int(c))
}

// statusExitCode maps severity onto the process exit code, Nagios style:
// 0 healthy, 1 warning, 2 critical.
func statusExitCode(status health.Status) error {
	switch status {
	case health.StatusHealthy:
		return nil
	case health.StatusWarning:
		return exitCode(1)
	default:
		return exitCode(2)
	}
}
