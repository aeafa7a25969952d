package main

import (
	"fmt"
	"os/user"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthops/alert"
)

func newAlertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Manage health alerts",
	}
	cmd.AddCommand(newAlertsListCmd())
	cmd.AddCommand(newAlertsResolveCmd())
	cmd.AddCommand(newAlertsReopenCmd())
	return cmd
}

func openAlertStore() (*alert.SQLiteStore, error) {
	cfg, _, err := loadEnv()
	if err != nil {
		return nil, err
	}
	return alert.NewSQLiteStore(cfg.Storage.Path)
}

func newAlertsListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alerts (unresolved by default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openAlertStore()
			if err != nil {
				return err
			}
			defer store.Close()

			alerts, err := store.List(cmd.Context(), all)
			if err != nil {
				return err
			}
			if len(alerts) == 0 {
				fmt.Println("no alerts")
				return nil
			}
			for _, a := range alerts {
				state := "open"
				if a.Resolved {
					state = fmt.Sprintf("resolved by %s", a.ResolvedBy)
				}
				fmt.Printf("%s  %-10s %-8s %s [%s]\n",
					a.ID, a.SourceMetric, a.Severity,
					a.CreatedAt.Local().Format(time.RFC3339), state)
				fmt.Printf("    %s\n", a.Message)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include resolved alerts")
	return cmd
}

func newAlertsResolveCmd() *cobra.Command {
	var (
		actor string
		notes string
	)

	cmd := &cobra.Command{
		Use:   "resolve <alert-id>",
		Short: "Mark an alert resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openAlertStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if actor == "" {
				actor = currentUser()
			}
			if err := store.Resolve(cmd.Context(), args[0], actor, notes); err != nil {
				return err
			}
			fmt.Printf("alert %s resolved by %s\n", args[0], actor)
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "by", "", "who resolved the alert (default current user)")
	cmd.Flags().StringVar(&notes, "notes", "", "resolution notes")
	return cmd
}

func newAlertsReopenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <alert-id>",
		Short: "Reopen a resolved alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openAlertStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Reopen(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("alert %s reopened\n", args[0])
			return nil
		},
	}
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}
