package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/frahmantamala/safety-management/internal/certificate"
	"github.com/frahmantamala/safety-management/internal/compliance"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print compliance reports",
}

var historyReportCmd = &cobra.Command{
	Use:   "history",
	Short: "Print an employee's certificate history as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withReportApp(func(ctx context.Context, app *App) error {
			h, err := app.Certificates.EmployeeHistory(ctx, reportTenant, reportEmployee)
			if err != nil {
				return err
			}
			return certificate.WriteHistoryCSV(os.Stdout, h)
		})
	},
}

var dashboardReportCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print a tenant's compliance dashboard as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withReportApp(func(ctx context.Context, app *App) error {
			report, err := app.Certificates.Dashboard(ctx, reportTenant)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		})
	},
}

var (
	reportTenant   int64
	reportEmployee int64
	reportDate     string
)

func withReportApp(fn func(ctx context.Context, app *App) error) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if reportDate != "" {
		asOf, err := time.Parse("2006-01-02", reportDate)
		if err != nil {
			return fmt.Errorf("invalid --as-of date: %w", err)
		}
		app.Certificates.WithClock(func() time.Time { return compliance.StartOfDay(asOf) })
	}

	return fn(context.Background(), app)
}

func init() {
	reportCmd.PersistentFlags().Int64Var(&reportTenant, "tenant", 0, "tenant id")
	reportCmd.PersistentFlags().StringVar(&reportDate, "as-of", "", "evaluate as of this date (YYYY-MM-DD)")
	_ = reportCmd.MarkPersistentFlagRequired("tenant")

	historyReportCmd.Flags().Int64Var(&reportEmployee, "employee", 0, "employee id")
	_ = historyReportCmd.MarkFlagRequired("employee")

	reportCmd.AddCommand(historyReportCmd)
	reportCmd.AddCommand(dashboardReportCmd)
	rootCmd.AddCommand(reportCmd)
}
