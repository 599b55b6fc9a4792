package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/safety-management/internal/core/batch"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
}

var statusSyncWorkerCmd = &cobra.Command{
	Use:   "status-sync",
	Short: "Keep persisted certificate statuses in line with expiry dates",
	Long: `Rewrites the stored active/overdue status of every certificate whose
expiry date says otherwise, for every active tenant. Runs on an interval
until stopped, or once with --once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startStatusSyncWorker()
	},
}

var (
	syncInterval    time.Duration
	syncOnce        bool
	syncConcurrency int
)

func startStatusSyncWorker() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if syncOnce {
		return syncAllTenants(ctx, app)
	}

	app.Logger.Info("status sync worker started", "interval", syncInterval, "concurrency", syncConcurrency)
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for {
		if err := syncAllTenants(ctx, app); err != nil {
			app.Logger.Error("status sync pass failed", "error", err)
		}
		select {
		case <-ctx.Done():
			app.Logger.Info("status sync worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func syncAllTenants(ctx context.Context, app *App) error {
	tenantIDs, err := app.ActiveTenantIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tenants: %w", err)
	}

	res, err := batch.RunConcurrent(ctx, tenantIDs, syncConcurrency, func(ctx context.Context, tenantID int64) error {
		_, err := app.Certificates.SyncStatuses(ctx, tenantID)
		return err
	})
	if err != nil {
		return err
	}

	for _, f := range res.Failed {
		app.Logger.Error("status sync failed for tenant", "tenant_id", f.Item, "reason", f.Reason, "error", f.Message)
	}
	app.Logger.Info("status sync pass finished", "tenants", res.Total(), "failed", len(res.Failed))
	return nil
}

func init() {
	statusSyncWorkerCmd.Flags().DurationVar(&syncInterval, "interval", time.Hour, "time between sync passes")
	statusSyncWorkerCmd.Flags().BoolVar(&syncOnce, "once", false, "run a single pass and exit")
	statusSyncWorkerCmd.Flags().IntVar(&syncConcurrency, "concurrency", 4, "tenants synced in parallel")

	workerCmd.AddCommand(statusSyncWorkerCmd)
	rootCmd.AddCommand(workerCmd)
}
