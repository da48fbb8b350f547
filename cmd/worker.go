package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers such as the periodic budget alert scan.`,
}

var alertsWorkerCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Start the budget alert worker",
	Long:  `Periodically evaluate every budget of the current month and raise alerts for overspending and pace`,
	Run: func(cmd *cobra.Command, args []string) {
		startAlertsWorker()
	},
}

var (
	alertsInterval    time.Duration
	alertsConcurrency int
	alertsOnce        bool
)

func startAlertsWorker() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	cfg := deps.Config.Alerts
	interval := getDurationFlag(alertsInterval, cfg.Interval)
	concurrency := getIntFlag(alertsConcurrency, cfg.Concurrency)
	if interval <= 0 {
		interval = time.Hour
	}
	lg := deps.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scan := func() {
		started := time.Now()
		if err := deps.Monitor.Scan(ctx, concurrency); err != nil {
			lg.Error("budget alert scan failed", "error", err)
			return
		}
		lg.Info("budget alert scan complete", "duration", time.Since(started))
	}

	if alertsOnce {
		scan()
		return
	}

	lg.Info("starting budget alert worker",
		"interval", interval,
		"concurrency", concurrency,
		"timezone", cfg.Timezone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	scan()
	for {
		select {
		case <-ctx.Done():
			lg.Info("received signal, shutting down budget alert worker")
			return
		case <-ticker.C:
			scan()
		}
	}
}

func getDurationFlag(flagValue, configValue time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	alertsWorkerCmd.Flags().DurationVar(&alertsInterval, "interval", 0, "Time between scans (overrides config)")
	alertsWorkerCmd.Flags().IntVar(&alertsConcurrency, "concurrency", 0, "Owners checked at the same time (overrides config)")
	alertsWorkerCmd.Flags().BoolVar(&alertsOnce, "once", false, "Run a single scan and exit")

	workerCmd.AddCommand(alertsWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
