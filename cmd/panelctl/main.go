// Command panelctl runs the reports and side loads around the master panel:
// model training, correlation and regional reports, the relational price
// load and news collection. Source paths come from the same environment and
// CONFIG_FILE as the etl command.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/commodity-panel-etl/internal/config"
	"github.com/couchcryptid/commodity-panel-etl/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:           "panelctl",
	Short:         "Reports and side loads for the commodity price panel",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// env is the shared state of a command invocation.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
}

var logLevel string

// metrics registers the collectors once per process.
var metrics = sync.OnceValue(observability.NewMetrics)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return &env{
		cfg:     cfg,
		logger:  observability.NewLogger(cfg.LogLevel, "text"),
		metrics: metrics(),
	}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		slog.Error("panelctl failed", "error", err)
		os.Exit(1)
	}
}
