package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tkingovr/logfilter/internal/audit"
	"github.com/tkingovr/logfilter/internal/metrics"
	"github.com/tkingovr/logfilter/internal/server"
)

var (
	serveAddr   string
	serveLogDir string
	serveRecord bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the configured chains over HTTP. Events posted to the API are
gated, counted in Prometheus metrics and, when recording is enabled,
appended to the decision log.`,
	Example: `  logfilter serve -c logfilter.yaml
  logfilter serve -c log.properties --listen :9090 --record`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "listen", "", "listen address (overrides config)")
	serveCmd.Flags().StringVarP(&serveLogDir, "log-dir", "l", "", "decision log directory (overrides config)")
	serveCmd.Flags().BoolVar(&serveRecord, "record", false, "record decisions even if the config does not")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}
	if serveLogDir != "" {
		cfg.LogDir = serveLogDir
	}

	var store audit.Store
	if cfg.RecordDecisions || serveRecord {
		s, err := audit.NewJSONLStore(cfg.LogDir)
		if err != nil {
			return fmt.Errorf("creating decision store: %w", err)
		}
		defer s.Close()
		store = s
	}

	rec := metrics.New()
	gates, err := buildGates(cfg, store, rec)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting serve mode",
		slog.String("listen", cfg.ListenAddr),
		slog.Bool("record_decisions", store != nil),
		slog.String("log_dir", cfg.LogDir),
	)

	srv := server.NewServer(cfg.ListenAddr, gates, store, rec, logger)
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
