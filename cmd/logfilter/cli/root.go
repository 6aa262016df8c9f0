package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tkingovr/logfilter/internal/audit"
	"github.com/tkingovr/logfilter/internal/config"
	"github.com/tkingovr/logfilter/internal/metrics"
	"github.com/tkingovr/logfilter/internal/sink"
)

var (
	cfgFile string
	verbose bool
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "logfilter",
	Short: "logfilter - log event filter chains",
	Long: `logfilter evaluates log events against ordered filter chains.
Each filter accepts, denies or stays neutral on an event; the first
opinion wins and an event nobody objects to is accepted. Chains are
defined in YAML or Java-style .properties files.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "chain config file (YAML or .properties)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildGates builds one gate per configured chain. store and rec may be nil.
func buildGates(cfg *config.Config, store audit.Store, rec *metrics.Recorder) (map[string]*sink.Gate, error) {
	chains, err := config.BuildChains(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("building chains: %w", err)
	}

	opts := []sink.GateOption{sink.WithLogger(logger)}
	if store != nil {
		opts = append(opts, sink.WithStore(store))
	}
	if rec != nil {
		opts = append(opts, sink.WithMetrics(rec))
	}

	gates := make(map[string]*sink.Gate, len(chains))
	for name, c := range chains {
		gates[name] = sink.NewGate(name, c, opts...)
	}
	return gates, nil
}

func gateFor(gates map[string]*sink.Gate, name string) (*sink.Gate, error) {
	if name == "" {
		name = config.DefaultChain
	}
	g, ok := gates[name]
	if !ok {
		return nil, fmt.Errorf("unknown chain %q", name)
	}
	return g, nil
}
