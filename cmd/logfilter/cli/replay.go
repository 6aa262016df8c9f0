package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tkingovr/logfilter/api"
	"github.com/tkingovr/logfilter/internal/audit"
	"github.com/tkingovr/logfilter/internal/eventio"
)

var (
	replayChain       string
	replayRecord      bool
	replayLogDir      string
	replaySkipInvalid bool
)

var replayCmd = &cobra.Command{
	Use:   "replay [file]",
	Short: "Run a JSONL event stream through a chain",
	Long: `Read JSON event records, one per line, from a file or stdin and write
the lines the chain accepts to stdout. With --record every decision is
appended to the decision log.`,
	Example: `  logfilter replay -c logfilter.yaml --chain console events.jsonl
  cat events.jsonl | logfilter replay -c log.properties --chain file --record`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&replayChain, "chain", "", "chain to evaluate (default \"default\")")
	replayCmd.Flags().BoolVar(&replayRecord, "record", false, "append decisions to the decision log")
	replayCmd.Flags().StringVarP(&replayLogDir, "log-dir", "l", "", "decision log directory (overrides config)")
	replayCmd.Flags().BoolVar(&replaySkipInvalid, "skip-invalid", false, "log and skip lines that are not valid event records")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var store *audit.JSONLStore
	if replayRecord {
		dir := cfg.LogDir
		if replayLogDir != "" {
			dir = replayLogDir
		}
		store, err = audit.NewJSONLStore(dir)
		if err != nil {
			return fmt.Errorf("creating decision store: %w", err)
		}
		defer store.Close()
	}

	var gateStore audit.Store
	if store != nil {
		gateStore = store
	}
	gates, err := buildGates(cfg, gateStore, nil)
	if err != nil {
		return err
	}
	g, err := gateFor(gates, replayChain)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening events: %w", err)
		}
		defer f.Close()
		in = f
	}

	out := cmd.OutOrStdout()
	var accepted, denied, invalid int
	onErr := func(err error) error {
		if !replaySkipInvalid {
			return err
		}
		invalid++
		logger.Warn("skipping invalid event", "error", err)
		return nil
	}
	err = eventio.ForEach(eventio.NewReader(in), func(rec *api.EventRecord, raw []byte) error {
		ev := rec.ToEvent()
		if ev.Timestamp.IsZero() {
			ev.Timestamp = time.Now()
		}
		if !g.Admit(cmd.Context(), ev) {
			denied++
			return nil
		}
		accepted++
		if _, err := out.Write(raw); err != nil {
			return err
		}
		_, err := out.Write([]byte{'\n'})
		return err
	}, onErr)
	if err != nil {
		return err
	}

	logger.Info("replay finished",
		"chain", g.Name(),
		"accepted", accepted,
		"denied", denied,
		"invalid", invalid,
	)
	return nil
}
