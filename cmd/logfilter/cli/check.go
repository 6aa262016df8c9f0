package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tkingovr/logfilter/api"
	"github.com/tkingovr/logfilter/internal/eventio"
)

var (
	checkChain   string
	checkLevel   string
	checkLogger  string
	checkMessage string
	checkNDC     string
	checkMDC     map[string]string
	checkEvent   string
	checkExplain bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Dry-run one event through a chain",
	Long: `Check what result an event would receive from a chain without
recording the decision. Useful for testing and debugging chain configs.`,
	Example: `  logfilter check -c logfilter.yaml --chain console --level WARN --message "disk almost full"
  logfilter check -c log.properties --chain file --mdc tenant=acme --explain
  logfilter check -c logfilter.yaml --event '{"level":"DEBUG","message":"cache miss","ndc":"req-42"}'`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkChain, "chain", "", "chain to evaluate (default \"default\")")
	checkCmd.Flags().StringVar(&checkLevel, "level", "INFO", "event level")
	checkCmd.Flags().StringVar(&checkLogger, "logger", "", "logger name")
	checkCmd.Flags().StringVarP(&checkMessage, "message", "m", "", "event message")
	checkCmd.Flags().StringVar(&checkNDC, "ndc", "", "nested diagnostic context")
	checkCmd.Flags().StringToStringVar(&checkMDC, "mdc", nil, "mapped diagnostic context (key=value)")
	checkCmd.Flags().StringVar(&checkEvent, "event", "", "full event as a JSON record (overrides the other event flags)")
	checkCmd.Flags().BoolVar(&checkExplain, "explain", false, "include the result of every consulted filter")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gates, err := buildGates(cfg, nil, nil)
	if err != nil {
		return err
	}
	g, err := gateFor(gates, checkChain)
	if err != nil {
		return err
	}

	rec, err := checkRecord()
	if err != nil {
		return err
	}
	ev := rec.ToEvent()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	d := g.Chain().Evaluate(ev)
	out := api.CheckResponse{
		Chain:     g.Name(),
		Result:    d.Result,
		DecidedBy: d.DecidedBy,
	}
	if checkExplain {
		out.Steps = g.Chain().Explain(ev)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func checkRecord() (*api.EventRecord, error) {
	if checkEvent != "" {
		return eventio.Parse([]byte(checkEvent))
	}
	level, err := api.ParseLevel(checkLevel)
	if err != nil {
		return nil, fmt.Errorf("--level: %w", err)
	}
	return &api.EventRecord{
		Logger:  checkLogger,
		Level:   level,
		Message: checkMessage,
		NDC:     checkNDC,
		MDC:     checkMDC,
	}, nil
}
