// Package commands implements CLI command handlers for zeta.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"

	"github.com/uyouii/zeta-algorithms/config"
	"github.com/uyouii/zeta-algorithms/model"
	"github.com/uyouii/zeta-algorithms/rate"
	"github.com/uyouii/zeta-algorithms/spikeio"
	"github.com/uyouii/zeta-algorithms/utils"
	"github.com/uyouii/zeta-algorithms/zeta"
)

// ErrMissingInput is returned when the spike or event file is not given.
var ErrMissingInput = errors.New("both --spikes and --events are required")

// RunCommand holds the flags of the one-shot run command.
type RunCommand struct {
	spikesPath string
	eventsPath string
	configPath string

	window         float64
	resampleCount  int
	directQuantile bool
	noStitch       bool
	parallel       bool
	seed           uint64

	withRate   bool
	withCurves bool
}

// Report is the JSON document printed by run.
type Report struct {
	ID      string             `json:"id"`
	Options ReportOptions      `json:"options"`
	Result  *model.ZetaResult  `json:"result"`
	Rate    *model.RateSummary `json:"rate,omitempty"`
}

type ReportOptions struct {
	Window         float64 `json:"window"`
	ResampleCount  int     `json:"resample_count"`
	DirectQuantile bool    `json:"direct_quantile"`
	JitterSize     float64 `json:"jitter_size"`
	Stitch         bool    `json:"stitch"`
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	rc := &RunCommand{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute the zeta test from CSV files",
		Long:  "Load a spike-time vector and an event table from CSV files and print a JSON report.",
		Args:  cobra.NoArgs,
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.spikesPath, "spikes", "", "CSV file with one spike time (s) per row")
	cmd.Flags().StringVar(&rc.eventsPath, "events", "", "CSV file with an onset (and optional offset) per trial")
	cmd.Flags().StringVar(&rc.configPath, "config", "", "Config file (default: ./.zeta.yaml if present)")

	cmd.Flags().Float64Var(&rc.window, "window", 0, "Window after each onset in seconds (overrides config)")
	cmd.Flags().IntVar(&rc.resampleCount, "resamples", 0, "Number of jittered resamples (overrides config)")
	cmd.Flags().BoolVar(&rc.directQuantile, "direct-quantile", false, "Use the empirical null quantile instead of the Gumbel fit")
	cmd.Flags().BoolVar(&rc.noStitch, "no-stitch", false, "Do not stitch the event windows")
	cmd.Flags().BoolVar(&rc.parallel, "parallel", false, "Run the resamples in parallel")
	cmd.Flags().Uint64Var(&rc.seed, "seed", 0, "Seed of the jitter permutations (overrides config)")

	cmd.Flags().BoolVar(&rc.withRate, "rate", false, "Add the peri-event rate curve")
	cmd.Flags().BoolVar(&rc.withCurves, "curves", false, "Keep the resampled curves in the report")

	return cmd
}

func (rc *RunCommand) run(cmd *cobra.Command, _ []string) error {
	if rc.spikesPath == "" || rc.eventsPath == "" {
		return ErrMissingInput
	}

	cfg, err := config.Load(rc.configPath)
	if err != nil {
		return err
	}
	if err := utils.InitLogger(cfg.Logging.Level); err != nil {
		return err
	}

	opts := rc.options(cmd, cfg)

	spikes, err := spikeio.LoadSpikeTimes(rc.spikesPath, nil)
	if err != nil {
		return fmt.Errorf("load spikes: %w", err)
	}
	events, err := spikeio.LoadEventTable(rc.eventsPath, nil)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}

	ctx := cmd.Context()
	res, err := zeta.CalculateZeta(ctx, spikes, events, opts)
	if err != nil {
		return err
	}
	if res.Curves != nil && !rc.withCurves {
		res.Curves.NullCurves = nil
	}

	report := Report{
		ID: uuid.NewString(),
		Options: ReportOptions{
			Window:         opts.Window,
			ResampleCount:  opts.ResampleCount,
			DirectQuantile: opts.DirectQuantile,
			JitterSize:     opts.JitterSize,
			Stitch:         opts.Stitch,
		},
		Result: res,
	}

	if rc.withRate && res.IsComputed() {
		onsets, _ := zeta.EventOnsets(events)
		summary, err := rate.CalculatePeriEventRate(ctx, spikes, onsets, opts.Window)
		if err == nil {
			report.Rate = summary
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// flags given on the command line win over the config
func (rc *RunCommand) options(cmd *cobra.Command, cfg *config.Config) zeta.Options {
	opts := cfg.ZetaOptions()
	flags := cmd.Flags()

	if flags.Changed("window") {
		opts.Window = rc.window
	}
	if flags.Changed("resamples") {
		opts.ResampleCount = rc.resampleCount
	}
	if flags.Changed("direct-quantile") {
		opts.DirectQuantile = rc.directQuantile
	}
	if flags.Changed("no-stitch") {
		opts.Stitch = !rc.noStitch
	}
	if flags.Changed("parallel") {
		opts.AllowParallel = rc.parallel
	}
	if flags.Changed("seed") {
		opts.Src = rand.NewSource(rc.seed)
	}
	return opts
}
