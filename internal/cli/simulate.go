package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/typewriter/internal/config"
	"github.com/roach88/typewriter/internal/harness"
	"github.com/roach88/typewriter/internal/store"
	"github.com/roach88/typewriter/internal/typewriter"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Strings  []string
	Database string // record the run here when set
	Label    string
	UntilMS  int
	MaxSteps int
	Seed     uint64
}

// SimulateResult is the simulate command's output.
type SimulateResult struct {
	RunID     string                   `json:"run_id,omitempty"`
	Label     string                   `json:"label"`
	ElapsedMS int64                    `json:"elapsed_ms"`
	Final     typewriter.Snapshot      `json:"final"`
	Trace     []store.TransitionRecord `json:"trace"`
	Errors    []string                 `json:"errors,omitempty"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate [config]",
		Short: "Run a typewriter on a virtual clock and print its trace",
		Long: `Run a typewriter on a virtual clock and print every transition.

The run ends when the engine completes, when --until-ms is reached,
or after --max-steps timer firings (looping configs need one of these).
With --db the trace is recorded for later inspection with "trace".

Exit codes:
  0 - Simulation finished
  1 - Step limit exceeded
  2 - Command error (bad config, database errors)

Examples:
  typewriter simulate ./hello.yaml
  typewriter simulate --string Hi --string Bye --db traces.db
  typewriter simulate ./loop.cue --until-ms 10000 --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runSimulate(opts, path, cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Strings, "string", "s", nil, "string to type (repeatable, replaces the config's strings)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the trace in this SQLite database")
	cmd.Flags().StringVar(&opts.Label, "label", "", "run label (defaults to the config file name)")
	cmd.Flags().IntVar(&opts.UntilMS, "until-ms", 0, "stop at this virtual time (0 = run until idle)")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", harness.DefaultMaxSteps, "maximum timer firings")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "shuffle seed when the config enables shuffle")

	return cmd
}

func runSimulate(opts *SimulateOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	file, err := loadInput(path, opts.Strings)
	if err != nil {
		return inputError(formatter, err)
	}

	label := opts.Label
	if label == "" {
		label = "simulate"
		if path != "" {
			label = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
	}

	settings := *file
	settings.Strings = nil
	scenario := &harness.Scenario{
		Name:        label,
		Description: "simulate",
		Strings:     file.Strings,
		Config:      settings,
		UntilMS:     opts.UntilMS,
		MaxSteps:    opts.MaxSteps,
		Seed:        opts.Seed,
	}

	formatter.VerboseLog("Simulating %d string(s)", len(file.Strings))
	result, err := harness.RunWithLogger(scenario, opts.logger())
	if err != nil {
		return WrapExitError(ExitCommandError, "simulation failed", err)
	}

	out := SimulateResult{
		Label:     label,
		ElapsedMS: result.ElapsedMS,
		Final:     result.Final,
		Trace:     result.Trace,
		Errors:    result.Errors,
	}

	if opts.Database != "" {
		runID, err := recordRun(ctx, opts.Database, label, file.Strings, &settings, result.Trace)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		out.RunID = runID
		formatter.VerboseLog("Recorded run %s in %s", runID, opts.Database)
	}

	if formatter.JSON() {
		if err := formatter.Success(out); err != nil {
			return err
		}
	} else {
		printSimulation(cmd.OutOrStdout(), out)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, strings.Join(result.Errors, "; "))
	}
	return nil
}

// recordRun stores a finished trace as a new run.
func recordRun(ctx context.Context, dbPath, label string, strs []string, settings *config.File, trace []store.TransitionRecord) (string, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer st.Close()

	cfgJSON, err := json.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	runID, err := st.CreateRun(ctx, label, strs, string(cfgJSON))
	if err != nil {
		return "", err
	}
	if err := st.WriteTransitions(ctx, runID, trace); err != nil {
		return "", err
	}
	return runID, nil
}

func printSimulation(w io.Writer, out SimulateResult) {
	printTrace(w, out.Trace)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Final: %s %q after %dms (%d transitions)\n",
		out.Final.PhaseName, out.Final.Text, out.ElapsedMS, len(out.Trace))
	if out.RunID != "" {
		fmt.Fprintf(w, "Run: %s\n", out.RunID)
	}
}

// printTrace writes one aligned line per transition.
func printTrace(w io.Writer, trace []store.TransitionRecord) {
	for _, rec := range trace {
		line := fmt.Sprintf("[%4d] %7dms  %-12s %-9s %q", rec.Seq, rec.AtMS, rec.Kind, rec.Phase, rec.Text)
		if rec.Paused {
			line += "  (paused)"
		}
		if rec.Warning != "" {
			line += "  " + rec.Warning
		}
		fmt.Fprintln(w, line)
	}
}
