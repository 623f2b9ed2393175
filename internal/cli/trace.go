package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/typewriter/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - list runs when empty
	Kind     string // optional - filter to one transition kind
}

// TraceResult holds one recorded run.
type TraceResult struct {
	Run   store.Run                `json:"run"`
	Trace []store.TransitionRecord `json:"trace"`
	Stats TraceStats               `json:"stats"`
}

// TraceStats holds summary statistics for a run.
type TraceStats struct {
	Total      int            `json:"total"`
	ByKind     map[string]int `json:"by_kind"`
	DurationMS int64          `json:"duration_ms"`
	Complete   bool           `json:"complete"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded runs",
		Long: `Inspect runs recorded with "simulate --db".

Without --run, lists every run in the database. With --run, prints the
run's transitions in seq order followed by per-kind counts.

Examples:
  typewriter trace --db traces.db
  typewriter trace --db traces.db --run 01920c6e-...
  typewriter trace --db traces.db --run 01920c6e-... --kind delete --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to print")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only print transitions of this kind")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		return listRuns(ctx, st, formatter)
	}

	run, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, store.ErrRunNotFound) {
		if outErr := formatter.Error("E_RUN_NOT_FOUND", fmt.Sprintf("no run with id %s", opts.RunID), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "run not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	trace, err := st.ReadTransitions(ctx, run.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read transitions", err)
	}
	counts, err := st.CountByKind(ctx, run.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count transitions", err)
	}

	result := TraceResult{
		Run:   run,
		Trace: filterKind(trace, opts.Kind),
		Stats: buildTraceStats(trace, counts),
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s (%s)\n", run.ID, run.Label)
	fmt.Fprintf(w, "Strings: %q\n\n", run.Strings)
	printTrace(w, result.Trace)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total: %d transitions over %dms", result.Stats.Total, result.Stats.DurationMS)
	if result.Stats.Complete {
		fmt.Fprint(w, ", complete")
	}
	fmt.Fprintln(w)

	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(w, "  %-12s %d\n", kind, counts[kind])
	}
	return nil
}

func listRuns(ctx context.Context, st *store.Store, formatter *OutputFormatter) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if formatter.JSON() {
		return formatter.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(formatter.Writer, "%s  %-20s %d string(s)\n", run.ID, run.Label, len(run.Strings))
	}
	return nil
}

func filterKind(trace []store.TransitionRecord, kind string) []store.TransitionRecord {
	if kind == "" {
		return trace
	}
	out := []store.TransitionRecord{}
	for _, rec := range trace {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out
}

func buildTraceStats(trace []store.TransitionRecord, counts map[string]int) TraceStats {
	stats := TraceStats{
		Total:  len(trace),
		ByKind: counts,
	}
	if len(trace) > 0 {
		last := trace[len(trace)-1]
		stats.DurationMS = last.AtMS
		stats.Complete = last.Phase == "complete"
	}
	return stats
}
