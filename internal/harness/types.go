package harness

import (
	"github.com/roach88/typewriter/internal/store"
	"github.com/roach88/typewriter/internal/typewriter"
)

// TraceEvent is one engine transition stamped with its virtual time.
type TraceEvent = store.TransitionRecord

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expectations match.
	Pass bool `json:"pass"`

	// Trace contains every transition in seq order.
	Trace []TraceEvent `json:"trace"`

	// Final is the engine state when the run stopped.
	Final typewriter.Snapshot `json:"final"`

	// ElapsedMS is the virtual time when the run stopped.
	ElapsedMS int64 `json:"elapsed_ms"`

	// Errors contains failed expectations.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Texts returns the visible text after every transition that changed it.
// The text shown at the start transition is the baseline, not a change.
func (r *Result) Texts() []string {
	out := []string{}
	if len(r.Trace) == 0 {
		return out
	}
	last := r.Trace[0].Text
	for _, ev := range r.Trace[1:] {
		if ev.Text != last {
			out = append(out, ev.Text)
			last = ev.Text
		}
	}
	return out
}

// Counts returns the number of transitions of each kind.
func (r *Result) Counts() map[string]int {
	counts := map[string]int{}
	for _, ev := range r.Trace {
		counts[ev.Kind]++
	}
	return counts
}
