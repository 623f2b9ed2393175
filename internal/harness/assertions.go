package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// AssertionError is returned when an expectation fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Expectation key for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %6dms %-12s %-8s %q\n", ev.Seq, ev.AtMS, ev.Kind, ev.Phase, ev.Text)
		}
	}

	return buf.String()
}

func assertFinalPhase(r *Result, want string) error {
	if r.Final.PhaseName == want {
		return nil
	}
	return &AssertionError{
		Type:     "final_phase",
		Expected: want,
		Actual:   r.Final.PhaseName,
		Trace:    r.Trace,
	}
}

func assertFinalText(r *Result, want string) error {
	if r.Final.Text == want {
		return nil
	}
	return &AssertionError{
		Type:     "final_text",
		Expected: fmt.Sprintf("%q", want),
		Actual:   fmt.Sprintf("%q", r.Final.Text),
		Trace:    r.Trace,
	}
}

func assertTexts(r *Result, want []string) error {
	got := r.Texts()
	if slices.Equal(got, want) {
		return nil
	}
	return &AssertionError{
		Type:     "texts",
		Expected: fmt.Sprintf("%q", want),
		Actual:   fmt.Sprintf("%q", got),
		Trace:    r.Trace,
	}
}

// assertTransitionCount checks exact counts for each listed kind.
// Kinds not listed are not checked.
func assertTransitionCount(r *Result, want map[string]int) error {
	got := r.Counts()

	kinds := make([]string, 0, len(want))
	for kind := range want {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	var mismatches []string
	for _, kind := range kinds {
		if got[kind] != want[kind] {
			mismatches = append(mismatches, fmt.Sprintf("%s: want %d, got %d", kind, want[kind], got[kind]))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     "transition_count",
		Expected: fmt.Sprintf("%v", want),
		Actual:   strings.Join(mismatches, "; "),
		Trace:    r.Trace,
	}
}

// EvaluateExpectations evaluates all expectations against the result.
// Returns a slice of error messages for failed expectations.
func EvaluateExpectations(result *Result, expect Expectations) []string {
	var errs []error

	if expect.FinalPhase != "" {
		errs = append(errs, assertFinalPhase(result, expect.FinalPhase))
	}
	if expect.FinalText != nil {
		errs = append(errs, assertFinalText(result, *expect.FinalText))
	}
	if expect.Texts != nil {
		errs = append(errs, assertTexts(result, expect.Texts))
	}
	if len(expect.TransitionCount) > 0 {
		errs = append(errs, assertTransitionCount(result, expect.TransitionCount))
	}

	var messages []string
	for _, err := range errs {
		if err != nil {
			messages = append(messages, err.Error())
		}
	}
	return messages
}
