package harness

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/roach88/typewriter/internal/store"
	"github.com/roach88/typewriter/internal/testutil"
	"github.com/roach88/typewriter/internal/typewriter"
)

// Harness is the scenario execution engine.
// It runs one scenario against a fresh engine on a virtual clock.
type Harness struct {
	scenario *Scenario
	sched    *testutil.FakeScheduler
	engine   *typewriter.Engine
	logger   *slog.Logger
	result   *Result

	steps    int
	maxSteps int
}

// Run executes a scenario and returns the result.
//
// Engine logs are discarded. Returns an error only when the scenario cannot
// be executed at all; failed expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger executes a scenario with engine logs sent to logger.
//
// Execution flow:
// 1. Build the engine on a fresh FakeScheduler
// 2. Start it at virtual time 0
// 3. Apply each control once the clock reaches its at_ms
// 4. Run to until_ms, or until no timer is pending
// 5. Evaluate expectations
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	cfg, err := scenario.Config.EngineConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid scenario config: %w", err)
	}

	strs := scenario.Strings
	if scenario.Config.ShuffleEnabled() {
		strs = typewriter.Shuffle(strs, rand.New(rand.NewPCG(scenario.Seed, scenario.Seed)))
	}

	h := &Harness{
		scenario: scenario,
		sched:    testutil.NewFakeScheduler(),
		logger:   logger,
		result:   NewResult(),
		maxSteps: scenario.MaxSteps,
	}
	if h.maxSteps == 0 {
		h.maxSteps = DefaultMaxSteps
	}

	h.engine, err = typewriter.New(strs, cfg,
		typewriter.WithScheduler(h.sched),
		typewriter.WithLogger(logger),
		typewriter.WithObserver(h.record),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	defer h.engine.Dispose()

	if err := h.engine.Start(); err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}

	if err := h.execute(); err != nil {
		h.result.AddError(err.Error())
	}

	h.result.Final = h.engine.Snapshot()
	h.result.ElapsedMS = h.sched.Now().Milliseconds()

	for _, msg := range EvaluateExpectations(h.result, scenario.Expect) {
		h.result.AddError(msg)
	}

	return h.result, nil
}

// record is the engine observer. Transitions arrive in seq order.
func (h *Harness) record(tr typewriter.Transition) {
	h.result.Trace = append(h.result.Trace, store.RecordFromTransition(tr, h.sched.Now()))
}

// execute applies controls in time order, then runs out the clock.
func (h *Harness) execute() error {
	controls := slices.Clone(h.scenario.Controls)
	slices.SortStableFunc(controls, func(a, b Control) int {
		return a.AtMS - b.AtMS
	})

	until := time.Duration(h.scenario.UntilMS) * time.Millisecond
	for i, c := range controls {
		at := time.Duration(c.AtMS) * time.Millisecond
		if until > 0 && at > until {
			break
		}
		if err := h.runTo(at); err != nil {
			return err
		}
		if err := h.apply(c); err != nil {
			return fmt.Errorf("controls[%d] (%s at %dms): %w", i, c.Action, c.AtMS, err)
		}
	}

	if until > 0 {
		return h.runTo(until)
	}
	return h.runUntilIdle()
}

// runTo fires every timer due at or before target, then sets the clock to
// target.
func (h *Harness) runTo(target time.Duration) error {
	for {
		next, ok := h.sched.NextDeadline()
		if !ok || next > target {
			break
		}
		if err := h.step(); err != nil {
			return err
		}
	}
	h.sched.AdvanceTo(target)
	return nil
}

func (h *Harness) runUntilIdle() error {
	for h.sched.Pending() > 0 {
		if err := h.step(); err != nil {
			return err
		}
	}
	return nil
}

func (h *Harness) step() error {
	if h.steps >= h.maxSteps {
		return fmt.Errorf("exceeded max_steps (%d) at %dms", h.maxSteps, h.sched.Now().Milliseconds())
	}
	h.steps++
	h.sched.RunNext()
	return nil
}

// apply performs one control against the engine.
func (h *Harness) apply(c Control) error {
	h.logger.Debug("applying control", "action", c.Action, "at_ms", c.AtMS)

	switch c.Action {
	case ActionPause:
		h.engine.Pause()
	case ActionResume:
		h.engine.Resume()
	case ActionPauseAtEnd:
		h.engine.PauseAtEndOfCurrentString()
	case ActionReplace:
		return h.engine.ReplaceStrings(c.Strings)
	default:
		return fmt.Errorf("unknown action %q", c.Action)
	}
	return nil
}
