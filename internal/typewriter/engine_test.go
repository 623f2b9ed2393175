package typewriter_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/typewriter/internal/testutil"
	"github.com/roach88/typewriter/internal/typewriter"
)

// recorder collects transitions delivered to an observer.
type recorder struct {
	mu sync.Mutex
	ts []typewriter.Transition
}

func (r *recorder) observe(t typewriter.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ts = append(r.ts, t)
}

func (r *recorder) all() []typewriter.Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]typewriter.Transition, len(r.ts))
	copy(out, r.ts)
	return out
}

// texts returns the visible text after every transition that changed it.
func (r *recorder) texts(initial string) []string {
	var out []string
	last := initial
	for _, t := range r.all() {
		if t.Snapshot.Text != last {
			out = append(out, t.Snapshot.Text)
			last = t.Snapshot.Text
		}
	}
	return out
}

func (r *recorder) count(kind typewriter.Kind) int {
	n := 0
	for _, t := range r.all() {
		if t.Kind == kind {
			n++
		}
	}
	return n
}

// fastConfig types and deletes every 10ms with no holds and no looping.
func fastConfig() typewriter.Config {
	cfg := typewriter.DefaultConfig()
	cfg.TypeInterval = 10 * time.Millisecond
	cfg.DeleteInterval = 10 * time.Millisecond
	cfg.HoldFor = 0
	cfg.HoldEmptyFor = 0
	cfg.Loop = false
	cfg.StartEmpty = true
	return cfg
}

func newTestEngine(t *testing.T, strs []string, cfg typewriter.Config) (*typewriter.Engine, *testutil.FakeScheduler, *recorder) {
	t.Helper()
	sched := testutil.NewFakeScheduler()
	rec := &recorder{}
	e, err := typewriter.New(strs, cfg,
		typewriter.WithScheduler(sched),
		typewriter.WithObserver(rec.observe),
	)
	require.NoError(t, err)
	t.Cleanup(e.Dispose)
	return e, sched, rec
}

func TestEngine_New_Defaults(t *testing.T) {
	e, sched, _ := newTestEngine(t, []string{"one", "two"}, typewriter.DefaultConfig())

	snap := e.Snapshot()
	assert.Equal(t, typewriter.Waiting, snap.Phase)
	assert.Equal(t, "one", snap.Text, "first string starts fully typed")
	assert.Equal(t, 0, snap.StringIndex)
	assert.Equal(t, 3, snap.TypedLength)
	assert.Equal(t, 1, snap.Iteration)
	assert.Equal(t, 2, snap.StringCount)
	assert.False(t, snap.IsPaused)
	assert.Equal(t, 0, sched.Pending(), "New must not schedule")
}

func TestEngine_New_StartEmpty(t *testing.T) {
	e, _, _ := newTestEngine(t, []string{"one"}, fastConfig())

	snap := e.Snapshot()
	assert.Equal(t, typewriter.Typing, snap.Phase)
	assert.Equal(t, "", snap.Text)
	assert.Equal(t, 0, snap.TypedLength)
}

func TestEngine_New_Validation(t *testing.T) {
	tests := []struct {
		name  string
		strs  []string
		cfg   func(*typewriter.Config)
		field string
	}{
		{"nil strings", nil, nil, "strings"},
		{"empty strings", []string{}, nil, "strings"},
		{"negative type interval", []string{"a"}, func(c *typewriter.Config) { c.TypeInterval = -1 }, "type_interval"},
		{"negative delete interval", []string{"a"}, func(c *typewriter.Config) { c.DeleteInterval = -1 }, "delete_interval"},
		{"negative hold", []string{"a"}, func(c *typewriter.Config) { c.HoldFor = -time.Second }, "hold_for"},
		{"negative hold empty", []string{"a"}, func(c *typewriter.Config) { c.HoldEmptyFor = -time.Second }, "hold_empty_for"},
		{"negative iterations", []string{"a"}, func(c *typewriter.Config) { c.Iterations = -1 }, "iterations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := typewriter.DefaultConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			_, err := typewriter.New(tt.strs, cfg)
			require.Error(t, err)
			assert.True(t, typewriter.IsValidationError(err))

			var ve *typewriter.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestEngine_New_EmptyStringsSentinel(t *testing.T) {
	_, err := typewriter.New(nil, typewriter.DefaultConfig())
	assert.ErrorIs(t, err, typewriter.ErrEmptyStrings)
}

func TestEngine_HiByeExample(t *testing.T) {
	e, sched, rec := newTestEngine(t, []string{"Hi", "Bye"}, fastConfig())
	require.NoError(t, e.Start())

	sched.RunUntilIdle(100)

	assert.Equal(t, []string{"H", "Hi", "H", "", "B", "By", "Bye"}, rec.texts(""))
	assert.Equal(t, 5, rec.count(typewriter.KindType))
	assert.Equal(t, 2, rec.count(typewriter.KindDelete))

	snap := e.Snapshot()
	assert.Equal(t, typewriter.Complete, snap.Phase)
	assert.Equal(t, "Bye", snap.Text)
	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, 90*time.Millisecond, sched.Now())
}

func TestEngine_TypingTakesOneTransitionPerCharacter(t *testing.T) {
	for _, s := range []string{"a", "abc", "typewriter", ""} {
		t.Run(s, func(t *testing.T) {
			cfg := fastConfig()
			cfg.FinishEmpty = true
			e, sched, rec := newTestEngine(t, []string{s}, cfg)
			require.NoError(t, e.Start())

			sched.RunUntilIdle(1000)

			n := typewriter.Length(s)
			assert.Equal(t, n, rec.count(typewriter.KindType))
			assert.Equal(t, n, rec.count(typewriter.KindDelete))
			assert.Equal(t, typewriter.Complete, e.Phase())
			assert.Equal(t, "", e.Text())
		})
	}
}

func TestEngine_TypedLengthStaysInBounds(t *testing.T) {
	cfg := fastConfig()
	cfg.Loop = true
	cfg.Iterations = 2
	e, sched, rec := newTestEngine(t, []string{"alpha", "be", "", "gamma ray"}, cfg)
	require.NoError(t, e.Start())

	sched.RunUntilIdle(10000)
	require.Equal(t, typewriter.Complete, e.Phase())

	strs := e.Strings()
	for _, tr := range rec.all() {
		snap := tr.Snapshot
		assert.GreaterOrEqual(t, snap.TypedLength, 0)
		assert.LessOrEqual(t, snap.TypedLength, typewriter.Length(strs[snap.StringIndex]))
	}
}

func TestEngine_LoopDisabledStaysComplete(t *testing.T) {
	cfg := fastConfig()
	cfg.HoldFor = 500 * time.Millisecond
	e, sched, rec := newTestEngine(t, []string{"ab", "cd"}, cfg)
	require.NoError(t, e.Start())

	sched.RunUntilIdle(1000)
	require.Equal(t, typewriter.Complete, e.Phase())
	assert.Equal(t, "cd", e.Text())
	assert.Equal(t, 1, rec.count(typewriter.KindComplete))

	sched.Advance(time.Hour)
	assert.Equal(t, typewriter.Complete, e.Phase())
	assert.Equal(t, 0, sched.Pending())
}

func TestEngine_FinishEmpty(t *testing.T) {
	cfg := fastConfig()
	cfg.FinishEmpty = true
	e, sched, rec := newTestEngine(t, []string{"ab", "cd"}, cfg)
	require.NoError(t, e.Start())

	sched.RunUntilIdle(1000)

	snap := e.Snapshot()
	assert.Equal(t, typewriter.Complete, snap.Phase)
	assert.Equal(t, "", snap.Text)
	assert.Equal(t, 0, snap.StringIndex)
	assert.Equal(t, []string{"a", "ab", "a", "", "c", "cd", "c", ""}, rec.texts(""))
}

func TestEngine_IterationLimit(t *testing.T) {
	cfg := fastConfig()
	cfg.Loop = true
	cfg.Iterations = 3
	e, sched, rec := newTestEngine(t, []string{"a", "b"}, cfg)
	require.NoError(t, e.Start())

	sched.RunUntilIdle(10000)

	snap := e.Snapshot()
	require.Equal(t, typewriter.Complete, snap.Phase)
	assert.Equal(t, "b", snap.Text)
	assert.Equal(t, 3, snap.Iteration)
	assert.True(t, snap.IsFinalIteration)

	typedA, typedB := 0, 0
	for _, tr := range rec.all() {
		if tr.Kind != typewriter.KindType {
			continue
		}
		switch tr.Snapshot.Text {
		case "a":
			typedA++
		case "b":
			typedB++
		}
	}
	assert.Equal(t, 3, typedA, "each string typed once per pass")
	assert.Equal(t, 3, typedB)
}

func TestEngine_LoopForever(t *testing.T) {
	cfg := fastConfig()
	cfg.Loop = true
	e, sched, _ := newTestEngine(t, []string{"ab"}, cfg)
	require.NoError(t, e.Start())

	fired := sched.RunUntilIdle(500)
	assert.Equal(t, 500, fired, "unlimited loop never goes idle")
	assert.NotEqual(t, typewriter.Complete, e.Phase())
	assert.Greater(t, e.Snapshot().Iteration, 10)
}

func TestEngine_StartWithFirstStringTyped(t *testing.T) {
	cfg := fastConfig()
	cfg.StartEmpty = false
	cfg.HoldFor = 100 * time.Millisecond
	e, sched, rec := newTestEngine(t, []string{"one", "two"}, cfg)
	require.NoError(t, e.Start())

	assert.Equal(t, typewriter.Waiting, e.Phase())
	assert.Equal(t, 1, rec.count(typewriter.KindHold))

	sched.Advance(99 * time.Millisecond)
	assert.Equal(t, "one", e.Text(), "still holding")

	// Hold ends at 100ms, first delete at 110ms.
	sched.Advance(11 * time.Millisecond)
	assert.Equal(t, "on", e.Text())

	sched.RunUntilIdle(1000)
	assert.Equal(t, typewriter.Complete, e.Phase())
	assert.Equal(t, "two", e.Text())
}

func TestEngine_SingleStringWithoutLoopCompletesOnStart(t *testing.T) {
	cfg := fastConfig()
	cfg.StartEmpty = false
	e, sched, _ := newTestEngine(t, []string{"done"}, cfg)
	require.NoError(t, e.Start())

	assert.Equal(t, typewriter.Complete, e.Phase())
	assert.Equal(t, "done", e.Text())
	assert.Equal(t, 0, sched.Pending())
}

func TestEngine_Start_Twice(t *testing.T) {
	e, _, _ := newTestEngine(t, []string{"a"}, fastConfig())
	require.NoError(t, e.Start())
	assert.ErrorIs(t, e.Start(), typewriter.ErrAlreadyStarted)
}

func TestEngine_StartPaused(t *testing.T) {
	cfg := fastConfig()
	cfg.StartPaused = true
	e, sched, _ := newTestEngine(t, []string{"abc"}, cfg)

	assert.True(t, e.Snapshot().IsPaused)
	require.NoError(t, e.Start())
	assert.Equal(t, 0, sched.Pending())

	sched.Advance(time.Second)
	assert.Equal(t, "", e.Text())

	e.Resume()
	assert.False(t, e.Snapshot().IsPaused)
	assert.Equal(t, "a", e.Text(), "resume in Typing types immediately")
	assert.Equal(t, 1, sched.Pending())
}

func TestEngine_ResumeBeforeStart(t *testing.T) {
	cfg := fastConfig()
	cfg.StartPaused = true
	e, sched, rec := newTestEngine(t, []string{"abc"}, cfg)

	e.Resume()
	assert.Equal(t, 1, rec.count(typewriter.KindStart))
	assert.Equal(t, 1, sched.Pending())
	assert.ErrorIs(t, e.Start(), typewriter.ErrAlreadyStarted)
}

func TestEngine_PauseCancelsTimer(t *testing.T) {
	e, sched, rec := newTestEngine(t, []string{"abcdef"}, fastConfig())
	require.NoError(t, e.Start())
	sched.Advance(30 * time.Millisecond)
	require.Equal(t, "abc", e.Text())

	e.Pause()
	e.Pause()
	assert.Equal(t, 1, rec.count(typewriter.KindPause), "pause is idempotent")
	assert.Equal(t, 0, sched.Pending())

	sched.Advance(time.Hour)
	assert.Equal(t, "abc", e.Text())
	assert.True(t, e.Snapshot().IsPaused)
}

func TestEngine_ResumeWhenRunningIsNoop(t *testing.T) {
	e, sched, rec := newTestEngine(t, []string{"abcdef"}, fastConfig())
	require.NoError(t, e.Start())
	sched.Advance(20 * time.Millisecond)

	e.Resume()
	assert.Equal(t, "ab", e.Text())
	assert.Equal(t, 0, rec.count(typewriter.KindResume))
	assert.Equal(t, 1, sched.Pending())
}

func TestEngine_PauseResumePreservesSequence(t *testing.T) {
	strs := []string{"Hello", "wide", "world"}
	cfg := fastConfig()
	cfg.HoldFor = 30 * time.Millisecond
	cfg.HoldEmptyFor = 20 * time.Millisecond

	base, baseSched, baseRec := newTestEngine(t, strs, cfg)
	require.NoError(t, base.Start())
	baseSched.RunUntilIdle(10000)
	require.Equal(t, typewriter.Complete, base.Phase())

	for _, every := range []int{1, 2, 3, 7} {
		e, sched, rec := newTestEngine(t, strs, cfg)
		require.NoError(t, e.Start())

		for step := 0; step < 10000 && e.Phase() != typewriter.Complete; step++ {
			if step%every == 0 {
				e.Pause()
				e.Resume()
			}
			if !sched.RunNext() {
				break
			}
		}

		assert.Equal(t, baseRec.texts(""), rec.texts(""), "pause every %d steps", every)
		assert.Equal(t, base.Snapshot().Text, e.Snapshot().Text)
		assert.Equal(t, typewriter.Complete, e.Phase())
	}
}

func TestEngine_PauseDuringHold(t *testing.T) {
	cfg := fastConfig()
	cfg.HoldFor = time.Second
	e, sched, _ := newTestEngine(t, []string{"ab", "cd"}, cfg)
	require.NoError(t, e.Start())

	sched.Advance(30 * time.Millisecond)
	require.Equal(t, typewriter.Waiting, e.Phase())

	e.Pause()
	sched.Advance(5 * time.Second)
	assert.Equal(t, "ab", e.Text())

	e.Resume()
	assert.Equal(t, typewriter.Deleting, e.Phase())
	sched.Advance(10 * time.Millisecond)
	assert.Equal(t, "a", e.Text())
}

func TestEngine_PauseAtEndOfCurrentString(t *testing.T) {
	e, sched, rec := newTestEngine(t, []string{"ab", "cd"}, fastConfig())
	require.NoError(t, e.Start())
	sched.Advance(10 * time.Millisecond)
	require.Equal(t, "a", e.Text())

	e.PauseAtEndOfCurrentString()
	assert.True(t, e.Snapshot().IsPausingAtEnd)

	sched.RunUntilIdle(100)

	snap := e.Snapshot()
	assert.Equal(t, "ab", snap.Text, "string finished before pausing")
	assert.True(t, snap.IsPaused)
	assert.False(t, snap.IsPausingAtEnd)
	assert.Equal(t, typewriter.Deleting, snap.Phase)
	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, 0, rec.count(typewriter.KindHold))

	e.Resume()
	assert.Equal(t, "a", e.Text(), "resume continues with deletion")

	sched.RunUntilIdle(100)
	assert.Equal(t, typewriter.Complete, e.Phase())
	assert.Equal(t, "cd", e.Text())
}

func TestEngine_ReplaceStrings_Deferred(t *testing.T) {
	e, sched, rec := newTestEngine(t, []string{"hello"}, fastConfig())
	require.NoError(t, e.Start())
	sched.Advance(30 * time.Millisecond)
	require.Equal(t, "hel", e.Text())

	require.NoError(t, e.ReplaceStrings([]string{"yo"}))
	assert.Equal(t, "hel", e.Text(), "replacement must not touch visible text")
	assert.True(t, e.Snapshot().HasPendingReplacement)
	assert.Equal(t, []string{"hello"}, e.Strings())

	sched.RunUntilIdle(1000)

	assert.Equal(t, []string{"yo"}, e.Strings())
	assert.Equal(t, []string{"h", "he", "hel", "hell", "hello", "hell", "hel", "he", "h", "", "y", "yo"}, rec.texts(""))
	assert.Equal(t, 1, rec.count(typewriter.KindSwap))
	assert.Equal(t, typewriter.Complete, e.Phase())
	assert.Equal(t, "yo", e.Text())
}

func TestEngine_ReplaceStrings_Immediate(t *testing.T) {
	cfg := fastConfig()
	cfg.StartPaused = true
	e, _, rec := newTestEngine(t, []string{"old"}, cfg)
	require.NoError(t, e.Start())

	require.NoError(t, e.ReplaceStrings([]string{"new", "list"}))
	assert.Equal(t, []string{"new", "list"}, e.Strings())
	assert.False(t, e.Snapshot().HasPendingReplacement)
	assert.Equal(t, 1, rec.count(typewriter.KindReplace))
	assert.Equal(t, 0, rec.count(typewriter.KindSwap))
}

func TestEngine_ReplaceStrings_ClampsIndex(t *testing.T) {
	cfg := fastConfig()
	cfg.HoldEmptyFor = 50 * time.Millisecond
	e, sched, rec := newTestEngine(t, []string{"a", "b", "c"}, cfg)
	require.NoError(t, e.Start())

	for e.Snapshot().StringIndex != 2 {
		require.True(t, sched.RunNext())
	}
	require.Equal(t, 0, e.Snapshot().TypedLength)

	require.NoError(t, e.ReplaceStrings([]string{"z"}))
	assert.Equal(t, 0, e.Snapshot().StringIndex)
	require.Equal(t, 1, rec.count(typewriter.KindWarning))

	var warning *typewriter.StateWarning
	for _, tr := range rec.all() {
		if tr.Kind == typewriter.KindWarning {
			warning = tr.Warning
		}
	}
	require.NotNil(t, warning)
	assert.Equal(t, typewriter.WarnIndexOutOfRange, warning.Code)

	sched.RunUntilIdle(100)
	assert.Equal(t, "z", e.Text())
	assert.Equal(t, typewriter.Complete, e.Phase())
}

func TestEngine_ReplaceStrings_Empty(t *testing.T) {
	e, _, _ := newTestEngine(t, []string{"a"}, fastConfig())

	err := e.ReplaceStrings(nil)
	require.Error(t, err)
	assert.True(t, typewriter.IsValidationError(err))
	assert.Equal(t, []string{"a"}, e.Strings())
}

func TestEngine_ReplaceStrings_AfterComplete(t *testing.T) {
	e, sched, rec := newTestEngine(t, []string{"ab"}, fastConfig())
	require.NoError(t, e.Start())
	sched.RunUntilIdle(100)
	require.Equal(t, typewriter.Complete, e.Phase())
	require.Equal(t, "ab", e.Text())

	require.NoError(t, e.ReplaceStrings([]string{"xy"}))
	assert.Equal(t, 1, rec.count(typewriter.KindRestart))
	assert.Equal(t, typewriter.Deleting, e.Phase())

	sched.RunUntilIdle(100)
	assert.Equal(t, typewriter.Complete, e.Phase())
	assert.Equal(t, "xy", e.Text())
	assert.Equal(t, []string{"xy"}, e.Strings())
}

func TestEngine_ResumeFromCompleteRestarts(t *testing.T) {
	e, sched, rec := newTestEngine(t, []string{"hi"}, fastConfig())
	require.NoError(t, e.Start())
	sched.RunUntilIdle(100)
	require.Equal(t, typewriter.Complete, e.Phase())

	e.Resume()
	sched.RunUntilIdle(100)

	assert.Equal(t, 1, rec.count(typewriter.KindRestart))
	assert.Equal(t, 2, rec.count(typewriter.KindComplete))
	assert.Equal(t, []string{"h", "hi", "h", "", "h", "hi"}, rec.texts(""))
	assert.Equal(t, 1, e.Snapshot().Iteration)
}

func TestEngine_ResumeFromEmptyComplete(t *testing.T) {
	cfg := fastConfig()
	cfg.FinishEmpty = true
	e, sched, rec := newTestEngine(t, []string{"ab", "c"}, cfg)
	require.NoError(t, e.Start())
	sched.RunUntilIdle(100)
	require.Equal(t, "", e.Text())

	e.Resume()
	assert.Equal(t, typewriter.Typing, e.Phase())
	assert.Equal(t, "a", e.Text(), "no hold configured, types immediately")
	assert.Equal(t, 0, rec.count(typewriter.KindSwap))
}

func TestEngine_Dispose(t *testing.T) {
	e, sched, _ := newTestEngine(t, []string{"abc"}, fastConfig())
	require.NoError(t, e.Start())
	require.Equal(t, 1, sched.Pending())

	e.Dispose()
	assert.Equal(t, 0, sched.Pending())

	e.Resume()
	e.Pause()
	e.PauseAtEndOfCurrentString()
	assert.ErrorIs(t, e.ReplaceStrings([]string{"x"}), typewriter.ErrDisposed)
	assert.ErrorIs(t, e.Start(), typewriter.ErrDisposed)
	assert.Equal(t, 0, sched.Pending())
	e.Dispose()
}

func TestEngine_AtMostOneTimer(t *testing.T) {
	cfg := fastConfig()
	cfg.Loop = true
	cfg.Iterations = 2
	cfg.HoldFor = 20 * time.Millisecond
	cfg.HoldEmptyFor = 20 * time.Millisecond
	e, sched, _ := newTestEngine(t, []string{"one", "two"}, cfg)
	require.NoError(t, e.Start())

	for i := 0; sched.RunNext(); i++ {
		require.LessOrEqual(t, sched.Pending(), 1)
		if e.Phase() == typewriter.Complete {
			continue
		}
		switch i % 5 {
		case 1:
			e.Pause()
			e.Resume()
		case 3:
			e.Resume()
		}
		require.LessOrEqual(t, sched.Pending(), 1)
	}
	assert.Equal(t, typewriter.Complete, e.Phase())
}

// leakyScheduler ignores Stop, so superseded callbacks still fire.
type leakyScheduler struct {
	*testutil.FakeScheduler
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func (s leakyScheduler) AfterFunc(d time.Duration, f func()) typewriter.Timer {
	s.FakeScheduler.AfterFunc(d, f)
	return leakyTimer{}
}

func TestEngine_StaleCallbacksIgnored(t *testing.T) {
	sched := leakyScheduler{testutil.NewFakeScheduler()}
	rec := &recorder{}
	e, err := typewriter.New([]string{"abcdef"}, fastConfig(),
		typewriter.WithScheduler(sched),
		typewriter.WithObserver(rec.observe),
	)
	require.NoError(t, err)
	require.NoError(t, e.Start())

	sched.Advance(10 * time.Millisecond)
	e.Pause()
	e.Resume()
	e.Pause()
	e.Resume()

	sched.Advance(time.Second)

	assert.Equal(t, []string{"a", "ab", "abc", "abcd", "abcde", "abcdef"}, rec.texts(""))
	prev := 0
	for _, tr := range rec.all() {
		if tr.Kind == typewriter.KindType {
			assert.Equal(t, prev+1, tr.Snapshot.TypedLength, "no double advance")
			prev = tr.Snapshot.TypedLength
		}
	}
}

// flakyScheduler panics on one AfterFunc call.
type flakyScheduler struct {
	*testutil.FakeScheduler
	calls   int
	panicAt int
}

func (s *flakyScheduler) AfterFunc(d time.Duration, f func()) typewriter.Timer {
	s.calls++
	if s.calls == s.panicAt {
		panic("scheduler unavailable")
	}
	return s.FakeScheduler.AfterFunc(d, f)
}

func TestEngine_RecoversFromPanickingTransition(t *testing.T) {
	sched := &flakyScheduler{FakeScheduler: testutil.NewFakeScheduler(), panicAt: 3}
	rec := &recorder{}
	e, err := typewriter.New([]string{"abcd"}, fastConfig(),
		typewriter.WithScheduler(sched),
		typewriter.WithObserver(rec.observe),
	)
	require.NoError(t, err)
	require.NoError(t, e.Start())

	sched.RunUntilIdle(100)

	assert.Equal(t, 1, rec.count(typewriter.KindWarning))
	assert.Equal(t, typewriter.Complete, e.Phase())
	assert.Equal(t, "abcd", e.Text())
	assert.Equal(t, []string{"a", "ab", "abc", "abcd"}, rec.texts(""))
}

func TestEngine_Subscribe(t *testing.T) {
	e, sched, _ := newTestEngine(t, []string{"abc"}, fastConfig())

	var got []typewriter.Kind
	unsubscribe := e.Subscribe(func(tr typewriter.Transition) {
		got = append(got, tr.Kind)
	})
	require.NoError(t, e.Start())
	sched.Advance(10 * time.Millisecond)

	unsubscribe()
	sched.RunUntilIdle(100)

	assert.Equal(t, []typewriter.Kind{typewriter.KindStart, typewriter.KindType}, got)
}

func TestEngine_TransitionSeqIncreases(t *testing.T) {
	e, sched, rec := newTestEngine(t, []string{"ab", "c"}, fastConfig())
	require.NoError(t, e.Start())
	sched.RunUntilIdle(100)

	ts := rec.all()
	require.NotEmpty(t, ts)
	for i, tr := range ts {
		assert.Equal(t, int64(i+1), tr.Seq)
	}
}

func TestEngine_Flags(t *testing.T) {
	cfg := fastConfig()
	cfg.Loop = true
	cfg.Iterations = 1
	e, sched, _ := newTestEngine(t, []string{"ab", "c"}, cfg)
	require.NoError(t, e.Start())

	snap := e.Snapshot()
	assert.False(t, snap.IsAtLastString)
	assert.False(t, snap.IsAtLastCharacter)
	assert.True(t, snap.IsFinalIteration)

	sched.Advance(20 * time.Millisecond)
	snap = e.Snapshot()
	assert.Equal(t, "ab", snap.Text)
	assert.True(t, snap.IsAtLastCharacter)

	sched.RunUntilIdle(100)
	snap = e.Snapshot()
	assert.True(t, snap.IsAtLastString)
	assert.Equal(t, "complete", snap.PhaseName)
}

func TestEngine_GraphemeClusters(t *testing.T) {
	// "e" + combining acute normalizes to one character; the thumbs-up with
	// skin tone modifier is a single grapheme cluster.
	e, sched, rec := newTestEngine(t, []string{"cafe\u0301", "\U0001F44D\U0001F3FD!"}, fastConfig())
	require.NoError(t, e.Start())
	sched.RunUntilIdle(100)

	texts := rec.texts("")
	require.GreaterOrEqual(t, len(texts), 4)
	assert.Equal(t, []string{"c", "ca", "caf", "caf\u00e9"}, texts[:4])
	assert.Equal(t, 6, rec.count(typewriter.KindType))
	assert.Equal(t, "\U0001F44D\U0001F3FD!", e.Text())
	assert.Equal(t, "caf\u00e9", e.Strings()[0])
}
