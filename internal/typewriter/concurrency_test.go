package typewriter_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/typewriter/internal/typewriter"
)

// realConfig loops forever on real timers with sub-millisecond steps.
func realConfig() typewriter.Config {
	cfg := typewriter.DefaultConfig()
	cfg.TypeInterval = 50 * time.Microsecond
	cfg.DeleteInterval = 50 * time.Microsecond
	cfg.HoldFor = 100 * time.Microsecond
	cfg.HoldEmptyFor = 50 * time.Microsecond
	cfg.StartEmpty = true
	return cfg
}

func waitOrFail(t *testing.T, done <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("%s did not finish within 5s", what)
	}
}

func TestEngine_SystemScheduler_ObserverReadsSnapshotDuringControls(t *testing.T) {
	e, err := typewriter.New([]string{"alpha", "beta"}, realConfig())
	require.NoError(t, err)
	defer e.Dispose()

	var (
		mu      sync.Mutex
		seqs    []int64
		badSnap int
	)
	e.Subscribe(func(tr typewriter.Transition) {
		time.Sleep(20 * time.Microsecond)
		snap := e.Snapshot()
		mu.Lock()
		defer mu.Unlock()
		seqs = append(seqs, tr.Seq)
		if snap.StringIndex < 0 || snap.StringIndex >= snap.StringCount {
			badSnap++
		}
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, e.Start())
		for i := 0; i < 200; i++ {
			e.Pause()
			_ = e.Text()
			e.Resume()
		}
	}()
	go func() {
		defer wg.Done()
		lists := [][]string{{"one", "two"}, {"three"}, {"alpha", "beta"}}
		for i := 0; i < 60; i++ {
			assert.NoError(t, e.ReplaceStrings(lists[i%len(lists)]))
			e.PauseAtEndOfCurrentString()
			e.Resume()
			time.Sleep(50 * time.Microsecond)
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	waitOrFail(t, done, "concurrent controls")

	// Let the timer goroutines run for a while with no control traffic.
	e.Resume()
	time.Sleep(10 * time.Millisecond)
	snapDone := make(chan struct{})
	go func() {
		_ = e.Snapshot()
		close(snapDone)
	}()
	waitOrFail(t, snapDone, "snapshot after controls")
	e.Dispose()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seqs)
	for i := 1; i < len(seqs); i++ {
		require.Greater(t, seqs[i], seqs[i-1], "observer saw seq %d after %d", seqs[i], seqs[i-1])
	}
	assert.Zero(t, badSnap)
}

func TestEngine_SystemScheduler_RunsToComplete(t *testing.T) {
	cfg := realConfig()
	cfg.Loop = false

	done := make(chan struct{})
	var once sync.Once
	e, err := typewriter.New([]string{"Hi", "Bye"}, cfg,
		typewriter.WithObserver(func(tr typewriter.Transition) {
			if tr.Kind == typewriter.KindComplete {
				once.Do(func() { close(done) })
			}
		}),
	)
	require.NoError(t, err)
	defer e.Dispose()

	require.NoError(t, e.Start())
	waitOrFail(t, done, "typewriter")

	assert.Equal(t, typewriter.Complete, e.Phase())
	assert.Equal(t, "Bye", e.Text())
}

func TestEngine_ObserverMayCallControls(t *testing.T) {
	e, sched, rec := newTestEngine(t, []string{"abcdef"}, fastConfig())
	e.Subscribe(func(tr typewriter.Transition) {
		if tr.Kind == typewriter.KindType && tr.Snapshot.TypedLength == 2 {
			e.Pause()
		}
	})

	require.NoError(t, e.Start())
	sched.Advance(time.Second)

	assert.Equal(t, "ab", e.Text())
	assert.True(t, e.Snapshot().IsPaused)
	assert.Zero(t, sched.Pending())

	ts := rec.all()
	require.GreaterOrEqual(t, len(ts), 2)
	last, prev := ts[len(ts)-1], ts[len(ts)-2]
	assert.Equal(t, typewriter.KindPause, last.Kind)
	assert.Equal(t, typewriter.KindType, prev.Kind)
	assert.Equal(t, 2, prev.Snapshot.TypedLength)
}

func TestEngine_PanickingObserverIsSkipped(t *testing.T) {
	e, sched, rec := newTestEngine(t, []string{"Hi"}, fastConfig())

	calls := 0
	e.Subscribe(func(typewriter.Transition) {
		calls++
		panic("observer bug")
	})
	var after []typewriter.Kind
	e.Subscribe(func(tr typewriter.Transition) {
		after = append(after, tr.Kind)
	})

	require.NoError(t, e.Start())
	sched.RunUntilIdle(100)

	assert.Equal(t, typewriter.Complete, e.Phase())
	assert.Equal(t, []string{"H", "Hi"}, rec.texts(""))
	assert.Equal(t, len(rec.all()), calls)
	assert.Equal(t, len(rec.all()), len(after))
}
