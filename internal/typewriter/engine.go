package typewriter

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Engine is the typewriter state machine.
//
// CRITICAL: At most one timer is ever outstanding. All state mutation
// happens under mu, either from a control method or from the single live
// scheduled callback.
//
// Thread-safety model:
//   - All exported methods are safe from any goroutine
//   - Observers are called in Seq order, never concurrently
//   - Observers run with no engine lock held; whichever goroutine is
//     delivering also delivers transitions queued meanwhile by others
//
// INVARIANTS:
//   - 0 <= typed <= len(current string)
//   - 0 <= index < list.len()
//   - iteration >= 1
type Engine struct {
	mu    sync.Mutex
	obsMu sync.Mutex

	cfg    Config
	sched  Scheduler
	logger *slog.Logger

	list    *stringList
	pending *stringList

	phase        Phase
	index        int
	typed        int
	iteration    int
	paused       bool
	pausingAtEnd bool
	started      bool
	disposed     bool

	timer Timer
	gen   uint64

	seq        int64
	outbox     []Transition
	delivering bool

	observers []observerEntry
	nextObsID int
}

type observerEntry struct {
	id int
	fn Observer
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithScheduler sets the scheduler used for all delays.
//
// Default: SystemScheduler
// Use testutil.NewFakeScheduler() for deterministic tests.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		e.sched = s
	}
}

// WithLogger sets the logger for warnings and lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithObserver registers an observer before the first transition.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, observerEntry{id: e.nextObsID, fn: o})
		e.nextObsID++
	}
}

// New creates an engine over strs.
//
// Returns a ValidationError if strs is empty or cfg is invalid. New never
// schedules anything; call Start once the host is ready to display text.
func New(strs []string, cfg Config, opts ...Option) (*Engine, error) {
	list, err := newStringList(strs)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		sched:     SystemScheduler{},
		logger:    slog.Default(),
		list:      list,
		iteration: 1,
		paused:    cfg.StartPaused,
	}
	for _, opt := range opts {
		opt(e)
	}

	if cfg.StartEmpty {
		e.phase = Typing
	} else {
		e.phase = Waiting
		e.typed = len(list.glyphs[0])
	}

	return e, nil
}

// Start begins the animation.
//
// With StartPaused (or after an early Pause) the engine only records the
// pause; Resume starts it.
// Returns ErrDisposed after Dispose and ErrAlreadyStarted on a second call.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.unlockAndNotify()

	if e.disposed {
		return ErrDisposed
	}
	if e.started {
		return ErrAlreadyStarted
	}

	e.started = true
	e.emit(KindStart)
	if e.paused {
		return nil
	}
	e.kickoff()
	return nil
}

// Pause holds the current text and cancels the live timer. Idempotent.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.unlockAndNotify()

	if e.disposed || e.paused {
		return
	}
	e.paused = true
	e.cancel()
	e.emit(KindPause)
}

// Resume continues from the current phase.
//
// In Complete, Resume restarts the animation from the first string. Before
// Start, Resume starts the engine regardless of StartPaused.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.unlockAndNotify()

	if e.disposed {
		return
	}
	if !e.started {
		e.started = true
		e.paused = false
		e.emit(KindStart)
		e.kickoff()
		return
	}
	if e.phase == Complete {
		e.paused = false
		e.restart()
		return
	}
	if !e.paused {
		return
	}

	e.paused = false
	e.emit(KindResume)
	switch e.phase {
	case Typing:
		e.typeStep()
	case Deleting:
		e.deleteStep()
	case Waiting:
		e.beginDelete()
	}
}

// PauseAtEndOfCurrentString pauses the next time a string is fully typed.
// It never interrupts a string mid-animation.
func (e *Engine) PauseAtEndOfCurrentString() {
	e.mu.Lock()
	defer e.unlockAndNotify()

	if e.disposed || e.pausingAtEnd {
		return
	}
	e.pausingAtEnd = true
	e.emit(KindPauseAtEnd)
}

// ReplaceStrings swaps the source list.
//
// With nothing on screen the swap is immediate. Otherwise the list is held
// as a pending replacement and swapped when the current string has been
// deleted, so no string is cut off mid-animation. In Complete the engine
// restarts on the new list.
func (e *Engine) ReplaceStrings(strs []string) error {
	list, err := newStringList(strs)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.unlockAndNotify()

	if e.disposed {
		return ErrDisposed
	}

	if e.typed == 0 {
		e.list = list
		e.pending = nil
		if e.index >= list.len() {
			stale := e.index
			e.index = 0
			e.warn(WarnIndexOutOfRange, fmt.Sprintf("string index %d past replacement of length %d; resetting to first string", stale, list.len()))
		}
	} else {
		e.pending = list
	}
	e.emit(KindReplace)

	if e.phase == Complete && !e.paused {
		e.restart()
	}
	return nil
}

// Dispose cancels the live timer. The engine is unusable afterwards.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return
	}
	e.disposed = true
	e.cancel()
	e.outbox = nil
	e.logger.Debug("typewriter disposed", "seq", e.seq)
}

// Subscribe registers an observer and returns a function removing it.
func (e *Engine) Subscribe(o Observer) (unsubscribe func()) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()

	id := e.nextObsID
	e.nextObsID++
	e.observers = append(e.observers, observerEntry{id: id, fn: o})
	return func() {
		e.obsMu.Lock()
		defer e.obsMu.Unlock()
		for i, entry := range e.observers {
			if entry.id == id {
				e.observers = append(e.observers[:i], e.observers[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// Text returns the currently visible text.
func (e *Engine) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.list.prefix(e.index, e.typed)
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Strings returns a copy of the active (normalized) string list.
func (e *Engine) Strings() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, e.list.len())
	copy(out, e.list.raw)
	return out
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// --- transitions (all called with mu held) ---

// kickoff schedules the first step after Start.
func (e *Engine) kickoff() {
	switch e.phase {
	case Typing:
		e.schedule(e.cfg.TypeInterval, e.typeStep)
	case Waiting:
		// The first string is already on screen: treat it as just typed.
		e.endOfString()
	case Deleting:
		e.deleteStep()
	}
}

// typeStep adds one character or handles the end of the string.
func (e *Engine) typeStep() {
	e.phase = Typing
	if !e.atLastCharacter() {
		e.typed++
		e.emit(KindType)
		e.schedule(e.cfg.TypeInterval, e.typeStep)
		return
	}
	e.endOfString()
}

// endOfString runs once the current string is fully typed.
func (e *Engine) endOfString() {
	e.phase = Waiting

	// A pending replacement keeps the engine running until it is swapped in.
	if e.atLastString() && e.finalIteration() && !e.cfg.FinishEmpty && e.pending == nil {
		e.complete()
		return
	}

	if e.pausingAtEnd {
		e.pausingAtEnd = false
		e.paused = true
		e.phase = Deleting
		e.emit(KindPause)
		return
	}

	e.emit(KindHold)
	if e.cfg.HoldFor == 0 {
		e.beginDelete()
		return
	}
	e.schedule(e.cfg.HoldFor, e.beginDelete)
}

// beginDelete ends a hold and starts deleting.
func (e *Engine) beginDelete() {
	e.phase = Deleting
	e.schedule(e.cfg.DeleteInterval, e.deleteStep)
}

// deleteStep removes one character or moves to the next string.
func (e *Engine) deleteStep() {
	e.phase = Deleting
	if e.typed > 0 {
		e.typed--
		e.emit(KindDelete)
		e.schedule(e.cfg.DeleteInterval, e.deleteStep)
		return
	}
	e.nextString()
}

// nextString runs at the empty boundary between two strings.
func (e *Engine) nextString() {
	if e.pending != nil {
		e.swap()
		e.scheduleTyping()
		return
	}

	e.phase = Typing
	if e.atLastString() {
		// finalIteration covers Loop == false.
		if e.finalIteration() {
			e.complete()
			return
		}
		e.iteration++
	}
	e.index = (e.index + 1) % e.list.len()
	e.emit(KindAdvance)
	e.scheduleTyping()
}

// scheduleTyping starts the next string after HoldEmptyFor.
func (e *Engine) scheduleTyping() {
	if e.cfg.HoldEmptyFor == 0 {
		e.typeStep()
		return
	}
	e.schedule(e.cfg.HoldEmptyFor, e.typeStep)
}

// swap installs the pending list and rewinds to its first string.
func (e *Engine) swap() {
	e.list = e.pending
	e.pending = nil
	e.index = 0
	e.typed = 0
	e.iteration = 1
	e.phase = Typing
	e.emit(KindSwap)
	e.logger.Debug("typewriter strings swapped", "count", e.list.len())
}

func (e *Engine) complete() {
	e.cancel()
	e.phase = Complete
	e.pausingAtEnd = false
	if e.typed == 0 {
		e.index = 0
	}
	e.emit(KindComplete)
	e.logger.Debug("typewriter complete", "iteration", e.iteration, "text", e.list.prefix(e.index, e.typed))
}

// restart leaves Complete. With text on screen the current list is queued
// as a replacement of itself so the restart goes through the deletion path.
func (e *Engine) restart() {
	e.emit(KindRestart)
	if e.typed > 0 {
		if e.pending == nil {
			e.pending = e.list
		}
		e.beginDelete()
		return
	}

	if e.pending != nil {
		e.swap()
	} else {
		e.index = 0
		e.iteration = 1
		e.phase = Typing
	}
	e.scheduleTyping()
}

// --- timer ---

// schedule replaces the live timer with one running step after d.
func (e *Engine) schedule(d time.Duration, step func()) {
	e.cancel()
	gen := e.gen
	e.timer = e.sched.AfterFunc(d, func() {
		e.fire(gen, step)
	})
}

// cancel stops the live timer and invalidates any callback in flight.
func (e *Engine) cancel() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// fire runs a scheduled step unless it was superseded.
func (e *Engine) fire(gen uint64, step func()) {
	e.mu.Lock()
	defer e.unlockAndNotify()

	if gen != e.gen || e.disposed || e.paused {
		return
	}
	e.timer = nil
	e.heal()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("typewriter transition panicked", "panic", r, "phase", e.phase.String())
			e.warn(WarnRecoveredPanic, fmt.Sprintf("transition panicked: %v", r))
			e.heal()
			e.reschedule()
		}
	}()
	step()
}

// heal clamps index and typed length back into range.
func (e *Engine) heal() {
	if e.index < 0 || e.index >= e.list.len() {
		stale := e.index
		e.index = 0
		e.typed = 0
		e.warn(WarnIndexOutOfRange, fmt.Sprintf("no string at index %d; resetting to first string", stale))
	}
	if n := len(e.list.glyphs[e.index]); e.typed > n {
		stale := e.typed
		e.typed = n
		e.warn(WarnStringTooShort, fmt.Sprintf("string %d has %d characters but %d are typed", e.index, n, stale))
	}
	if e.typed < 0 {
		e.typed = 0
	}
}

// reschedule registers the next legitimate timer for the current phase
// after a recovered failure.
func (e *Engine) reschedule() {
	if e.timer != nil || e.paused || e.disposed {
		return
	}
	switch e.phase {
	case Typing:
		e.schedule(e.cfg.TypeInterval, e.typeStep)
	case Deleting:
		e.schedule(e.cfg.DeleteInterval, e.deleteStep)
	case Waiting:
		e.schedule(e.cfg.HoldFor, e.beginDelete)
	}
}

// --- projection ---

func (e *Engine) atLastString() bool {
	return e.index == e.list.len()-1
}

func (e *Engine) atLastCharacter() bool {
	return e.typed >= len(e.list.glyphs[e.index])
}

func (e *Engine) finalIteration() bool {
	return !e.cfg.Loop || (e.cfg.Iterations != 0 && e.iteration >= e.cfg.Iterations)
}

func (e *Engine) snapshot() Snapshot {
	return Snapshot{
		Text:                  e.list.prefix(e.index, e.typed),
		Phase:                 e.phase,
		PhaseName:             e.phase.String(),
		StringIndex:           e.index,
		TypedLength:           e.typed,
		Iteration:             e.iteration,
		StringCount:           e.list.len(),
		IsAtLastString:        e.atLastString(),
		IsAtLastCharacter:     e.atLastCharacter(),
		IsFinalIteration:      e.finalIteration(),
		IsPausingAtEnd:        e.pausingAtEnd,
		IsPaused:              e.paused,
		HasPendingReplacement: e.pending != nil,
	}
}

// --- notification ---

func (e *Engine) emit(kind Kind) {
	e.seq++
	e.outbox = append(e.outbox, Transition{
		Seq:      e.seq,
		Kind:     kind,
		Snapshot: e.snapshot(),
	})
}

func (e *Engine) warn(code WarningCode, msg string) {
	w := &StateWarning{Code: code, Message: msg}
	e.logger.Warn("typewriter state warning", "code", string(code), "message", msg)
	e.seq++
	e.outbox = append(e.outbox, Transition{
		Seq:      e.seq,
		Kind:     KindWarning,
		Snapshot: e.snapshot(),
		Warning:  w,
	})
}

// unlockAndNotify releases mu and delivers queued transitions.
//
// Only one goroutine delivers at a time. A goroutine that finds delivery
// in progress leaves its transitions in the outbox for the deliverer, so
// Seq order holds and no lock is held while an observer runs.
func (e *Engine) unlockAndNotify() {
	if e.delivering || len(e.outbox) == 0 {
		e.mu.Unlock()
		return
	}

	e.delivering = true
	for len(e.outbox) > 0 {
		out := e.outbox
		e.outbox = nil
		e.mu.Unlock()
		e.deliver(out)
		e.mu.Lock()
	}
	e.delivering = false
	e.mu.Unlock()
}

func (e *Engine) deliver(out []Transition) {
	e.obsMu.Lock()
	observers := make([]observerEntry, len(e.observers))
	copy(observers, e.observers)
	e.obsMu.Unlock()

	for _, t := range out {
		for _, entry := range observers {
			e.notify(entry, t)
		}
	}
}

// notify calls one observer. A panicking observer loses that transition
// only.
func (e *Engine) notify(entry observerEntry, t Transition) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("typewriter observer panicked", "panic", r, "seq", t.Seq, "kind", string(t.Kind))
		}
	}()
	entry.fn(t)
}
