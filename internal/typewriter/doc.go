// Package typewriter implements the typewriter timing engine.
//
// The engine animates a rotating list of strings by typing and deleting one
// character (grapheme cluster) at a time, holding between strings, looping
// over the list and eventually completing.
//
// ARCHITECTURE:
//
// Single Outstanding Timer:
// The engine owns at most one scheduled callback. Every call to schedule
// stops the previous timer and bumps a generation counter, so a callback
// that already fired but lost the race to the mutex is discarded. Without
// this two competing timers could double-advance the typed length.
//
// Serialized Transitions:
// Every transition and every control call runs under one mutex. Transitions
// are therefore atomic with respect to each other regardless of which
// goroutine the Scheduler fires callbacks on.
//
// Derived Resume:
// Pause only cancels the timer and records intent. Resume re-derives the
// next action from the current Phase, so there is nothing to race.
//
// Phase Transitions:
//
//	Typing  --(string fully typed)-->  Waiting --(HoldFor)--> Deleting
//	Deleting --(string cleared)-->     Typing (next string, after HoldEmptyFor)
//	Typing/Deleting --(last string, final iteration)--> Complete
//
// Hosts drive the engine through Start, Pause, Resume,
// PauseAtEndOfCurrentString, ReplaceStrings and Dispose, and observe it
// through Snapshot or Subscribe.
package typewriter
