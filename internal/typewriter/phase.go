package typewriter

// Phase is the current animation mode of the engine.
type Phase int

const (
	// Typing adds one character per TypeInterval.
	Typing Phase = iota
	// Deleting removes one character per DeleteInterval.
	Deleting
	// Waiting holds a fully typed string for HoldFor.
	Waiting
	// Complete is terminal until Resume or ReplaceStrings restarts the engine.
	Complete
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case Typing:
		return "typing"
	case Deleting:
		return "deleting"
	case Waiting:
		return "waiting"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// ParsePhase converts a phase name back into a Phase.
func ParsePhase(s string) (Phase, bool) {
	switch s {
	case "typing":
		return Typing, true
	case "deleting":
		return Deleting, true
	case "waiting":
		return Waiting, true
	case "complete":
		return Complete, true
	}
	return 0, false
}

// Kind identifies what caused a Transition.
type Kind string

const (
	KindStart      Kind = "start"
	KindType       Kind = "type"
	KindDelete     Kind = "delete"
	KindHold       Kind = "hold"
	KindAdvance    Kind = "advance"
	KindSwap       Kind = "swap"
	KindComplete   Kind = "complete"
	KindRestart    Kind = "restart"
	KindPause      Kind = "pause"
	KindResume     Kind = "resume"
	KindPauseAtEnd Kind = "pause_at_end"
	KindReplace    Kind = "replace"
	KindWarning    Kind = "warning"
)

// ChangesText reports whether transitions of this kind can alter the
// visible text.
func (k Kind) ChangesText() bool {
	switch k {
	case KindType, KindDelete, KindSwap:
		return true
	}
	return false
}
