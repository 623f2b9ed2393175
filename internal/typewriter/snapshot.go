package typewriter

// Snapshot is a read-only copy of the engine state.
type Snapshot struct {
	Text        string `json:"text"`
	Phase       Phase  `json:"-"`
	PhaseName   string `json:"phase"`
	StringIndex int    `json:"string_index"`
	TypedLength int    `json:"typed_length"`
	Iteration   int    `json:"iteration"`
	StringCount int    `json:"string_count"`

	IsAtLastString        bool `json:"is_at_last_string"`
	IsAtLastCharacter     bool `json:"is_at_last_character"`
	IsFinalIteration      bool `json:"is_final_iteration"`
	IsPausingAtEnd        bool `json:"is_pausing_at_end"`
	IsPaused              bool `json:"is_paused"`
	HasPendingReplacement bool `json:"has_pending_replacement"`
}

// Transition is delivered to observers after every state change.
type Transition struct {
	// Seq increases by one per transition of a single engine.
	Seq int64

	// Kind says what happened.
	Kind Kind

	// Snapshot is the state after the transition.
	Snapshot Snapshot

	// Warning is set for KindWarning transitions.
	Warning *StateWarning
}

// Observer receives transitions in Seq order.
//
// Observers run with no engine lock held and never concurrently. An
// observer may read Snapshot or call a control; transitions caused by that
// control are delivered after the current one. An observer that panics is
// logged and skipped.
type Observer func(Transition)
