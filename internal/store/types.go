package store

import (
	"time"

	"github.com/roach88/typewriter/internal/typewriter"
)

// Run describes one recorded engine run.
type Run struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Strings []string `json:"strings"`

	// Config is the JSON encoding of the engine configuration used.
	Config string `json:"config"`
}

// TransitionRecord is one stored engine transition.
type TransitionRecord struct {
	Seq         int64  `json:"seq"`
	AtMS        int64  `json:"at_ms"`
	Kind        string `json:"kind"`
	Phase       string `json:"phase"`
	StringIndex int    `json:"string_index"`
	TypedLength int    `json:"typed_length"`
	Iteration   int    `json:"iteration"`
	Text        string `json:"text"`
	Paused      bool   `json:"paused"`
	Warning     string `json:"warning,omitempty"`
}

// RecordFromTransition converts an engine transition observed at virtual
// time at into a storable record.
func RecordFromTransition(tr typewriter.Transition, at time.Duration) TransitionRecord {
	rec := TransitionRecord{
		Seq:         tr.Seq,
		AtMS:        at.Milliseconds(),
		Kind:        string(tr.Kind),
		Phase:       tr.Snapshot.Phase.String(),
		StringIndex: tr.Snapshot.StringIndex,
		TypedLength: tr.Snapshot.TypedLength,
		Iteration:   tr.Snapshot.Iteration,
		Text:        tr.Snapshot.Text,
		Paused:      tr.Snapshot.IsPaused,
	}
	if tr.Warning != nil {
		rec.Warning = tr.Warning.Error()
	}
	return rec
}
