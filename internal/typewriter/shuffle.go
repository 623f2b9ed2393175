package typewriter

import "math/rand/v2"

// Shuffle returns a shuffled copy of strs using a Fisher-Yates shuffle.
//
// A nil r uses the global source. Pass a seeded *rand.Rand for reproducible
// order.
func Shuffle(strs []string, r *rand.Rand) []string {
	out := make([]string, len(strs))
	copy(out, strs)

	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if r == nil {
		rand.Shuffle(len(out), swap)
	} else {
		r.Shuffle(len(out), swap)
	}
	return out
}
