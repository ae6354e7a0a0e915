// Package allocator implements the three-pass voice-stealing policy
// (spec §4.5): free voice, then a voice whose key has already been
// released (sustain-held only), then the oldest voice in play. It is
// grounded on the teacher's voice allocator's findFreeVoice/stealVoice
// pair (pkg/framework/voice.Allocator), generalized from two passes to
// the spec's three and from map-based note tracking to the keytable's
// fixed-size slot table.
package allocator

// Allocator picks which voice index should take the next NoteOn. It is
// stateless beyond a rotation cursor, and holds no pointers to the
// voices or key table themselves — those are passed in on each call so
// it can be driven straight from the per-block dispatch loop.
type Allocator struct {
	lastAllocated int
}

// New returns an Allocator with its rotation cursor at -1 (so the first
// allocation starts scanning from index 0).
func New() *Allocator {
	return &Allocator{lastAllocated: -1}
}

// Allocate runs the three-pass policy over n voices and returns the
// chosen voice index. isFree(i) reports whether voice i is Off.
// age(i) returns voice i's current age in samples (larger is older).
// hasLiveKey(i) reports whether some held key in the key table still
// points at voice i (pass 2 excludes those — only sustain-only voices
// are eligible there).
func (a *Allocator) Allocate(n int, isFree func(i int) bool, age func(i int) int, hasLiveKey func(i int) bool) int {
	if n <= 0 {
		return -1
	}

	// Pass 1: rotating scan for a free voice.
	if idx, ok := a.rotatingScan(n, func(i int) bool { return isFree(i) }); ok {
		a.lastAllocated = idx
		return idx
	}

	// Pass 2: rotating scan for a voice with no live key (sustain-held
	// but the originating note was already released).
	if idx, ok := a.rotatingScan(n, func(i int) bool { return !isFree(i) && !hasLiveKey(i) }); ok {
		a.lastAllocated = idx
		return idx
	}

	// Pass 3: steal the oldest voice; first maximum wins, no rotation.
	oldest := 0
	oldestAge := age(0)
	for i := 1; i < n; i++ {
		if age(i) > oldestAge {
			oldest = i
			oldestAge = age(i)
		}
	}
	a.lastAllocated = oldest
	return oldest
}

// rotatingScan walks n indices starting at (lastAllocated+1)%n looking
// for the first one satisfying pred.
func (a *Allocator) rotatingScan(n int, pred func(i int) bool) (int, bool) {
	for i := 0; i < n; i++ {
		idx := (a.lastAllocated + 1 + i) % n
		if pred(idx) {
			return idx, true
		}
	}
	return -1, false
}
