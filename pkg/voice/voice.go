// Package voice implements the per-voice state machine and the nine
// ChangeLists each voice owns to render its control signals. The shape —
// a single struct holding render state plus a set of owned per-parameter
// smoothers, trigger/release entry points, and an age counter used by
// the allocator's steal policy — is adapted from the teacher's voice
// allocator state (pkg/framework/voice.Allocator's per-note bookkeeping,
// GetAge/IsActive/TriggerNote/ReleaseNote) generalized from "one
// amplitude value" to the full per-voice signal set spec §4 names.
package voice

import (
	"github.com/anvilaudio/polyvoice/pkg/changelist"
	"github.com/anvilaudio/polyvoice/pkg/scale"
)

// State is a voice's position in its Off -> On -> Sustain -> Off cycle.
type State int

const (
	Off State = iota
	On
	Sustain
)

// Signal indices into a Voice's per-block output layout (spec §4.7.10).
const (
	SigPitch = iota
	SigGate
	SigAmp
	SigVel
	SigAftertouch
	SigMod
	SigMod2
	SigMod3
	SigVoiceIndex
	SigDrift
	NumSignals
)

// maxChangesPerBlock bounds how many discrete events a single voice can
// receive within one process() call — generous for the event rates
// spec §9 describes (well under one MIDI message per sample).
const maxChangesPerBlock = 64

// Voice is one polyphonic voice's control-signal state.
type Voice struct {
	State     State
	CreatorID int
	Channel   int
	Age       int

	StartPitch float64
	StartVel   float64

	Pitch      *changelist.ChangeList
	Gate       *changelist.ChangeList
	Amp        *changelist.ChangeList
	Vel        *changelist.ChangeList
	Aftertouch *changelist.ChangeList
	Mod        *changelist.ChangeList
	Mod2       *changelist.ChangeList
	Mod3       *changelist.ChangeList
	Drift      *changelist.ChangeList
}

// New constructs an idle voice with its nine ChangeLists allocated.
func New() *Voice {
	return &Voice{
		State:      Off,
		CreatorID:  -1,
		Pitch:      changelist.New(maxChangesPerBlock),
		Gate:       changelist.New(maxChangesPerBlock),
		Amp:        changelist.New(maxChangesPerBlock),
		Vel:        changelist.New(maxChangesPerBlock),
		Aftertouch: changelist.New(maxChangesPerBlock),
		Mod:        changelist.New(maxChangesPerBlock),
		Mod2:       changelist.New(maxChangesPerBlock),
		Mod3:       changelist.New(maxChangesPerBlock),
		Drift:      changelist.New(maxChangesPerBlock),
	}
}

// SetSampleRate propagates the sample rate to every owned ChangeList.
func (v *Voice) SetSampleRate(sr float64) {
	for _, c := range v.all() {
		c.SetSampleRate(sr)
	}
}

// SetGlideTime sets the pitch ChangeList's glide time; the other
// signals keep their own independently-configured glide (spec §4.2
// names per-signal glide only for pitch by default, but callers may
// override any ChangeList directly via its accessor).
func (v *Voice) SetGlideTime(seconds float64) {
	v.Pitch.SetGlideTime(seconds)
}

func (v *Voice) all() []*changelist.ChangeList {
	return []*changelist.ChangeList{v.Pitch, v.Gate, v.Amp, v.Vel, v.Aftertouch, v.Mod, v.Mod2, v.Mod3, v.Drift}
}

// BeginBlock clears each ChangeList's pending-change queue ahead of a
// new block of events, retaining in-flight glide state.
func (v *Voice) BeginBlock() {
	for _, c := range v.all() {
		c.ClearChanges()
	}
}

// AdvanceAge adds frames to the voice's age, but only while it is
// sounding (On or Sustain) — an Off voice's age is meaningless to the
// allocator's oldest-steal pass.
func (v *Voice) AdvanceAge(frames int) {
	if v.State != Off {
		v.Age += frames
	}
}

// IsFree reports whether the voice is available for fresh allocation.
func (v *Voice) IsFree() bool { return v.State == Off }

// Trigger starts a new note on this voice (spec §4.7.1's plain,
// non-stolen NoteOn path): sets state On, resets age, latches the
// starting pitch/velocity and pushes gate-up/amp/vel changes.
func (v *Voice) Trigger(creatorID, channel int, note, velocity float64, sc scale.Scale, time int) {
	v.State = On
	v.CreatorID = creatorID
	v.Channel = channel
	v.Age = 0
	v.StartPitch = sc.NoteToLogPitch(note)
	v.StartVel = velocity

	v.Pitch.AddChange(v.StartPitch, time)
	v.Gate.AddChange(1.0, time)
	v.Amp.AddChange(velocityCurve(velocity), time)
	v.Vel.AddChange(velocity, time)
}

// Steal force-retriggers a voice that is already sounding a different
// note. When retrig is true, it pushes a gate-down one sample before
// time (so the envelope sees a gate edge) then the new trigger at time
// itself; time==0 is bumped to 1 so the gate-down sample has somewhere
// to land within the block (spec §4.7.1's documented edge-case hack,
// carried forward unchanged per SPEC_FULL.md §D.3).
func (v *Voice) Steal(creatorID, channel int, note, velocity float64, sc scale.Scale, time int, retrig bool) {
	if retrig {
		t := time
		if t == 0 {
			t = 1
		}
		v.Gate.AddChange(0.0, t-1)
		v.Amp.AddChange(0.0, t-1)
		v.Trigger(creatorID, channel, note, velocity, sc, t)
		return
	}
	v.Trigger(creatorID, channel, note, velocity, sc, time)
}

// Release pushes gate-down/amp-zero changes at time and transitions the
// voice fully Off. Used for a NoteOff with the sustain pedal inactive.
func (v *Voice) Release(time int) {
	v.Gate.AddChange(0.0, time)
	v.Amp.AddChange(0.0, time)
	v.State = Off
	v.CreatorID = -1
}

// Hold transitions an On voice to Sustain without touching its change
// lists — the gate stays exactly where it was (1), since the pedal, not
// the key, is now what's keeping the voice sounding (spec §4.7.2).
func (v *Voice) Hold() {
	v.State = Sustain
}

// SustainRelease transitions a Sustain-held voice to Off once the pedal
// itself is lifted (the note key was already released earlier), pushing
// gate-down/amp-zero at time.
func (v *Voice) SustainRelease(time int) {
	if v.State == Sustain {
		v.Gate.AddChange(0.0, time)
		v.Amp.AddChange(0.0, time)
		v.State = Off
		v.CreatorID = -1
	}
}

// ClearState forcibly silences the voice immediately (CC120 all-sound-off).
func (v *Voice) ClearState() {
	for _, c := range v.all() {
		c.Zero()
	}
	v.State = Off
	v.CreatorID = -1
	v.Age = 0
}

// velocityCurve maps a 0..1 velocity to a 0..1 amplitude with a gentle
// square curve, matching the teacher's envelope-trigger convention of
// velocity-scaled amplitude rather than a linear pass-through.
func velocityCurve(velocity float64) float64 {
	return velocity * velocity
}
