package dispatch

import "github.com/anvilaudio/polyvoice/pkg/changelist"

// maxGlobalChangesPerBlock bounds the shared, non-voice-owned change
// lists the same way voice.Voice bounds its own (see pkg/voice).
const maxGlobalChangesPerBlock = 64

// channelCount is 1-indexed MIDI channels 1..16, so the backing array
// needs one extra slot at index 0 (unused).
const channelCount = 17

// Globals holds the change lists that are shared across every voice
// rather than owned by one: MIDI-wide pitch bend and channel pressure,
// the three global modulation streams, and their per-channel MPE
// counterparts. Grounded on spec §3's GlobalChangeLists component and
// shaped like voice.Voice's own all()/BeginBlock() pattern.
type Globals struct {
	PitchBend       *changelist.ChangeList
	ChannelPressure *changelist.ChangeList
	Mod             *changelist.ChangeList
	Mod2            *changelist.ChangeList
	Mod3            *changelist.ChangeList

	channelBend [channelCount]*changelist.ChangeList
}

// NewGlobals allocates every global change list, including one
// per-channel pitch-bend list for MPE mode.
func NewGlobals() *Globals {
	g := &Globals{
		PitchBend:       changelist.New(maxGlobalChangesPerBlock),
		ChannelPressure: changelist.New(maxGlobalChangesPerBlock),
		Mod:             changelist.New(maxGlobalChangesPerBlock),
		Mod2:            changelist.New(maxGlobalChangesPerBlock),
		Mod3:            changelist.New(maxGlobalChangesPerBlock),
	}
	for i := 1; i < channelCount; i++ {
		g.channelBend[i] = changelist.New(maxGlobalChangesPerBlock)
	}
	return g
}

func (g *Globals) all() []*changelist.ChangeList {
	lists := []*changelist.ChangeList{g.PitchBend, g.ChannelPressure, g.Mod, g.Mod2, g.Mod3}
	for i := 1; i < channelCount; i++ {
		lists = append(lists, g.channelBend[i])
	}
	return lists
}

// SetSampleRate propagates the sample rate to every global change list.
func (g *Globals) SetSampleRate(sr float64) {
	for _, c := range g.all() {
		c.SetSampleRate(sr)
	}
}

// SetGlideTime sets the pitch-bend glide time (MIDI-wide and every MPE
// per-channel list); the mod/pressure streams keep their own default.
func (g *Globals) SetGlideTime(seconds float64) {
	g.PitchBend.SetGlideTime(seconds)
	for i := 1; i < channelCount; i++ {
		g.channelBend[i].SetGlideTime(seconds)
	}
}

// BeginBlock clears every global change list's pending-change queue.
func (g *Globals) BeginBlock() {
	for _, c := range g.all() {
		c.ClearChanges()
	}
}

// Zero forces every global change list to zero, including in-flight
// glide — used by the CC120 full reset.
func (g *Globals) Zero() {
	for _, c := range g.all() {
		c.Zero()
	}
}

// ChannelBend returns the per-channel MPE pitch-bend list for channel
// (1..16), or nil if out of range.
func (g *Globals) ChannelBend(channel int) *changelist.ChangeList {
	if channel < 1 || channel >= channelCount {
		return nil
	}
	return g.channelBend[channel]
}
