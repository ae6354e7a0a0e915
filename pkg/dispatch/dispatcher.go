// Package dispatch implements the per-block driver that drains the
// event queue, mutates voice/key-table state, and renders every
// voice's control signals into caller-supplied output buffers. It is
// the composition root tying together event, changelist, scale, voice,
// allocator, keytable, config and drift — grounded on the teacher's
// processor Process() entry point shape (examples/simplesynth's
// plugin processing loop: clear-state, drain events, render) adapted
// from "one synth's worth of DSP" to "drive N voices' worth of control
// signals".
package dispatch

import (
	"math"

	"github.com/anvilaudio/polyvoice/pkg/allocator"
	"github.com/anvilaudio/polyvoice/pkg/config"
	"github.com/anvilaudio/polyvoice/pkg/devlog"
	"github.com/anvilaudio/polyvoice/pkg/drift"
	"github.com/anvilaudio/polyvoice/pkg/event"
	"github.com/anvilaudio/polyvoice/pkg/keytable"
	"github.com/anvilaudio/polyvoice/pkg/scale"
	"github.com/anvilaudio/polyvoice/pkg/voice"
)

// mainChannel is MPE's shared-modulation channel.
const mainChannel = 1

// referenceFrequencyHz is the Hz a voice's log2 pitch of 0 resolves to
// absent any master tune offset, matching pkg/scale's A4 reference note.
const referenceFrequencyHz = 440.0

// driftConstantsAmount and driftRandomAmount scale the per-voice
// constant and random components of drift jitter, in log-pitch units;
// small enough to read as "analog-like" detuning rather than audible
// mistuning.
const (
	driftConstantsAmount = 0.0015
	driftRandomAmount    = 0.0008
	driftGlideSeconds    = 0.25
)

// keyTableCapacity is the KeyEventTable's slot count (spec §3's
// "power of two, e.g. 16").
const keyTableCapacity = 16

// Buffers is one voice's nine output signal vectors for a single
// process() call, each of length frames (spec §6's layout).
type Buffers struct {
	Pitch      []float64
	Gate       []float64
	Amp        []float64
	Vel        []float64
	VoiceIndex []float64
	Aftertouch []float64
	Mod        []float64
	Mod2       []float64
	Mod3       []float64
}

// Dispatcher is the per-block driver. It owns the voice array, the
// key-event table, the global change lists and the event queue; the
// Scale and config Registry are shared, read mostly from the audio
// thread (spec §5's ownership rules).
type Dispatcher struct {
	voices  []*voice.Voice
	drifts  []*drift.Generator
	keys    *keytable.Table
	alloc   *allocator.Allocator
	cfg     *config.Registry
	scale   scale.Scale
	globals *Globals
	queue   *event.Queue

	maxPolyphony  int
	sampleRate    float64
	sustainActive bool
	unisonHolder  int // creatorID currently sounding in unison, -1 if none

	onProgramChange func(channel int, program float64)
}

// New builds a Dispatcher with maxPolyphony preallocated voices (the
// compile-time maximum spec §3 names) and a queue of queueCapacity
// events.
func New(maxPolyphony, queueCapacity int, cfg *config.Registry, scl scale.Scale) *Dispatcher {
	d := &Dispatcher{
		voices:       make([]*voice.Voice, maxPolyphony),
		drifts:       make([]*drift.Generator, maxPolyphony),
		keys:         keytable.New(keyTableCapacity),
		alloc:        allocator.New(),
		cfg:          cfg,
		scale:        scl,
		globals:      NewGlobals(),
		queue:        event.NewQueue(queueCapacity),
		maxPolyphony: maxPolyphony,
		unisonHolder: -1,
	}
	for i := range d.voices {
		d.voices[i] = voice.New()
		d.voices[i].Drift.SetGlideTime(driftGlideSeconds)
		d.drifts[i] = drift.New(i, maxPolyphony, 48000)
		d.drifts[i].SetAmounts(driftConstantsAmount, driftRandomAmount)
	}
	return d
}

// SetSampleRate propagates sr to every voice, the drift generators,
// and the global change lists.
func (d *Dispatcher) SetSampleRate(sr float64) {
	d.sampleRate = sr
	for i, v := range d.voices {
		v.SetSampleRate(sr)
		d.drifts[i].SetSampleRate(sr)
	}
	d.globals.SetSampleRate(sr)
}

// SetGlideTime sets the pitch glide time on every voice and the global
// pitch-bend lists, mirroring the `glide` config parameter.
func (d *Dispatcher) SetGlideTime(seconds float64) {
	for _, v := range d.voices {
		v.SetGlideTime(seconds)
	}
	d.globals.SetGlideTime(seconds)
}

// SetProgramChangeListener registers the out-of-scope ProgramChange
// forwarding target (spec §4.7.9).
func (d *Dispatcher) SetProgramChangeListener(fn func(channel int, program float64)) {
	d.onProgramChange = fn
}

// AddEvent enqueues e from the producer thread; returns false if the
// event queue is full (silently dropped per spec §4.4/§7).
func (d *Dispatcher) AddEvent(e event.Event) bool {
	ok := d.queue.Push(e)
	if !ok {
		devlog.Event("queue.drop", "kind", e.Kind, "creator", e.CreatorID)
	}
	return ok
}

func (d *Dispatcher) polyphony() int {
	n := int(d.cfg.Float64(config.Voices))
	if n > d.maxPolyphony {
		n = d.maxPolyphony
	}
	if n < 0 {
		n = 0
	}
	return n
}

func (d *Dispatcher) isMPE() bool {
	return d.cfg.Float64(config.Protocol) != 0
}

func (d *Dispatcher) isUnison() bool {
	return d.cfg.Float64(config.Unison) != 0
}

// Process drains the event queue and renders frames samples into out
// (one Buffers per voice index, length >= maxPolyphony). This is the
// sole entry point the audio thread calls once per block.
func (d *Dispatcher) Process(frames int, out []Buffers) {
	polyphony := d.polyphony()
	d.SetGlideTime(d.cfg.Float64(config.Glide))

	for _, v := range d.voices {
		v.BeginBlock()
	}
	d.globals.BeginBlock()

	for i := 0; i < polyphony; i++ {
		if d.voices[i].State != voice.Off {
			d.drifts[i].Advance(d.voices[i].Drift, frames)
		}
		d.voices[i].AdvanceAge(frames)
	}

	for {
		e := d.queue.Pop()
		if e.IsNull() {
			break
		}
		d.dispatch(e, frames, polyphony)
	}

	d.render(frames, polyphony, out)
}

func (d *Dispatcher) dispatch(e event.Event, frames, polyphony int) {
	t := clampTime(e.Time, frames)
	e.Time = t

	switch e.Kind {
	case event.NoteOn:
		d.handleNoteOn(e, polyphony)
	case event.NoteOff:
		d.handleNoteOff(e, polyphony, false)
	case event.NoteSustain:
		d.handleNoteOff(e, polyphony, true)
	case event.NoteUpdate:
		d.handleNoteUpdate(e, polyphony)
	case event.Controller:
		d.handleController(e, polyphony)
	case event.PitchWheel:
		d.handlePitchWheel(e)
	case event.NotePressure:
		d.handleNotePressure(e, polyphony)
	case event.ChannelPressure:
		d.handleChannelPressure(e, polyphony)
	case event.SustainPedal:
		d.handleSustainPedal(e, polyphony)
	case event.ProgramChange:
		if d.onProgramChange != nil {
			d.onProgramChange(e.Channel, e.Value1)
		}
	}
}

func clampTime(t, frames int) int {
	if t < 0 {
		return 0
	}
	if frames > 0 && t >= frames {
		return frames - 1
	}
	return t
}

func (d *Dispatcher) findVoiceByCreator(id, polyphony int) (*voice.Voice, bool) {
	for i := 0; i < polyphony; i++ {
		if d.voices[i].CreatorID == id && d.voices[i].State != voice.Off {
			return d.voices[i], true
		}
	}
	return nil, false
}

// findVoiceByChannel returns the sounding voice currently assigned to
// channel — used for MPE per-note-channel messages (Controller,
// ChannelPressure) that carry no creatorID of their own.
func (d *Dispatcher) findVoiceByChannel(channel, polyphony int) (*voice.Voice, bool) {
	for i := 0; i < polyphony; i++ {
		if d.voices[i].Channel == channel && d.voices[i].State != voice.Off {
			return d.voices[i], true
		}
	}
	return nil, false
}

// --- 4.7.1 NoteOn ---

func (d *Dispatcher) handleNoteOn(e event.Event, polyphony int) {
	if polyphony <= 0 {
		return
	}
	if d.isUnison() {
		d.noteOnUnison(e, polyphony)
		return
	}
	d.noteOnPoly(e, polyphony)
}

func (d *Dispatcher) noteOnUnison(e event.Event, polyphony int) {
	if d.unisonHolder != -1 {
		if idx, ok := d.keys.FindByCreatorID(d.unisonHolder); ok {
			d.keys.SetVoiceState(idx, keytable.Pending)
		}
	}
	idx, ok := d.keys.Add(e.CreatorID, e.Value1, e.Value2, e.Time)
	if !ok {
		return
	}
	d.keys.SetVoiceState(idx, keytable.Unison)
	for i := 0; i < polyphony; i++ {
		d.triggerOrSteal(d.voices[i], e)
	}
	d.unisonHolder = e.CreatorID
}

func (d *Dispatcher) noteOnPoly(e event.Event, polyphony int) {
	idx, ok := d.keys.Add(e.CreatorID, e.Value1, e.Value2, e.Time)
	if !ok {
		devlog.Event("keytable.full", "creator", e.CreatorID)
		return
	}
	voiceIdx := d.alloc.Allocate(polyphony,
		func(i int) bool { return d.voices[i].IsFree() },
		func(i int) int { return d.voices[i].Age },
		func(i int) bool { return d.keys.HasLiveKey(i) },
	)
	if voiceIdx < 0 {
		d.keys.Free(idx)
		return
	}
	if !d.voices[voiceIdx].IsFree() {
		devlog.Event("voice.steal", "voice", voiceIdx, "from", d.voices[voiceIdx].CreatorID, "to", e.CreatorID)
	}
	d.triggerOrSteal(d.voices[voiceIdx], e)
	d.keys.SetVoiceState(idx, keytable.State(voiceIdx))
}

func (d *Dispatcher) triggerOrSteal(v *voice.Voice, e event.Event) {
	if v.State != voice.Off {
		v.Steal(e.CreatorID, e.Channel, e.Value1, e.Value2, d.scale, e.Time, true)
		return
	}
	v.Trigger(e.CreatorID, e.Channel, e.Value1, e.Value2, d.scale, e.Time)
}

// --- 4.7.2 NoteOff / NoteSustain ---

func (d *Dispatcher) handleNoteOff(e event.Event, polyphony int, forceHold bool) {
	sustaining := forceHold || d.sustainActive
	if d.isUnison() {
		d.noteOffUnison(e, polyphony, sustaining)
		return
	}
	d.noteOffPoly(e, polyphony, sustaining)
}

func (d *Dispatcher) noteOffPoly(e event.Event, polyphony int, sustaining bool) {
	idx, found := d.keys.FindByCreatorID(e.CreatorID)
	if sustaining {
		if v, ok := d.findVoiceByCreator(e.CreatorID, polyphony); ok && v.State == voice.On {
			v.Hold()
		}
		if found {
			d.keys.Free(idx)
		}
		return
	}
	if v, ok := d.findVoiceByCreator(e.CreatorID, polyphony); ok {
		v.Release(e.Time)
	}
	if found {
		d.keys.Free(idx)
	}
}

func (d *Dispatcher) noteOffUnison(e event.Event, polyphony int, sustaining bool) {
	idx, found := d.keys.FindByCreatorID(e.CreatorID)
	wasSounding := found && d.unisonHolder == e.CreatorID

	if sustaining {
		if wasSounding {
			for i := 0; i < polyphony; i++ {
				d.voices[i].Hold()
			}
		}
		if found {
			d.keys.Free(idx)
		}
		return
	}

	if found {
		d.keys.Free(idx)
	}
	if !wasSounding {
		return
	}

	if pendingIdx, ok := d.keys.MostRecentPending(); ok {
		slot, _ := d.keys.Slot(pendingIdx)
		d.keys.SetVoiceState(pendingIdx, keytable.Unison)
		d.unisonHolder = slot.CreatorID
		reactivate := event.Event{CreatorID: slot.CreatorID, Channel: e.Channel, Value1: slot.Note, Value2: slot.Velocity, Time: e.Time}
		for i := 0; i < polyphony; i++ {
			d.triggerOrSteal(d.voices[i], reactivate)
		}
		return
	}

	d.unisonHolder = -1
	for i := 0; i < polyphony; i++ {
		d.voices[i].Release(e.Time)
	}
}

// --- 4.7.3 NoteUpdate ---

// handleNoteUpdate folds continuous-touch updates onto the same
// ChangeLists MIDI note events use (Value1=pitch-note, Value2=amp,
// Value3/Value4 map to the mod/mod2 axes), per SPEC_FULL.md's decision
// to unify rather than split the OSC and MIDI paths.
func (d *Dispatcher) handleNoteUpdate(e event.Event, polyphony int) {
	v, ok := d.findVoiceByCreator(e.CreatorID, polyphony)
	if !ok {
		return
	}
	v.Pitch.AddChange(d.scale.NoteToLogPitch(e.Value1), e.Time)
	v.Amp.AddChange(e.Value2, e.Time)
	v.Mod.AddChange(e.Value3, e.Time)
	v.Mod2.AddChange(e.Value4, e.Time)
}

// --- 4.7.4 Controller ---

func (d *Dispatcher) handleController(e event.Event, polyphony int) {
	ccNum := int(e.Value1)
	switch ccNum {
	case 120:
		d.reset(polyphony)
		return
	case 123:
		for i := 0; i < polyphony; i++ {
			if d.voices[i].State == voice.On || d.voices[i].State == voice.Sustain {
				d.voices[i].Gate.AddChange(0.0, e.Time)
				d.voices[i].Amp.AddChange(0.0, e.Time)
				d.voices[i].State = voice.Off
				d.voices[i].CreatorID = -1
			}
		}
		return
	}

	scaled := e.Value2 / 127.0
	mpe := d.isMPE()
	perNote := mpe && e.Channel != mainChannel

	modBase := int(d.cfg.Float64(config.Mod))
	if perNote {
		modBase = int(d.cfg.Float64(config.ModMPEX))
	}

	var target *changelistWriter
	switch ccNum {
	case modBase:
		target = d.modTarget(e, polyphony, 0, perNote)
	case modBase + 1:
		target = d.modTarget(e, polyphony, 1, perNote)
	case modBase + 2:
		target = d.modTarget(e, polyphony, 2, perNote)
	default:
		return
	}
	if target != nil {
		target.cl.AddChange(scaled, e.Time)
	}
}

func (d *Dispatcher) reset(polyphony int) {
	for _, v := range d.voices {
		v.ClearState()
	}
	d.keys.Reset()
	d.sustainActive = false
	d.unisonHolder = -1
	d.alloc = allocator.New()
	d.globals.Zero()
}

// --- 4.7.5 PitchWheel ---

func (d *Dispatcher) handlePitchWheel(e event.Event) {
	raw := e.Value1
	zero := raw - 8192
	var norm float64
	if zero >= 0 {
		norm = zero / 8191.0
	} else {
		norm = zero / 8192.0
	}

	if d.isMPE() && e.Channel != mainChannel {
		bendRange := d.cfg.Float64(config.BendMPE)
		semis := norm * bendRange
		if cl := d.globals.ChannelBend(e.Channel); cl != nil {
			cl.AddChange(semis/12.0, e.Time)
		}
		return
	}
	bendRange := d.cfg.Float64(config.Bend)
	semis := norm * bendRange
	d.globals.PitchBend.AddChange(semis/12.0, e.Time)
}

// --- 4.7.6 NotePressure ---

func (d *Dispatcher) handleNotePressure(e event.Event, polyphony int) {
	v, ok := d.findVoiceByCreator(e.CreatorID, polyphony)
	if !ok {
		return
	}
	v.Aftertouch.AddChange(e.Value1/127.0, e.Time)
}

// --- 4.7.7 ChannelPressure ---

func (d *Dispatcher) handleChannelPressure(e event.Event, polyphony int) {
	val := e.Value1 / 127.0
	if d.isMPE() && e.Channel != mainChannel {
		if v, ok := d.findVoiceByChannel(e.Channel, polyphony); ok {
			v.Aftertouch.AddChange(val, e.Time)
		}
		return
	}
	d.globals.ChannelPressure.AddChange(val, e.Time)
}

// --- 4.7.8 SustainPedal ---

func (d *Dispatcher) handleSustainPedal(e event.Event, polyphony int) {
	active := e.Value1 >= 0.5
	if active == d.sustainActive {
		return
	}
	if active {
		d.sustainActive = true
		return
	}
	d.sustainActive = false
	for i := 0; i < polyphony; i++ {
		d.voices[i].SustainRelease(e.Time)
	}
}

// changelistWriter is a tiny indirection so modTarget can return either
// a global or per-voice ChangeList through one type.
type changelistWriter struct {
	cl interface {
		AddChange(value float64, time int)
	}
}

// modTarget resolves which ChangeList a mod CC targets: the shared
// global stream (MIDI mode, or MPE's main channel), or the owning
// voice's own per-note stream (MPE non-main channel, perNote true).
func (d *Dispatcher) modTarget(e event.Event, polyphony, axis int, perNote bool) *changelistWriter {
	if !perNote {
		switch axis {
		case 0:
			return &changelistWriter{d.globals.Mod}
		case 1:
			return &changelistWriter{d.globals.Mod2}
		default:
			return &changelistWriter{d.globals.Mod3}
		}
	}
	v, ok := d.findVoiceByChannel(e.Channel, polyphony)
	if !ok {
		return nil
	}
	switch axis {
	case 0:
		return &changelistWriter{v.Mod}
	case 1:
		return &changelistWriter{v.Mod2}
	default:
		return &changelistWriter{v.Mod3}
	}
}

// --- 4.7.10 Output rendering ---

func (d *Dispatcher) render(frames, polyphony int, out []Buffers) {
	pitchBend := make([]float64, frames)
	d.globals.PitchBend.WriteToSignal(pitchBend, 0, frames)
	chanPressure := make([]float64, frames)
	d.globals.ChannelPressure.WriteToSignal(chanPressure, 0, frames)
	gMod := make([]float64, frames)
	d.globals.Mod.WriteToSignal(gMod, 0, frames)
	gMod2 := make([]float64, frames)
	d.globals.Mod2.WriteToSignal(gMod2, 0, frames)
	gMod3 := make([]float64, frames)
	d.globals.Mod3.WriteToSignal(gMod3, 0, frames)

	// master_tune is a reference frequency in Hz (spec §6); convert it to
	// the log2 pitch offset that shifts referenceFrequencyHz onto it.
	masterTune := math.Log2(d.cfg.Float64(config.MasterTune) / referenceFrequencyHz)
	mpe := d.isMPE()

	for i := 0; i < len(out); i++ {
		buf := out[i]
		if i >= polyphony {
			zero(buf.Pitch)
			zero(buf.Gate)
			zero(buf.Amp)
			zero(buf.Vel)
			zero(buf.VoiceIndex)
			zero(buf.Aftertouch)
			zero(buf.Mod)
			zero(buf.Mod2)
			zero(buf.Mod3)
			continue
		}

		v := d.voices[i]
		v.Pitch.WriteToSignal(buf.Pitch, 0, frames)
		v.Gate.WriteToSignal(buf.Gate, 0, frames)
		v.Amp.WriteToSignal(buf.Amp, 0, frames)
		v.Vel.WriteToSignal(buf.Vel, 0, frames)
		v.Aftertouch.WriteToSignal(buf.Aftertouch, 0, frames)
		v.Mod.WriteToSignal(buf.Mod, 0, frames)
		v.Mod2.WriteToSignal(buf.Mod2, 0, frames)
		v.Mod3.WriteToSignal(buf.Mod3, 0, frames)

		drift := make([]float64, frames)
		v.Drift.WriteToSignal(drift, 0, frames)

		voiceBend := pitchBend
		if mpe && v.Channel != mainChannel {
			if cl := d.globals.ChannelBend(v.Channel); cl != nil {
				scratch := make([]float64, frames)
				cl.WriteToSignal(scratch, 0, frames)
				voiceBend = scratch
			}
		}

		for s := 0; s < frames; s++ {
			buf.Pitch[s] += voiceBend[s] + drift[s] + masterTune
			buf.Aftertouch[s] += chanPressure[s]
			if mpe {
				buf.Mod[s] += gMod[s]
				buf.Mod2[s] += gMod2[s]
				buf.Mod3[s] += gMod3[s]
			}
			buf.VoiceIndex[s] = float64(i)
		}
	}
}

func zero(b []float64) {
	for i := range b {
		b[i] = 0
	}
}
