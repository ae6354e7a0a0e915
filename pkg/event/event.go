// Package event defines the control-event wire format shared by the MIDI
// and OSC input families and the lock-free queue that hands them from a
// producer thread to the audio thread.
package event

import "fmt"

// Kind tags what an Event carries. Unlike the teacher's per-message-type
// interface hierarchy (pkg/midi.Event), Kind plus a single flat struct
// keeps Event a POD value: no heap escape when it crosses the queue.
type Kind uint8

const (
	// Null is the empty sentinel; Queue.Pop returns it when drained.
	Null Kind = iota
	NoteOn
	NoteOff
	NoteSustain
	NoteUpdate
	Controller
	PitchWheel
	NotePressure
	ChannelPressure
	SustainPedal
	ProgramChange
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "Null"
	case NoteOn:
		return "NoteOn"
	case NoteOff:
		return "NoteOff"
	case NoteSustain:
		return "NoteSustain"
	case NoteUpdate:
		return "NoteUpdate"
	case Controller:
		return "Controller"
	case PitchWheel:
		return "PitchWheel"
	case NotePressure:
		return "NotePressure"
	case ChannelPressure:
		return "ChannelPressure"
	case SustainPedal:
		return "SustainPedal"
	case ProgramChange:
		return "ProgramChange"
	default:
		return "Unknown"
	}
}

// Event is a POD control event. channel is 1..16 for MIDI, 1 for the
// MPE main voice. creatorID pairs a NoteOff with its NoteOn — the MIDI
// note number, or a touch index for OSC. time is a sample offset within
// the current block, 0 <= time < blockSize. value1..value4 are
// kind-specific: for NoteOn, value1 is the note number and value2 the
// normalized velocity in [0,1].
type Event struct {
	Kind      Kind
	Channel   int
	CreatorID int
	Time      int
	Value1    float64
	Value2    float64
	Value3    float64
	Value4    float64
}

// IsNull reports whether e is the absent sentinel.
func (e Event) IsNull() bool { return e.Kind == Null }

func (e Event) String() string {
	return fmt.Sprintf("%s{ch:%d, id:%d, t:%d, v:[%.4f %.4f %.4f %.4f]}",
		e.Kind, e.Channel, e.CreatorID, e.Time, e.Value1, e.Value2, e.Value3, e.Value4)
}

// NoteOnEvent builds a NoteOn Event. note is the MIDI note number (or
// fractional scale degree for microtonal input), velocity is normalized
// [0,1].
func NoteOnEvent(channel, creatorID, time int, note, velocity float64) Event {
	return Event{Kind: NoteOn, Channel: channel, CreatorID: creatorID, Time: time, Value1: note, Value2: velocity}
}

// NoteOffEvent builds a NoteOff Event carrying release velocity.
func NoteOffEvent(channel, creatorID, time int, velocity float64) Event {
	return Event{Kind: NoteOff, Channel: channel, CreatorID: creatorID, Time: time, Value2: velocity}
}

// NoteUpdateEvent builds a continuous-touch update (pitch/x/y/z) for an
// already-sounding creatorID.
func NoteUpdateEvent(channel, creatorID, time int, pitch, x, y, z float64) Event {
	return Event{Kind: NoteUpdate, Channel: channel, CreatorID: creatorID, Time: time, Value1: pitch, Value2: x, Value3: y, Value4: z}
}

// ControllerEvent builds a MIDI CC Event: value1 is the controller
// number, value2 the raw 0..127 value.
func ControllerEvent(channel, time int, controller, value float64) Event {
	return Event{Kind: Controller, Channel: channel, Time: time, Value1: controller, Value2: value}
}

// PitchWheelEvent builds a raw 14-bit pitch-wheel Event (0..16383).
func PitchWheelEvent(channel, time int, raw14bit float64) Event {
	return Event{Kind: PitchWheel, Channel: channel, Time: time, Value1: raw14bit}
}

// NotePressureEvent builds polyphonic aftertouch for creatorID.
func NotePressureEvent(channel, creatorID, time int, value float64) Event {
	return Event{Kind: NotePressure, Channel: channel, CreatorID: creatorID, Time: time, Value1: value}
}

// ChannelPressureEvent builds monophonic channel aftertouch.
func ChannelPressureEvent(channel, time int, value float64) Event {
	return Event{Kind: ChannelPressure, Channel: channel, Time: time, Value1: value}
}

// SustainPedalEvent builds a sustain pedal transition; on reports the
// pedal's new state.
func SustainPedalEvent(channel, time int, on bool) Event {
	v := 0.0
	if on {
		v = 1.0
	}
	return Event{Kind: SustainPedal, Channel: channel, Time: time, Value1: v}
}

// ProgramChangeEvent builds a program-change Event; forwarded to a
// caller listener, never acted on by the core.
func ProgramChangeEvent(channel, time int, program float64) Event {
	return Event{Kind: ProgramChange, Channel: channel, Time: time, Value1: program}
}
