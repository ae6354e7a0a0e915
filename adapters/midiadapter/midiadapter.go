// Package midiadapter decodes a live gitlab.com/gomidi/midi/v2 input
// port into event.Event values and pushes them onto a dispatcher's
// event queue. It is the "external collaborator" spec §1 names for
// wire-protocol decoding — the core package never imports it.
//
// Grounded on the pack's repeated gomidi/midi/v2 live-decode idiom
// (schollz-221e, macintoshpie-midivis, james-see-synthtribe2midi,
// icco-genidi): a single midi.Message callback dispatched by
// *message.Bytes() byte, with channel messages unpacked via the
// library's typed Get* accessors.
package midiadapter

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/anvilaudio/polyvoice/pkg/event"
)

// Sink is anything that accepts a decoded Event — satisfied by
// *dispatch.Dispatcher's AddEvent.
type Sink interface {
	AddEvent(e event.Event) bool
}

// Adapter owns a live MIDI in-port listener. It keeps no sample clock:
// since MIDI messages arrive asynchronously rather than pre-quantized to
// a block, every decoded Event is stamped at time 0 — it is up to the
// caller's block size and polling cadence how much jitter that
// implies; spec §4.7 treats event time as advisory ordering only
// within FIFO, not a hard per-sample contract for live input.
type Adapter struct {
	sink    Sink
	channel int // not read by the adapter; decoded events keep their wire channel
	stop    func()
}

// New builds an Adapter that pushes decoded events to sink.
func New(sink Sink) *Adapter {
	return &Adapter{sink: sink}
}

// Listen opens in and begins decoding messages into sink until Close
// is called or in is closed by its driver.
func (a *Adapter) Listen(in drivers.In) error {
	stop, err := midi.ListenTo(in, a.handle)
	if err != nil {
		return fmt.Errorf("midiadapter: listen: %w", err)
	}
	a.stop = stop
	return nil
}

// Close stops the live listener, if one is running.
func (a *Adapter) Close() {
	if a.stop != nil {
		a.stop()
		a.stop = nil
	}
}

func (a *Adapter) handle(msg midi.Message, _ int32) {
	e, ok := Decode(msg)
	if !ok {
		return
	}
	a.sink.AddEvent(e)
}

// Decode translates a single gomidi Message into an event.Event. The
// returned Event always has Time 0; callers driving a real block clock
// should overwrite Time before enqueueing if they have a better
// estimate of where in the current block the message landed.
func Decode(msg midi.Message) (event.Event, bool) {
	var ch, key, vel, cc, val, pressure uint8
	var abs int16

	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		if vel == 0 {
			return event.NoteOffEvent(int(ch)+1, int(key), 0, 0), true
		}
		return event.NoteOnEvent(int(ch)+1, int(key), 0, float64(key), float64(vel)/127.0), true

	case msg.GetNoteOff(&ch, &key, &vel):
		return event.NoteOffEvent(int(ch)+1, int(key), 0, float64(vel)/127.0), true

	case msg.GetControlChange(&ch, &cc, &val):
		if cc == 64 {
			return event.SustainPedalEvent(int(ch)+1, 0, val >= 64), true
		}
		return event.ControllerEvent(int(ch)+1, 0, float64(cc), float64(val)), true

	case msg.GetPitchBend(&ch, nil, &abs):
		return event.PitchWheelEvent(int(ch)+1, 0, float64(abs)+8192), true

	case msg.GetAfterTouch(&ch, &pressure):
		return event.ChannelPressureEvent(int(ch)+1, 0, float64(pressure)/127.0), true

	case msg.GetPolyAfterTouch(&ch, &key, &pressure):
		return event.NotePressureEvent(int(ch)+1, int(key), 0, float64(pressure)/127.0), true

	case msg.GetProgramChange(&ch, &val):
		return event.ProgramChangeEvent(int(ch)+1, 0, float64(val)), true
	}

	return event.Event{}, false
}
