// Package oscadapter decodes OSC touch-control frames into
// event.Event values, the spec's second input family alongside MIDI.
// Grounded on schollz-221e's go-osc usage, the one pack repo combining
// OSC with live MIDI and bubbletea the way this spec does.
//
// Wire layout (this adapter's own convention, since OSC carries no
// fixed note-event schema): a touch is identified by an integer index
// carried as the first argument of every message for that touch.
//
//	/poly/touch/on   int32 index, float32 note, float32 velocity
//	/poly/touch/off  int32 index, float32 velocity
//	/poly/touch/move int32 index, float32 note, float32 x, float32 y, float32 z
//	/poly/cc         int32 channel, int32 controller, float32 value
package oscadapter

import (
	"fmt"

	"github.com/hypebeast/go-osc/osc"

	"github.com/anvilaudio/polyvoice/pkg/event"
)

// Sink is anything that accepts a decoded Event — satisfied by
// *dispatch.Dispatcher's AddEvent.
type Sink interface {
	AddEvent(e event.Event) bool
}

// Adapter owns an OSC server and routes its three touch addresses plus
// a CC passthrough address into a Sink.
type Adapter struct {
	sink   Sink
	server *osc.Server
}

// New builds an Adapter that pushes decoded events to sink.
func New(sink Sink) *Adapter {
	return &Adapter{sink: sink}
}

// ListenAndServe binds addr (e.g. "127.0.0.1:9000") and blocks,
// dispatching incoming OSC packets until the server errors out or is
// closed. Run it in its own goroutine.
func (a *Adapter) ListenAndServe(addr string) error {
	d := osc.NewStandardDispatcher()

	if err := d.AddMsgHandler("/poly/touch/on", a.handleTouchOn); err != nil {
		return fmt.Errorf("oscadapter: register touch/on: %w", err)
	}
	if err := d.AddMsgHandler("/poly/touch/off", a.handleTouchOff); err != nil {
		return fmt.Errorf("oscadapter: register touch/off: %w", err)
	}
	if err := d.AddMsgHandler("/poly/touch/move", a.handleTouchMove); err != nil {
		return fmt.Errorf("oscadapter: register touch/move: %w", err)
	}
	if err := d.AddMsgHandler("/poly/cc", a.handleCC); err != nil {
		return fmt.Errorf("oscadapter: register cc: %w", err)
	}

	a.server = &osc.Server{Addr: addr, Dispatcher: d}
	return a.server.ListenAndServe()
}

func argInt(msg *osc.Message, i int) (int, bool) {
	if i >= len(msg.Arguments) {
		return 0, false
	}
	switch v := msg.Arguments[i].(type) {
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func argFloat(msg *osc.Message, i int) (float64, bool) {
	if i >= len(msg.Arguments) {
		return 0, false
	}
	switch v := msg.Arguments[i].(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func (a *Adapter) handleTouchOn(msg *osc.Message) {
	idx, ok1 := argInt(msg, 0)
	note, ok2 := argFloat(msg, 1)
	vel, ok3 := argFloat(msg, 2)
	if !ok1 || !ok2 || !ok3 {
		return
	}
	a.sink.AddEvent(event.NoteOnEvent(1, idx, 0, note, vel))
}

func (a *Adapter) handleTouchOff(msg *osc.Message) {
	idx, ok1 := argInt(msg, 0)
	vel, ok2 := argFloat(msg, 1)
	if !ok1 {
		return
	}
	if !ok2 {
		vel = 0
	}
	a.sink.AddEvent(event.NoteOffEvent(1, idx, 0, vel))
}

func (a *Adapter) handleTouchMove(msg *osc.Message) {
	idx, ok1 := argInt(msg, 0)
	note, ok2 := argFloat(msg, 1)
	x, ok3 := argFloat(msg, 2)
	y, ok4 := argFloat(msg, 3)
	z, ok5 := argFloat(msg, 4)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return
	}
	a.sink.AddEvent(event.NoteUpdateEvent(1, idx, 0, note, x, y, z))
}

func (a *Adapter) handleCC(msg *osc.Message) {
	ch, ok1 := argInt(msg, 0)
	cc, ok2 := argInt(msg, 1)
	val, ok3 := argFloat(msg, 2)
	if !ok1 || !ok2 || !ok3 {
		return
	}
	a.sink.AddEvent(event.ControllerEvent(ch, 0, float64(cc), val))
}
