package dispatch

import (
	"testing"

	"github.com/anvilaudio/polyvoice/pkg/config"
	"github.com/anvilaudio/polyvoice/pkg/event"
	"github.com/anvilaudio/polyvoice/pkg/scale"
)

const testFrames = 32

func newTestDispatcher(maxPolyphony int) (*Dispatcher, *config.Registry) {
	cfg := config.NewDefault()
	cfg.Set(config.Voices, float64(maxPolyphony))
	cfg.Set(config.Glide, 0)
	d := New(maxPolyphony, 64, cfg, scale.NewEqualTemperament())
	d.SetSampleRate(48000)
	return d, cfg
}

func newOutBuffers(n, frames int) []Buffers {
	out := make([]Buffers, n)
	for i := range out {
		out[i] = Buffers{
			Pitch:      make([]float64, frames),
			Gate:       make([]float64, frames),
			Amp:        make([]float64, frames),
			Vel:        make([]float64, frames),
			VoiceIndex: make([]float64, frames),
			Aftertouch: make([]float64, frames),
			Mod:        make([]float64, frames),
			Mod2:       make([]float64, frames),
			Mod3:       make([]float64, frames),
		}
	}
	return out
}

func TestBasicMonoNoteTriggersOneVoice(t *testing.T) {
	d, _ := newTestDispatcher(4)
	out := newOutBuffers(4, testFrames)

	d.AddEvent(event.NoteOnEvent(1, 60, 0, 60, 1.0))
	d.Process(testFrames, out)

	if out[0].Gate[0] != 1.0 {
		t.Fatalf("expected voice 0 gate high at sample 0, got %f", out[0].Gate[0])
	}
	for i := 1; i < 4; i++ {
		if out[i].Gate[0] != 0 {
			t.Fatalf("expected voice %d to stay silent, got gate %f", i, out[i].Gate[0])
		}
	}
}

func TestRetrigOnStealDropsGateBriefly(t *testing.T) {
	d, _ := newTestDispatcher(1)
	out := newOutBuffers(1, testFrames)

	d.AddEvent(event.NoteOnEvent(1, 60, 0, 60, 1.0))
	d.Process(testFrames, out)
	if out[0].Gate[0] != 1.0 {
		t.Fatalf("expected gate high after first note-on, got %f", out[0].Gate[0])
	}

	out2 := newOutBuffers(1, testFrames)
	d.AddEvent(event.NoteOnEvent(1, 64, 4, 64, 0.8))
	d.Process(testFrames, out2)

	if out2[0].Gate[3] != 0.0 {
		t.Fatalf("expected gate to drop one sample before the steal, got %f", out2[0].Gate[3])
	}
	if out2[0].Gate[4] != 1.0 {
		t.Fatalf("expected gate to rise again at the steal time, got %f", out2[0].Gate[4])
	}
}

func TestSustainPedalHoldsVoiceAfterNoteOff(t *testing.T) {
	d, _ := newTestDispatcher(2)
	out := newOutBuffers(2, testFrames)

	d.AddEvent(event.SustainPedalEvent(1, 0, true))
	d.AddEvent(event.NoteOnEvent(1, 60, 1, 60, 1.0))
	d.Process(testFrames, out)

	out2 := newOutBuffers(2, testFrames)
	d.AddEvent(event.NoteOffEvent(1, 60, 0, 0.0))
	d.Process(testFrames, out2)

	if out2[0].Gate[testFrames-1] != 1.0 {
		t.Fatalf("expected voice to keep sounding while sustain pedal held, got %f", out2[0].Gate[testFrames-1])
	}

	out3 := newOutBuffers(2, testFrames)
	d.AddEvent(event.SustainPedalEvent(1, 0, false))
	d.Process(testFrames, out3)

	if out3[0].Gate[testFrames-1] != 0.0 {
		t.Fatalf("expected voice released once pedal lifted, got %f", out3[0].Gate[testFrames-1])
	}
}

func TestPitchBendRaisesPitchAboveNoteBase(t *testing.T) {
	d, cfg := newTestDispatcher(1)
	cfg.Set(config.Glide, 0)
	out := newOutBuffers(1, testFrames)

	d.AddEvent(event.NoteOnEvent(1, 60, 0, 60, 1.0))
	d.AddEvent(event.PitchWheelEvent(1, 0, 16383))
	d.Process(testFrames, out)

	startPitch := (60.0 - 69.0) / 12.0
	last := out[0].Pitch[testFrames-1]
	if last <= startPitch {
		t.Fatalf("expected pitch bend to move pitch above the note's base pitch, got %f (base %f)", last, startPitch)
	}
}

func TestUnisonModeTriggersEveryVoice(t *testing.T) {
	d, cfg := newTestDispatcher(4)
	cfg.Set(config.Unison, 1)
	out := newOutBuffers(4, testFrames)

	d.AddEvent(event.NoteOnEvent(1, 60, 0, 60, 1.0))
	d.Process(testFrames, out)

	for i := 0; i < 4; i++ {
		if out[i].Gate[0] != 1.0 {
			t.Fatalf("expected voice %d to sound in unison mode, got gate %f", i, out[i].Gate[0])
		}
	}
}

func TestUnisonReleaseUncoversPendingNote(t *testing.T) {
	d, cfg := newTestDispatcher(2)
	cfg.Set(config.Unison, 1)

	out := newOutBuffers(2, testFrames)
	d.AddEvent(event.NoteOnEvent(1, 60, 0, 60, 1.0))
	d.Process(testFrames, out)

	out2 := newOutBuffers(2, testFrames)
	d.AddEvent(event.NoteOnEvent(1, 64, 0, 64, 0.9))
	d.Process(testFrames, out2)

	out3 := newOutBuffers(2, testFrames)
	d.AddEvent(event.NoteOffEvent(1, 64, 0, 0))
	d.Process(testFrames, out3)

	if out3[0].Gate[testFrames-1] != 1.0 {
		t.Fatalf("expected the previously-held note to resound after the top note released, got %f", out3[0].Gate[testFrames-1])
	}
}

func TestQueueOverflowDropsExcessEvents(t *testing.T) {
	d, _ := newTestDispatcher(2)

	accepted := 0
	for i := 0; i < 200; i++ {
		if d.AddEvent(event.NoteOnEvent(1, i, 0, float64(60+i%10), 1.0)) {
			accepted++
		}
	}

	if accepted >= 200 {
		t.Fatalf("expected some events to be dropped on overflow, all %d accepted", accepted)
	}
	if d.queue.Dropped() == 0 {
		t.Fatal("expected Dropped() to record at least one dropped event")
	}
}

func TestAllNotesOffControllerSilencesEveryVoice(t *testing.T) {
	d, _ := newTestDispatcher(2)
	out := newOutBuffers(2, testFrames)

	d.AddEvent(event.NoteOnEvent(1, 60, 0, 60, 1.0))
	d.AddEvent(event.NoteOnEvent(1, 61, 0, 64, 1.0))
	d.Process(testFrames, out)

	out2 := newOutBuffers(2, testFrames)
	d.AddEvent(event.ControllerEvent(1, 0, 123, 0))
	d.Process(testFrames, out2)

	for i := 0; i < 2; i++ {
		if out2[i].Gate[testFrames-1] != 0.0 {
			t.Fatalf("expected voice %d silenced by all-notes-off, got %f", i, out2[i].Gate[testFrames-1])
		}
	}
}
