package main

import (
	"testing"

	"github.com/anvilaudio/polyvoice/pkg/dispatch"
)

func TestDemoVoiceRendersSilenceWithoutGate(t *testing.T) {
	v := newDemoVoice(48000)
	buf := dispatch.Buffers{
		Pitch: make([]float64, 8), Gate: make([]float64, 8),
		Amp: make([]float64, 8), Vel: make([]float64, 8),
	}
	for i := range buf.Amp {
		buf.Amp[i] = 1
		buf.Vel[i] = 1
	}
	mix := make([]float64, 8)

	v.render(buf, 8, mix)

	for i, s := range mix {
		if s != 0 {
			t.Fatalf("expected silence with gate low, got mix[%d]=%f", i, s)
		}
	}
}

func TestDemoVoiceTriggersEnvelopeOnGateRise(t *testing.T) {
	v := newDemoVoice(48000)
	buf := dispatch.Buffers{
		Pitch: make([]float64, 8), Gate: make([]float64, 8),
		Amp: make([]float64, 8), Vel: make([]float64, 8),
	}
	for i := range buf.Gate {
		buf.Gate[i] = 1
		buf.Amp[i] = 1
		buf.Vel[i] = 1
	}
	mix := make([]float64, 8)

	v.render(buf, 8, mix)

	nonZero := false
	for _, s := range mix {
		if s != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Fatal("expected some nonzero samples once the envelope is triggered")
	}
	if !v.env.IsActive() {
		t.Fatal("expected envelope to be active once gated on")
	}
}
