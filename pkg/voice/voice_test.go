package voice

import (
	"testing"

	"github.com/anvilaudio/polyvoice/pkg/scale"
)

func TestNewVoiceStartsOff(t *testing.T) {
	v := New()
	if v.State != Off {
		t.Fatalf("expected new voice to be Off, got %v", v.State)
	}
	if !v.IsFree() {
		t.Fatal("expected new voice to be free")
	}
}

func TestTriggerSetsOnAndPushesSignals(t *testing.T) {
	v := New()
	v.SetSampleRate(48000)
	sc := scale.NewEqualTemperament()

	v.Trigger(1, 1, 60, 0.5, sc, 0)
	if v.State != On {
		t.Fatalf("expected On after trigger, got %v", v.State)
	}
	if v.CreatorID != 1 {
		t.Fatalf("expected creator ID 1, got %d", v.CreatorID)
	}
	if v.Age != 0 {
		t.Fatalf("expected age reset to 0, got %d", v.Age)
	}

	out := make([]float64, 4)
	v.Gate.WriteToSignal(out, 0, 4)
	if out[0] != 1.0 {
		t.Fatalf("expected gate to go high at sample 0, got %f", out[0])
	}
}

func TestReleaseWithoutSustainGoesOff(t *testing.T) {
	v := New()
	v.SetSampleRate(48000)
	sc := scale.NewEqualTemperament()
	v.Trigger(1, 1, 60, 1.0, sc, 0)
	v.BeginBlock()
	v.Release(0)
	if v.State != Off {
		t.Fatalf("expected Off after release without sustain, got %v", v.State)
	}
	if v.CreatorID != -1 {
		t.Fatalf("expected creator ID reset, got %d", v.CreatorID)
	}
}

func TestHoldKeepsGateHighAndSetsSustain(t *testing.T) {
	v := New()
	v.SetSampleRate(48000)
	v.SetGlideTime(0)
	sc := scale.NewEqualTemperament()
	v.Trigger(1, 1, 60, 1.0, sc, 0)
	v.Gate.WriteToSignal(make([]float64, 4), 0, 4) // render the trigger's block
	v.BeginBlock()
	v.Hold()
	if v.State != Sustain {
		t.Fatalf("expected Sustain after Hold, got %v", v.State)
	}
	out := make([]float64, 4)
	v.Gate.WriteToSignal(out, 0, 4)
	for i, g := range out {
		if g != 1.0 {
			t.Fatalf("sample %d: expected gate to remain high through Hold, got %f", i, g)
		}
	}
}

func TestSustainReleaseGoesOff(t *testing.T) {
	v := New()
	v.SetSampleRate(48000)
	sc := scale.NewEqualTemperament()
	v.Trigger(1, 1, 60, 1.0, sc, 0)
	v.BeginBlock()
	v.Hold()
	v.BeginBlock()
	v.SustainRelease(0)
	if v.State != Off {
		t.Fatalf("expected Off after SustainRelease, got %v", v.State)
	}
}

func TestStealWithRetrigBumpsZeroTime(t *testing.T) {
	v := New()
	v.SetSampleRate(48000)
	v.SetGlideTime(0)
	sc := scale.NewEqualTemperament()
	v.Trigger(1, 1, 60, 1.0, sc, 0)
	v.BeginBlock()

	v.Steal(2, 1, 64, 0.8, sc, 0, true)
	if v.CreatorID != 2 {
		t.Fatalf("expected new creator ID 2 after steal, got %d", v.CreatorID)
	}

	out := make([]float64, 4)
	v.Gate.WriteToSignal(out, 0, 4)
	// gate should drop at sample 0 (bumped time-1 = 0) then rise again at sample 1
	if out[0] != 0.0 {
		t.Fatalf("expected gate-down at sample 0, got %f", out[0])
	}
	if out[1] != 1.0 {
		t.Fatalf("expected gate-up at sample 1, got %f", out[1])
	}
}

func TestStealWithoutRetrigJustRetunes(t *testing.T) {
	v := New()
	v.SetSampleRate(48000)
	v.SetGlideTime(0)
	sc := scale.NewEqualTemperament()
	v.Trigger(1, 1, 60, 1.0, sc, 0)
	v.BeginBlock()

	v.Steal(2, 1, 64, 0.8, sc, 0, false)
	out := make([]float64, 1)
	v.Gate.WriteToSignal(out, 0, 1)
	if out[0] != 1.0 {
		t.Fatalf("expected gate to remain high across legato steal, got %f", out[0])
	}
}

func TestClearStateSilencesImmediately(t *testing.T) {
	v := New()
	v.SetSampleRate(48000)
	sc := scale.NewEqualTemperament()
	v.Trigger(1, 1, 60, 1.0, sc, 0)
	v.ClearState()
	if v.State != Off {
		t.Fatalf("expected Off after ClearState, got %v", v.State)
	}
	if v.Gate.CurrentValue() != 0 {
		t.Fatalf("expected gate zeroed, got %f", v.Gate.CurrentValue())
	}
	if v.Amp.CurrentValue() != 0 {
		t.Fatalf("expected amp zeroed, got %f", v.Amp.CurrentValue())
	}
}

func TestAdvanceAgeOnlyWhileSounding(t *testing.T) {
	v := New()
	v.AdvanceAge(64)
	if v.Age != 0 {
		t.Fatalf("expected age to stay 0 while Off, got %d", v.Age)
	}

	sc := scale.NewEqualTemperament()
	v.Trigger(1, 1, 60, 1.0, sc, 0)
	v.AdvanceAge(64)
	v.AdvanceAge(64)
	if v.Age != 128 {
		t.Fatalf("expected age 128, got %d", v.Age)
	}
}

func TestVelocityCurveIsSquared(t *testing.T) {
	if got := velocityCurve(0.5); got != 0.25 {
		t.Fatalf("expected squared velocity 0.25, got %f", got)
	}
}
