package drift

import (
	"testing"

	"github.com/anvilaudio/polyvoice/pkg/changelist"
)

func TestPerVoiceConstantSpreadsAcrossPolyphony(t *testing.T) {
	if got := perVoiceConstant(0, 4); got != -1.0 {
		t.Fatalf("expected first voice constant -1.0, got %f", got)
	}
	if got := perVoiceConstant(3, 4); got != 1.0 {
		t.Fatalf("expected last voice constant 1.0, got %f", got)
	}
}

func TestPerVoiceConstantSingleVoiceIsZero(t *testing.T) {
	if got := perVoiceConstant(0, 1); got != 0 {
		t.Fatalf("expected single-voice constant 0, got %f", got)
	}
}

func TestAdvancePushesChangeAtInterval(t *testing.T) {
	g := New(0, 4, 100) // intervalSamples = 1000
	g.intervalSamples = 5
	g.SetAmounts(1.0, 0.0) // deterministic: only the constant component

	cl := changelist.New(16)
	cl.SetSampleRate(100)
	cl.SetGlideTime(0)

	out := make([]float64, 10)
	g.Advance(cl, 10)
	cl.WriteToSignal(out, 0, 10)

	// the 5-sample interval elapses twice in this 10-sample block (at
	// offsets 4 and 9), so the value should have moved away from zero.
	if out[9] == 0 {
		t.Fatal("expected drift to have pushed a nonzero target within the block")
	}
}

func TestTwoGeneratorsDecorrelated(t *testing.T) {
	a := New(0, 8, 48000)
	b := New(1, 8, 48000)
	a.SetAmounts(0, 1.0)
	b.SetAmounts(0, 1.0)
	a.intervalSamples = 1
	b.intervalSamples = 1

	clA := changelist.New(256)
	clB := changelist.New(256)
	clA.SetSampleRate(48000)
	clB.SetSampleRate(48000)
	clA.SetGlideTime(0)
	clB.SetGlideTime(0)

	a.Advance(clA, 32)
	b.Advance(clB, 32)

	outA := make([]float64, 32)
	outB := make([]float64, 32)
	clA.WriteToSignal(outA, 0, 32)
	clB.WriteToSignal(outB, 0, 32)

	same := true
	for i := range outA {
		if outA[i] != outB[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected independently-seeded generators to diverge")
	}
}
