package oscillator

import "testing"

func TestSetLogPitchZeroUsesReferenceFrequency(t *testing.T) {
	o := New(48000)
	o.SetLogPitch(0)
	if o.frequency != 440.0 {
		t.Fatalf("expected 440Hz at log pitch 0, got %f", o.frequency)
	}
}

func TestSetLogPitchOneOctaveUpDoublesFrequency(t *testing.T) {
	o := New(48000)
	o.SetLogPitch(1)
	if o.frequency != 880.0 {
		t.Fatalf("expected 880Hz one octave up, got %f", o.frequency)
	}
}

func TestSetReferenceFrequencyShiftsLogPitchZero(t *testing.T) {
	o := New(48000)
	o.SetReferenceFrequency(220.0)
	o.SetLogPitch(0)
	if o.frequency != 220.0 {
		t.Fatalf("expected 220Hz reference at log pitch 0, got %f", o.frequency)
	}
}
