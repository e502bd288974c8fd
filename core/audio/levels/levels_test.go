package levels

import (
	"math"
	"testing"
)

func TestObserveFloatsComputesRMSAndPeak(t *testing.T) {
	tap := NewTap()

	tap.ObserveFloats([]float32{0.5, -0.5, 0.5, -0.5})

	level := tap.Level()
	if math.Abs(level.RMS-0.5) > 1e-9 {
		t.Fatalf("expected RMS 0.5, got %v", level.RMS)
	}
	if math.Abs(level.Peak-0.5) > 1e-9 {
		t.Fatalf("expected peak 0.5, got %v", level.Peak)
	}
}

func TestObservePCM16MatchesFloatObservation(t *testing.T) {
	tap := NewTap()

	// Full-scale positive sample followed by silence.
	tap.ObservePCM16([]byte{0xFF, 0x7F, 0x00, 0x00})

	level := tap.Level()
	if math.Abs(level.Peak-1) > 1e-4 {
		t.Fatalf("expected near full-scale peak, got %v", level.Peak)
	}
	if math.Abs(level.RMS-1/math.Sqrt2) > 1e-4 {
		t.Fatalf("expected RMS of half-silent full-scale block, got %v", level.RMS)
	}
}

func TestObserveEmptyBlockKeepsLastReading(t *testing.T) {
	tap := NewTap()
	tap.ObserveFloats([]float32{1})

	tap.ObserveFloats(nil)
	tap.ObservePCM16([]byte{0x01})

	if level := tap.Level(); level.Peak != 1 {
		t.Fatalf("expected empty observations to be ignored, got peak %v", level.Peak)
	}
}

func TestResetClearsReading(t *testing.T) {
	tap := NewTap()
	tap.ObserveFloats([]float32{1})

	tap.Reset()

	if level := tap.Level(); level != (Level{}) {
		t.Fatalf("expected zero level after reset, got %+v", level)
	}
}

func TestNilTapIsInert(t *testing.T) {
	var tap *Tap

	tap.ObserveFloats([]float32{1})
	tap.ObservePCM16([]byte{0x00, 0x10})
	tap.Reset()

	if level := tap.Level(); level != (Level{}) {
		t.Fatalf("expected zero level from nil tap, got %+v", level)
	}
}
