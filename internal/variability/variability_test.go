package variability

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeFlatSequence(t *testing.T) {
	m := Compute([]float64{70, 70, 70, 70})
	if m.CV != 0 {
		t.Fatalf("expected CV 0 for flat sequence, got %.4f", m.CV)
	}
	if m.MAGE != 0 {
		t.Fatalf("expected MAGE 0 for flat sequence, got %.4f", m.MAGE)
	}
	if m.TIR70To180 != 100 {
		t.Fatalf("expected TIR 100%% for flat 70s, got %.1f", m.TIR70To180)
	}
}

func TestComputeKnownStatistics(t *testing.T) {
	// mean 100, sample stdev sqrt(800/3).
	m := Compute([]float64{80, 100, 100, 120})
	if !almostEqual(m.Mean, 100) {
		t.Fatalf("expected mean 100, got %v", m.Mean)
	}
	wantSD := math.Sqrt(800.0 / 3.0)
	if !almostEqual(m.StdDev, wantSD) {
		t.Fatalf("expected stdev %v, got %v", wantSD, m.StdDev)
	}
	if !almostEqual(m.CV, 100*wantSD/100) {
		t.Fatalf("expected CV %v, got %v", wantSD, m.CV)
	}
}

func TestComputeRangeBands(t *testing.T) {
	values := []float64{50, 60, 100, 150, 200, 260, 300, 170, 90, 40}
	m := Compute(values)

	// below 70: 50, 60, 40 -> 30%; below 54: 50, 40 -> 20%
	if !almostEqual(m.TBRBelow70, 30) || !almostEqual(m.TBRBelow54, 20) {
		t.Fatalf("low bands wrong: TBR70=%.1f TBR54=%.1f", m.TBRBelow70, m.TBRBelow54)
	}
	// above 180: 200, 260, 300 -> 30%; above 250: 260, 300 -> 20%
	if !almostEqual(m.TARAbove180, 30) || !almostEqual(m.TARAbove250, 20) {
		t.Fatalf("high bands wrong: TAR180=%.1f TAR250=%.1f", m.TARAbove180, m.TARAbove250)
	}
	if !almostEqual(m.TIR70To180, 40) {
		t.Fatalf("expected TIR 40%%, got %.1f", m.TIR70To180)
	}
}

func TestComputeEstimatedA1C(t *testing.T) {
	m := Compute([]float64{154, 154, 154})
	want := (154.0 + 46.7) / 28.7 // 6.9930...
	if !almostEqual(m.EstimatedA1C, want) {
		t.Fatalf("expected eA1C %v, got %v", want, m.EstimatedA1C)
	}
	if got := m.Rounded().EstimatedA1C; got != 7.0 {
		t.Fatalf("expected rounded eA1C 7.0, got %v", got)
	}
}

func TestComputeMAGE(t *testing.T) {
	// stdev of {100,200,100,200,100} is ~54.77 (sample); interior deltas are
	// all 100 > stdev, so MAGE = 100.
	m := Compute([]float64{100, 200, 100, 200, 100})
	if !almostEqual(m.MAGE, 100) {
		t.Fatalf("expected MAGE 100, got %v", m.MAGE)
	}
}

func TestComputeMAGESkipsSmallDeltas(t *testing.T) {
	// Large single jump dominates stdev; small jitter must not qualify.
	values := []float64{100, 101, 100, 101, 100, 300, 100, 101, 100}
	m := Compute(values)
	if m.MAGE < 100 {
		t.Fatalf("expected MAGE driven by the large excursions only, got %v", m.MAGE)
	}
}

func TestComputeDegenerateInputs(t *testing.T) {
	if m := Compute(nil); m.Readings != 0 {
		t.Fatalf("expected zero record for empty input, got %+v", m)
	}
	m := Compute([]float64{120})
	if m.Readings != 1 || m.Mean != 120 || m.StdDev != 0 || m.CV != 0 || m.MAGE != 0 {
		t.Fatalf("expected partial record for single value, got %+v", m)
	}
	if m.TIR70To180 != 100 {
		t.Fatalf("expected single in-range value to yield TIR 100%%, got %.1f", m.TIR70To180)
	}
}
