package tracksim

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func measCov(v float64) *mat.Dense {
	return mat.NewDense(2, 2, []float64{v, 0, 0, v})
}

func TestNewSquareRadar_RejectsInvalidParameters(t *testing.T) {
	cov := measCov(50)
	if _, err := NewSquareRadar(0, 1e-5, 0.9, cov); err == nil {
		t.Error("expected error for zero range")
	}
	if _, err := NewSquareRadar(1000, -1, 0.9, cov); err == nil {
		t.Error("expected error for negative clutter density")
	}
	if _, err := NewSquareRadar(1000, 1e-5, 0, cov); err == nil {
		t.Error("expected error for zero pd")
	}
	if _, err := NewSquareRadar(1000, 1e-5, 1.5, cov); err == nil {
		t.Error("expected error for pd > 1")
	}
	if _, err := NewSquareRadar(1000, 1e-5, 0.9, mat.NewDense(3, 3, nil)); err == nil {
		t.Error("expected error for non-2x2 covariance")
	}
}

func TestSquareRadar_Area(t *testing.T) {
	r, err := NewSquareRadar(1000, 1e-5, 0.9, measCov(50))
	if err != nil {
		t.Fatalf("NewSquareRadar: %v", err)
	}
	if got, want := r.Area(), 4e6; got != want {
		t.Errorf("Area() = %v, want %v", got, want)
	}
}

func TestGenerateMeasurements_AlwaysDetectsWithPDOne(t *testing.T) {
	r, err := NewSquareRadar(1000, 0, 1.0, measCov(1e-9))
	if err != nil {
		t.Fatalf("NewSquareRadar: %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	truths := []TruePosition{{North: 10, East: 20}, {North: -5, East: 5}}
	meas, err := r.GenerateMeasurements(rng, truths, 1.0, 1)
	if err != nil {
		t.Fatalf("GenerateMeasurements: %v", err)
	}
	if len(meas) != 2 {
		t.Fatalf("expected 2 measurements (no clutter, pd=1), got %d", len(meas))
	}
}

func TestGenerateMeasurements_NoTruthsNoClutterIsEmpty(t *testing.T) {
	r, err := NewSquareRadar(1000, 0, 0.9, measCov(50))
	if err != nil {
		t.Fatalf("NewSquareRadar: %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	meas, err := r.GenerateMeasurements(rng, nil, 1.0, 1)
	if err != nil {
		t.Fatalf("GenerateMeasurements: %v", err)
	}
	if len(meas) != 0 {
		t.Errorf("expected no measurements, got %d", len(meas))
	}
}

func TestGenerateMeasurements_IsDeterministicForFixedSeed(t *testing.T) {
	r, err := NewSquareRadar(1000, 1e-5, 0.9, measCov(50))
	if err != nil {
		t.Fatalf("NewSquareRadar: %v", err)
	}
	truths := []TruePosition{{North: 10, East: 20}}

	run := func(seed int64) []float64 {
		rng := rand.New(rand.NewSource(seed))
		meas, err := r.GenerateMeasurements(rng, truths, 1.0, 1)
		if err != nil {
			t.Fatalf("GenerateMeasurements: %v", err)
		}
		out := make([]float64, 0, len(meas)*2)
		for _, m := range meas {
			out = append(out, m.North(), m.East())
		}
		return out
	}

	a := run(42)
	b := run(42)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("value %d differs between identically-seeded runs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestGenerateMeasurements_RejectsNonPSDCovarianceAtConstruction(t *testing.T) {
	bad := mat.NewDense(2, 2, []float64{1, 2, 2, 1})
	if _, err := NewSquareRadar(1000, 1e-5, 0.9, bad); err == nil {
		t.Error("expected error for non-PSD covariance")
	}
}
