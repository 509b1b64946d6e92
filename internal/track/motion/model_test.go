package motion

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNew_RejectsNonPositiveQ(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for q=0")
	}
	if _, err := New(-1); err == nil {
		t.Fatal("expected error for negative q")
	}
}

func TestMatrices_RejectsNonPositiveDt(t *testing.T) {
	m, err := New(0.25)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := m.Matrices(0); err == nil {
		t.Fatal("expected error for dt=0")
	}
}

func TestMatrices_ClosedForm(t *testing.T) {
	m, err := New(0.25)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dt := 1.5
	F, Q, err := m.Matrices(dt)
	if err != nil {
		t.Fatalf("Matrices: %v", err)
	}

	wantF := mat.NewDense(4, 4, []float64{
		1, dt, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, dt,
		0, 0, 0, 1,
	})
	if !mat.EqualApprox(F, wantF, 1e-12) {
		t.Errorf("F = %v, want %v", mat.Formatted(F), mat.Formatted(wantF))
	}

	q := m.Q0
	dt2, dt3 := dt*dt, dt*dt*dt
	wantQ := mat.NewDense(4, 4, []float64{
		q * dt3 / 3, q * dt2 / 2, 0, 0,
		q * dt2 / 2, q * dt, 0, 0,
		0, 0, q * dt3 / 3, q * dt2 / 2,
		0, 0, q * dt2 / 2, q * dt,
	})
	if !mat.EqualApprox(Q, wantQ, 1e-12) {
		t.Errorf("Q = %v, want %v", mat.Formatted(Q), mat.Formatted(wantQ))
	}
}

func TestMatrices_FIsInvertibleWithUnitDeterminant(t *testing.T) {
	m, _ := New(0.25)
	F, _, err := m.Matrices(2.0)
	if err != nil {
		t.Fatalf("Matrices: %v", err)
	}
	det := mat.Det(F)
	if math.Abs(det-1) > 1e-9 {
		t.Errorf("det(F) = %v, want 1", det)
	}
}
