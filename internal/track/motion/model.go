// Package motion implements the Discrete White-Noise Acceleration (DWNA)
// motion model: a nearly-constant-velocity model per axis with additive
// acceleration noise, independent across the north/east axes.
package motion

import (
	"github.com/oskarba/radartrack/internal/track/types"
	"gonum.org/v1/gonum/mat"
)

// Model is a pure function from a sampling interval to (F, Q); its only
// parameter is the process-noise strength q.
type Model struct {
	Q0 float64
}

// New returns a Model with process-noise strength q0. q0 must be
// positive — callers construct this once at startup from validated
// configuration (see internal/trackconfig).
func New(q0 float64) (Model, error) {
	if q0 <= 0 {
		return Model{}, types.NewConfigurationError("q", "process noise strength must be positive")
	}
	return Model{Q0: q0}, nil
}

// Matrices returns the state-transition matrix F and process-noise
// covariance Q for sampling interval dt, in (north, ṅorth, east, ėast)
// order:
//
//	F_axis = [[1, dt], [0, 1]]
//	Q_axis = q * [[dt³/3, dt²/2], [dt²/2, dt]]
//
// composed block-diagonally across the two independent axes.
func (m Model) Matrices(dt float64) (F, Q *mat.Dense, err error) {
	if dt <= 0 {
		return nil, nil, types.NewConfigurationError("dt", "sampling interval must be positive")
	}

	F = mat.NewDense(4, 4, nil)
	axisF := []float64{1, dt, 0, 1}
	setBlock(F, 0, axisF)
	setBlock(F, 2, axisF)

	dt2 := dt * dt
	dt3 := dt2 * dt
	axisQ := []float64{m.Q0 * dt3 / 3, m.Q0 * dt2 / 2, m.Q0 * dt2 / 2, m.Q0 * dt}
	Q = mat.NewDense(4, 4, nil)
	setBlock(Q, 0, axisQ)
	setBlock(Q, 2, axisQ)

	return F, Q, nil
}

// setBlock writes a 2x2 row-major block (vals) into the diagonal block of
// m starting at (at, at).
func setBlock(m *mat.Dense, at int, vals []float64) {
	m.Set(at, at, vals[0])
	m.Set(at, at+1, vals[1])
	m.Set(at+1, at, vals[2])
	m.Set(at+1, at+1, vals[3])
}
