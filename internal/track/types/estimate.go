package types

import "gonum.org/v1/gonum/mat"

// TrackIndex is the stable, monotonically-assigned identity of a
// confirmed track within a TrackFile. Never reused.
type TrackIndex int

// Estimate is one step of a track's filter output.
//
// Mean is 4-long in (north, ṅorth, east, ėast) order — fixed by the
// measurement matrix H = [[1,0,0,0],[0,0,1,0]]. Cov is the matching 4x4
// covariance. Posterior distinguishes a predicted-only (prior) estimate
// from one that has gone through an association update; only posterior
// estimates are ever appended to a Track (see Track.Append). Existence is
// non-nil only when produced by an IPDA-family updater.
//
// Created by predict or update; never mutated after publication.
type Estimate struct {
	Timestamp  float64
	ScanIndex  int
	Mean       *mat.VecDense // length 4
	Cov        *mat.Dense    // 4x4
	Posterior  bool
	Existence  *float64 // ε ∈ [0,1], IPDA only
	TrackIndex TrackIndex
}

// North, NorthVel, East, EastVel index the fixed state ordering.
func (e Estimate) North() float64    { return e.Mean.AtVec(0) }
func (e Estimate) NorthVel() float64 { return e.Mean.AtVec(1) }
func (e Estimate) East() float64     { return e.Mean.AtVec(2) }
func (e Estimate) EastVel() float64  { return e.Mean.AtVec(3) }

// WithExistence returns a copy of e carrying existence probability eps.
func (e Estimate) WithExistence(eps float64) Estimate {
	e.Existence = &eps
	return e
}
