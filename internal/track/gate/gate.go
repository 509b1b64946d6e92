// Package gate implements track validation-region gating (§4.C): the
// Mahalanobis ellipse a candidate measurement must fall inside to be
// considered for association, plus a velocity cap on implied target
// speed.
package gate

import (
	"math"

	"github.com/oskarba/radartrack/internal/track/types"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Gate holds the gating parameters and the derived chi-square cutoff.
type Gate struct {
	PG    float64 // confidence level the gate should contain, P(z in gate | target-originated)
	VMax  float64 // speed cap (implied from the previous posterior), meters/sec
	gamma float64 // inverse chi-square quantile at PG, 2 degrees of freedom
}

// New validates pg and vMax and precomputes gamma.
func New(pg, vMax float64) (*Gate, error) {
	if pg <= 0 || pg >= 1 {
		return nil, types.NewConfigurationError("P_G", "must be in (0,1)")
	}
	if vMax < 0 {
		return nil, types.NewConfigurationError("v_max", "must be non-negative")
	}
	chi := distuv.ChiSquared{K: 2}
	return &Gate{PG: pg, VMax: vMax, gamma: chi.Quantile(pg)}, nil
}

// Gamma returns the precomputed inverse-chi-square cutoff gamma.
func (g *Gate) Gamma() float64 { return g.gamma }

// Result is the outcome of gating a predicted measurement against a
// candidate set: which measurement indices were admitted, the per-
// measurement innovation covariances (keyed by the same indices), and a
// representative covariance Sbar for downstream weighting — the mean of
// the admitted measurements' covariances combined with the predicted
// measurement covariance PH (= H P⁻ Hᵀ). Sbar is the generalisation this
// implementation uses when measurements in the same scan carry distinct
// R (classical PDA/IPDA assumes a single shared R).
type Result struct {
	Admitted []int
	S        map[int]*mat.Dense
	Sbar     *mat.Dense
}

// Validate gates measurements against a track's predicted measurement
// zhat (2-vector) and predicted measurement covariance PH = H P⁻ Hᵀ
// (2x2), using each candidate's own R. prevPos is the track's previous
// posterior position (2-vector, north/east) and dt the elapsed time,
// used for the velocity cap.
func (g *Gate) Validate(zhat *mat.VecDense, PH *mat.Dense, measurements []types.Measurement, prevPos *mat.VecDense, dt float64) (Result, error) {
	res := Result{S: make(map[int]*mat.Dense, len(measurements))}

	sumR := mat.NewDense(2, 2, nil)
	nAdmitted := 0

	for i, mment := range measurements {
		diff := mat.NewVecDense(2, nil)
		diff.SubVec(mment.Value, zhat)

		if g.VMax > 0 && prevPos != nil && dt > 0 {
			vel := mat.NewVecDense(2, nil)
			vel.SubVec(mment.Value, prevPos)
			speed := mat.Norm(vel, 2) / dt
			if speed > g.VMax {
				continue
			}
		}

		var S mat.Dense
		S.Add(PH, mment.Cov)
		types.Symmetrize(&S)

		d2, ok := mahalanobisSquared(diff, &S)
		if !ok {
			// Singular innovation covariance: reject rather than fail the
			// whole gating pass — the caller treats this as "not admitted".
			continue
		}
		if d2 <= g.gamma {
			res.Admitted = append(res.Admitted, i)
			res.S[i] = &S
			sumR.Add(sumR, mment.Cov)
			nAdmitted++
		}
	}

	var Sbar mat.Dense
	if nAdmitted > 0 {
		sumR.Scale(1/float64(nAdmitted), sumR)
		Sbar.Add(PH, sumR)
	} else {
		Sbar.CloneFrom(PH)
	}
	types.Symmetrize(&Sbar)
	res.Sbar = &Sbar

	return res, nil
}

// mahalanobisSquared computes diffᵀ S⁻¹ diff using a Cholesky
// factorization of S (the "symmetric solver" §7 calls for), returning
// ok=false if S is not positive-definite.
func mahalanobisSquared(diff *mat.VecDense, S *mat.Dense) (float64, bool) {
	sym := types.SymFromDense(S)
	var chol mat.Cholesky
	if !chol.Factorize(sym) {
		return 0, false
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, diff); err != nil {
		return 0, false
	}
	return mat.Dot(diff, &x), true
}

// Gaussian evaluates the bivariate normal density N(z; mean, S) using
// the same Cholesky factorization convention as mahalanobisSquared.
func Gaussian(z, mean *mat.VecDense, S *mat.Dense) (float64, bool) {
	diff := mat.NewVecDense(2, nil)
	diff.SubVec(z, mean)
	sym := types.SymFromDense(S)
	var chol mat.Cholesky
	if !chol.Factorize(sym) {
		return 0, false
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, diff); err != nil {
		return 0, false
	}
	d2 := mat.Dot(diff, &x)
	det := chol.Det()
	if det <= 0 {
		return 0, false
	}
	norm := 1 / (2 * math.Pi * math.Sqrt(det))
	return norm * math.Exp(-0.5*d2), true
}
