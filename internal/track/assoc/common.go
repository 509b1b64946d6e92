package assoc

import (
	"math"

	"github.com/oskarba/radartrack/internal/track/gate"
	"github.com/oskarba/radartrack/internal/track/motion"
	"github.com/oskarba/radartrack/internal/track/types"
	"gonum.org/v1/gonum/mat"
)

// measurementMatrix is H = [[1,0,0,0],[0,0,1,0]], fixed by the state
// ordering (north, ṅorth, east, ėast) — see types.Estimate.
var measurementMatrix = mat.NewDense(2, 4, []float64{
	1, 0, 0, 0,
	0, 0, 1, 0,
})

// core holds the pieces PDAFUpdater and IPDAFUpdater share: the motion
// model used to predict, the gate used to validate, and the detection
// probabilities both the PDA weighting and the IPDA existence recursion
// need.
type core struct {
	Model motion.Model
	Gate  *gate.Gate
	PD    float64 // probability of detection, P(measurement | target present and in gate region)
}

// predicted bundles the one-step-ahead prediction of a track's last
// posterior, plus the measurement-space projection the gate and the
// association step both need.
type predicted struct {
	dt    float64
	xPred *mat.VecDense // 4-vector
	PPred *mat.Dense    // 4x4
	zhat  *mat.VecDense // 2-vector, H*xPred
	PH    *mat.Dense    // 2x2, H*PPred*Hᵀ
}

// predict runs the DWNA predict step from track's last posterior to
// timestamp.
func (c core) predict(track *types.Track, timestamp float64) (predicted, error) {
	last, ok := track.LastPosterior()
	if !ok {
		return predicted{}, types.NewConfigurationError("track", "has no posterior estimate to predict from")
	}
	dt := timestamp - last.Timestamp
	if dt <= 0 {
		return predicted{}, &types.TimestampViolationError{Previous: last.Timestamp, Got: timestamp}
	}

	F, Q, err := c.Model.Matrices(dt)
	if err != nil {
		return predicted{}, err
	}

	xPred := mat.NewVecDense(4, nil)
	xPred.MulVec(F, last.Mean)

	var FP mat.Dense
	FP.Mul(F, last.Cov)
	var PPred mat.Dense
	PPred.Mul(&FP, F.T())
	PPred.Add(&PPred, Q)
	types.Symmetrize(&PPred)

	if !types.Finite(&PPred) {
		return predicted{}, &types.NumericalInstabilityError{TrackIndex: track.Index, Reason: "non-finite predicted covariance"}
	}

	zhat := mat.NewVecDense(2, nil)
	zhat.MulVec(measurementMatrix, xPred)

	var HP mat.Dense
	HP.Mul(measurementMatrix, &PPred)
	var PH mat.Dense
	PH.Mul(&HP, measurementMatrix.T())
	types.Symmetrize(&PH)

	return predicted{dt: dt, xPred: xPred, PPred: &PPred, zhat: zhat, PH: &PH}, nil
}

// association is the outcome of combining gated measurements into a
// single kinematic update: the combined innovation, the association
// weights (beta, indexed the same as the measurements slice passed to
// gate.Validate; beta0 is the no-detection weight) and the updated
// mean/covariance.
type association struct {
	beta0    float64
	beta     map[int]float64
	xPost    *mat.VecDense
	PPost    *mat.Dense
	combined *mat.VecDense // combined innovation, for diagnostics
}

// associate implements the shared PDA kinematic update (Bar-Shalom &
// Fortmann): per-measurement likelihoods weighted against a no-detection
// term b, a combined innovation, a single Kalman gain evaluated at the
// gate's representative Sbar, and the spread-of-innovations covariance
// correction.
func (c core) associate(pred predicted, res gate.Result, measurements []types.Measurement, b float64) (association, error) {
	likelihoods := make(map[int]float64, len(res.Admitted))
	sumL := 0.0
	for _, i := range res.Admitted {
		g, ok := gate.Gaussian(measurements[i].Value, pred.zhat, res.Sbar)
		if !ok {
			continue
		}
		l := c.PD * g
		likelihoods[i] = l
		sumL += l
	}

	denom := b + sumL
	beta := make(map[int]float64, len(likelihoods))
	var beta0 float64
	if denom <= 0 {
		// No admitted measurements and a degenerate no-detection term:
		// fall back to "definitely no detection" rather than divide by
		// zero.
		beta0 = 1
	} else {
		beta0 = b / denom
		for i, l := range likelihoods {
			beta[i] = l / denom
		}
	}

	// Kalman gain at the representative innovation covariance.
	var PHt mat.Dense
	PHt.Mul(pred.PPred, measurementMatrix.T())
	sym := types.SymFromDense(res.Sbar)
	var chol mat.Cholesky
	if !chol.Factorize(sym) {
		return association{}, &types.NumericalInstabilityError{Reason: "innovation covariance not positive-definite"}
	}
	// Solve Sbar * Kᵀ = (P H^T)^T for Kᵀ, then transpose: K = P Hᵀ Sbar⁻¹.
	var Kt mat.Dense
	if err := chol.SolveTo(&Kt, PHt.T()); err != nil {
		return association{}, &types.NumericalInstabilityError{Reason: "Kalman gain solve failed: " + err.Error()}
	}
	var K mat.Dense
	K.CloneFrom(Kt.T())

	combined := mat.NewVecDense(2, nil)
	spread := mat.NewDense(2, 2, nil)
	// Accumulate in gate order (ascending measurement index), not map
	// order, so the floating-point sums are reproducible.
	for _, i := range res.Admitted {
		bi, ok := beta[i]
		if !ok {
			continue
		}
		diff := mat.NewVecDense(2, nil)
		diff.SubVec(measurements[i].Value, pred.zhat)
		var scaled mat.VecDense
		scaled.ScaleVec(bi, diff)
		combined.AddVec(combined, &scaled)

		var outer mat.Dense
		outer.Outer(bi, diff, diff)
		spread.Add(spread, &outer)
	}
	var combinedOuter mat.Dense
	combinedOuter.Outer(1, combined, combined)
	spread.Sub(spread, &combinedOuter)

	xPost := mat.NewVecDense(4, nil)
	var Kv mat.VecDense
	Kv.MulVec(&K, combined)
	xPost.AddVec(pred.xPred, &Kv)

	var KS mat.Dense
	KS.Mul(&K, res.Sbar)
	var KSKt mat.Dense
	KSKt.Mul(&KS, K.T())
	Pc := mat.NewDense(4, 4, nil)
	Pc.Sub(pred.PPred, &KSKt)

	var KSpread mat.Dense
	KSpread.Mul(&K, spread)
	var PTilde mat.Dense
	PTilde.Mul(&KSpread, K.T())

	PPost := mat.NewDense(4, 4, nil)
	var scaledPPred mat.Dense
	scaledPPred.Scale(beta0, pred.PPred)
	var scaledPc mat.Dense
	scaledPc.Scale(1-beta0, Pc)
	PPost.Add(&scaledPPred, &scaledPc)
	PPost.Add(PPost, &PTilde)
	types.Symmetrize(PPost)

	if !types.Finite(xPost) || !types.Finite(PPost) {
		return association{}, &types.NumericalInstabilityError{Reason: "non-finite posterior"}
	}

	return association{beta0: beta0, beta: beta, xPost: xPost, PPost: PPost, combined: combined}, nil
}

// gateVolume returns the area of the gamma-level confidence ellipse
// {x : xᵀ S⁻¹ x <= gamma} for a 2x2 S, used by IPDAFUpdater's detection
// term: Area = pi * gamma * sqrt(det(S)).
func gateVolume(gamma float64, S *mat.Dense) float64 {
	return math.Pi * gamma * math.Sqrt(mat.Det(S))
}
