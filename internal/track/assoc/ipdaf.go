package assoc

import (
	"github.com/oskarba/radartrack/internal/track/gate"
	"github.com/oskarba/radartrack/internal/track/motion"
	"github.com/oskarba/radartrack/internal/track/types"
	"gonum.org/v1/gonum/mat"
)

// IPDAFUpdater is the integrated PDAF (§4.E): the same PDA kinematic
// update as PDAFUpdater, plus a scalar existence probability carried on
// every Estimate and recursed through a two-state Markov chain
// (exists / doesn't-exist) each scan.
//
// ScanArea is the total surveillance-region area used to turn
// ClutterRate (expected false returns per scan, over the whole
// surveillance region) into the spatial clutter density the detection
// term needs — deliberately a separate field from the gate's own
// validation-ellipse area, which is computed per track per scan from
// Sbar and never confused with the sensor's total coverage.
type IPDAFUpdater struct {
	core
	ClutterRate float64 // expected false returns per scan, across ScanArea
	ScanArea    float64 // total surveillance area, same units as ScanArea
	Pi11        float64 // P(exists at k | existed at k-1)
	Pi21        float64 // P(exists at k | didn't exist at k-1)
}

// NewIPDAFUpdater validates its parameters and returns a ready updater.
func NewIPDAFUpdater(model motion.Model, g *gate.Gate, pd, clutterRate, scanArea, pi11, pi21 float64) (*IPDAFUpdater, error) {
	if pd <= 0 || pd > 1 {
		return nil, types.NewConfigurationError("P_D", "must be in (0,1]")
	}
	if clutterRate < 0 {
		return nil, types.NewConfigurationError("clutter rate", "must be non-negative")
	}
	if scanArea <= 0 {
		return nil, types.NewConfigurationError("scan area", "must be positive")
	}
	if pi11 < 0 || pi11 > 1 || pi21 < 0 || pi21 > 1 {
		return nil, types.NewConfigurationError("existence transition probabilities", "must be in [0,1]")
	}
	return &IPDAFUpdater{
		core:        core{Model: model, Gate: g, PD: pd},
		ClutterRate: clutterRate,
		ScanArea:    scanArea,
		Pi11:        pi11,
		Pi21:        pi21,
	}, nil
}

func (u *IPDAFUpdater) step(track *types.Track, measurements []types.Measurement, timestamp float64, scanIndex int, mutate bool) ([]int, error) {
	pred, err := u.predict(track, timestamp)
	if err != nil {
		return nil, err
	}

	last, _ := track.LastPosterior()
	prevPos := mat.NewVecDense(2, []float64{last.North(), last.East()})
	prevExistence := 1.0
	if last.Existence != nil {
		prevExistence = *last.Existence
	}
	existPred := u.Pi11*prevExistence + u.Pi21*(1-prevExistence)

	res, err := u.Gate.Validate(pred.zhat, pred.PH, measurements, prevPos, pred.dt)
	if err != nil {
		return nil, err
	}

	lambda := u.ClutterRate / u.ScanArea
	b := lambda * (1 - u.PD*u.Gate.PG)

	assoc, err := u.associate(pred, res, measurements, b)
	if err != nil {
		if ne, ok := err.(*types.NumericalInstabilityError); ok {
			ne.TrackIndex = track.Index
		}
		return nil, err
	}

	delta := u.detectionTerm(pred, res, measurements, lambda)
	existPost := existenceUpdate(delta, existPred)

	if mutate {
		posterior := types.Estimate{
			Timestamp: timestamp,
			ScanIndex: scanIndex,
			Mean:      assoc.xPost,
			Cov:       assoc.PPost,
			Posterior: true,
			Existence: &existPost,
		}
		if err := track.Append(posterior); err != nil {
			return nil, err
		}
	}

	return res.Admitted, nil
}

// detectionTerm computes delta, the IPDA existence-recursion's
// detection-likelihood term:
//
//	delta = PD*PG - PD*PG * (sum of raw gaussian likelihoods) / (m * lambda * V_gate)
//
// with m the number of validated measurements, V_gate the area of the
// track's gamma-level validation ellipse, and the m=0 case (no
// validated measurements this scan) falling back to delta = PD*PG — the
// textbook empty-validation-region limit.
func (u *IPDAFUpdater) detectionTerm(pred predicted, res gate.Result, measurements []types.Measurement, lambda float64) float64 {
	pdpg := u.PD * u.Gate.PG
	m := len(res.Admitted)
	if m == 0 {
		return pdpg
	}
	vGate := gateVolume(u.Gate.Gamma(), res.Sbar)
	sum := 0.0
	for _, i := range res.Admitted {
		g, ok := gate.Gaussian(measurements[i].Value, pred.zhat, res.Sbar)
		if !ok {
			continue
		}
		sum += g
	}
	return pdpg - pdpg*sum/(float64(m)*lambda*vGate)
}

// existenceUpdate is the two-state Markov-chain posterior:
//
//	eps+ = (1-delta)*eps- / (1 - delta*eps-)
func existenceUpdate(delta, existPred float64) float64 {
	denom := 1 - delta*existPred
	if denom <= 0 {
		return existPred
	}
	return (1 - delta) * existPred / denom
}

// Step predicts, gates, associates, updates existence and appends a
// posterior estimate.
func (u *IPDAFUpdater) Step(track *types.Track, measurements []types.Measurement, timestamp float64, scanIndex int) ([]int, error) {
	return u.step(track, measurements, timestamp, scanIndex, true)
}

// Peek predicts and gates without mutating track.
func (u *IPDAFUpdater) Peek(track *types.Track, measurements []types.Measurement, timestamp float64, scanIndex int) ([]int, error) {
	return u.step(track, measurements, timestamp, scanIndex, false)
}
