package assoc

import (
	"github.com/oskarba/radartrack/internal/track/gate"
	"github.com/oskarba/radartrack/internal/track/motion"
	"github.com/oskarba/radartrack/internal/track/types"
	"gonum.org/v1/gonum/mat"
)

// PDAFUpdater is the probabilistic data association filter (§4.D): every
// scan it predicts, gates, and folds every validated measurement into a
// single weighted kinematic update — no existence bookkeeping, no track
// management decisions. It only ever appends to tracks handed to it by a
// manager or initiator.
type PDAFUpdater struct {
	core
	// ClutterDensity is the assumed spatial density of false
	// measurements (returns per unit area), the lambda term in the
	// classic PDA no-detection weight b = lambda*(1-PD*PG).
	ClutterDensity float64
}

// NewPDAFUpdater validates its parameters and returns a ready updater.
func NewPDAFUpdater(model motion.Model, g *gate.Gate, pd, clutterDensity float64) (*PDAFUpdater, error) {
	if pd <= 0 || pd > 1 {
		return nil, types.NewConfigurationError("P_D", "must be in (0,1]")
	}
	if clutterDensity < 0 {
		return nil, types.NewConfigurationError("clutter density", "must be non-negative")
	}
	return &PDAFUpdater{core: core{Model: model, Gate: g, PD: pd}, ClutterDensity: clutterDensity}, nil
}

func (u *PDAFUpdater) step(track *types.Track, measurements []types.Measurement, timestamp float64, scanIndex int, mutate bool) ([]int, error) {
	pred, err := u.predict(track, timestamp)
	if err != nil {
		return nil, err
	}

	last, _ := track.LastPosterior()
	prevPos := mat.NewVecDense(2, []float64{last.North(), last.East()})

	res, err := u.Gate.Validate(pred.zhat, pred.PH, measurements, prevPos, pred.dt)
	if err != nil {
		return nil, err
	}

	// No-detection weight: lambda*(1-PD*PG).
	b := u.ClutterDensity * (1 - u.PD*u.Gate.PG)

	assoc, err := u.associate(pred, res, measurements, b)
	if err != nil {
		if ne, ok := err.(*types.NumericalInstabilityError); ok {
			ne.TrackIndex = track.Index
		}
		return nil, err
	}

	if mutate {
		posterior := types.Estimate{
			Timestamp: timestamp,
			ScanIndex: scanIndex,
			Mean:      assoc.xPost,
			Cov:       assoc.PPost,
			Posterior: true,
		}
		if err := track.Append(posterior); err != nil {
			return nil, err
		}
	}

	return res.Admitted, nil
}

// Step predicts, gates, associates and appends a posterior estimate.
func (u *PDAFUpdater) Step(track *types.Track, measurements []types.Measurement, timestamp float64, scanIndex int) ([]int, error) {
	return u.step(track, measurements, timestamp, scanIndex, true)
}

// Peek predicts and gates without mutating track.
func (u *PDAFUpdater) Peek(track *types.Track, measurements []types.Measurement, timestamp float64, scanIndex int) ([]int, error) {
	return u.step(track, measurements, timestamp, scanIndex, false)
}

