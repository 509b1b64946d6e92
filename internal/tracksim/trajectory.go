package tracksim

import (
	"math"
	"math/rand"

	"github.com/oskarba/radartrack/internal/track/motion"
	"github.com/oskarba/radartrack/internal/track/types"
	"gonum.org/v1/gonum/mat"
)

// TrajectoryChange generates a true target trajectory under the same
// DWNA model the tracker assumes, but with an occasional random turn:
// each step it applies F, then with probability TurnProbability
// rotates the velocity components by a random angle drawn uniformly
// from [-MaxTurnRadians, MaxTurnRadians]. This produces maneuvering
// targets the constant-velocity model mismatches from time to time,
// exercising the tracker's gating and association under model error.
type TrajectoryChange struct {
	Model           motion.Model
	TurnProbability float64
	MaxTurnRadians  float64
}

// NewTrajectoryChange returns a TrajectoryChange. turnProbability must be
// in [0, 1] and maxTurnRadians must be non-negative.
func NewTrajectoryChange(model motion.Model, turnProbability, maxTurnRadians float64) (TrajectoryChange, error) {
	if turnProbability < 0 || turnProbability > 1 {
		return TrajectoryChange{}, types.NewConfigurationError("turnProbability", "turn probability must be in [0, 1]")
	}
	if maxTurnRadians < 0 {
		return TrajectoryChange{}, types.NewConfigurationError("maxTurnRadians", "max turn radians must be non-negative")
	}
	return TrajectoryChange{Model: model, TurnProbability: turnProbability, MaxTurnRadians: maxTurnRadians}, nil
}

// Step advances state (north, ṅorth, east, ėast) by one interval dt:
// x <- F*x, then randomly randomizes the velocity direction.
func (tc TrajectoryChange) Step(rng *rand.Rand, state *mat.VecDense, dt float64) (*mat.VecDense, error) {
	f, _, err := tc.Model.Matrices(dt)
	if err != nil {
		return nil, err
	}
	next := mat.NewVecDense(4, nil)
	next.MulVec(f, state)

	if rng.Float64() < tc.TurnProbability {
		tc.randomizeDirection(rng, next)
	}
	return next, nil
}

// randomizeDirection rotates the (ṅorth, ėast) velocity pair in place by
// a random angle in [-MaxTurnRadians, MaxTurnRadians], preserving speed.
func (tc TrajectoryChange) randomizeDirection(rng *rand.Rand, state *mat.VecDense) {
	if tc.MaxTurnRadians == 0 {
		return
	}
	vNorth, vEast := state.AtVec(1), state.AtVec(3)
	theta := (rng.Float64()*2 - 1) * tc.MaxTurnRadians
	sin, cos := math.Sincos(theta)
	state.SetVec(1, vNorth*cos-vEast*sin)
	state.SetVec(3, vNorth*sin+vEast*cos)
}

// GenerateTrajectory runs Step steps times starting from x0, returning
// the full sequence of states (length steps+1, including x0).
func (tc TrajectoryChange) GenerateTrajectory(rng *rand.Rand, x0 *mat.VecDense, dt float64, steps int) ([]*mat.VecDense, error) {
	out := make([]*mat.VecDense, steps+1)
	out[0] = mat.VecDenseCopyOf(x0)
	for k := 1; k <= steps; k++ {
		next, err := tc.Step(rng, out[k-1], dt)
		if err != nil {
			return nil, err
		}
		out[k] = next
	}
	return out, nil
}

// TruePositionOf projects a (north, ṅorth, east, ėast) state onto its
// observable (north, east) position, matching H = [[1,0,0,0],[0,0,1,0]].
func TruePositionOf(state *mat.VecDense) TruePosition {
	return TruePosition{North: state.AtVec(0), East: state.AtVec(2)}
}
