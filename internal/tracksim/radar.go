// Package tracksim generates synthetic radar scans for exercising and
// demonstrating the tracking pipeline: true target trajectories, missed
// detections, measurement noise, and clutter. It is a test/demo
// collaborator only — nothing under internal/track imports it.
package tracksim

import (
	"math"
	"math/rand"

	"github.com/oskarba/radartrack/internal/track/types"
	"gonum.org/v1/gonum/mat"
)

// SquareRadar simulates a radar covering a square surveillance area
// [-Range, Range] x [-Range, Range], detecting true targets with
// probability PD (missing the rest) and adding uniformly-distributed
// clutter at ClutterDensity returns per unit area per scan.
type SquareRadar struct {
	Range          float64
	ClutterDensity float64
	PD             float64
	MeasurementCov *mat.Dense // 2x2, applied to every true detection
}

// NewSquareRadar returns a SquareRadar. radarRange must be positive,
// clutterDensity non-negative, pd in (0, 1], and measurementCov a 2x2
// symmetric positive-definite matrix.
func NewSquareRadar(radarRange, clutterDensity, pd float64, measurementCov *mat.Dense) (*SquareRadar, error) {
	if radarRange <= 0 {
		return nil, types.NewConfigurationError("radarRange", "radar range must be positive")
	}
	if clutterDensity < 0 {
		return nil, types.NewConfigurationError("clutterDensity", "clutter density must be non-negative")
	}
	if pd <= 0 || pd > 1 {
		return nil, types.NewConfigurationError("pd", "detection probability must be in (0, 1]")
	}
	r, c := measurementCov.Dims()
	if r != 2 || c != 2 {
		return nil, types.NewConfigurationError("measurementCov", "measurement covariance must be 2x2")
	}
	if !types.IsSymmetricPSD(measurementCov) {
		return nil, types.NewConfigurationError("measurementCov", "measurement covariance must be symmetric positive-definite")
	}
	return &SquareRadar{
		Range:          radarRange,
		ClutterDensity: clutterDensity,
		PD:             pd,
		MeasurementCov: measurementCov,
	}, nil
}

// Area returns the area of the square surveillance region, for deriving
// a clutter rate per scan (ClutterDensity * Area()).
func (r *SquareRadar) Area() float64 {
	side := 2 * r.Range
	return side * side
}

// TruePosition is a target's true (north, east) position for one scan,
// used only to drive measurement generation.
type TruePosition struct {
	North, East float64
}

// GenerateMeasurements returns one scan's worth of measurements: a noisy
// detection of each true position (independently dropped with
// probability 1-PD), plus Poisson-distributed clutter uniformly
// scattered over the surveillance square. rng drives every random draw,
// so passing the same seed reproduces the same scan.
func (r *SquareRadar) GenerateMeasurements(rng *rand.Rand, truths []TruePosition, timestamp float64, scanIndex int) ([]types.Measurement, error) {
	noise, err := newGaussianNoise(r.MeasurementCov)
	if err != nil {
		return nil, err
	}

	var out []types.Measurement
	for _, truth := range truths {
		if rng.Float64() > r.PD {
			continue
		}
		dn, de := noise.sample(rng)
		m, err := types.NewMeasurement(truth.North+dn, truth.East+de, timestamp, scanIndex, r.MeasurementCov)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	numClutter := poisson(rng, r.ClutterDensity*r.Area())
	for i := 0; i < numClutter; i++ {
		north := (rng.Float64()*2 - 1) * r.Range
		east := (rng.Float64()*2 - 1) * r.Range
		m, err := types.NewMeasurement(north, east, timestamp, scanIndex, r.MeasurementCov)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, nil
}

// gaussianNoise draws correlated 2D Gaussian noise from a Cholesky
// factorization of a covariance matrix: x = L*z for z standard normal.
type gaussianNoise struct {
	l00, l10, l11 float64
}

func newGaussianNoise(cov *mat.Dense) (gaussianNoise, error) {
	var sym mat.SymDense
	sym.SymmetricDense(2, []float64{cov.At(0, 0), cov.At(0, 1), cov.At(1, 0), cov.At(1, 1)})
	var chol mat.Cholesky
	if ok := chol.Factorize(&sym); !ok {
		return gaussianNoise{}, types.NewConfigurationError("cov", "measurement covariance is not positive-definite")
	}
	var l mat.TriDense
	chol.LTo(&l)
	return gaussianNoise{l00: l.At(0, 0), l10: l.At(1, 0), l11: l.At(1, 1)}, nil
}

func (g gaussianNoise) sample(rng *rand.Rand) (north, east float64) {
	z0, z1 := rng.NormFloat64(), rng.NormFloat64()
	return g.l00 * z0, g.l10*z0 + g.l11*z1
}

// poisson draws a Poisson-distributed count with mean lambda using
// Knuth's algorithm. Adequate for the small clutter rates used here.
func poisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		k++
		p *= rng.Float64()
		if p <= l {
			return k - 1
		}
	}
}
